package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/portabletext"
)

const sidebarCategories = 6

// Post is the article page with its comments, author bio, categories and
// related posts.
func Post(site Site, data PostData) templ.Component {
	p := data.Post
	body := component(func(h *htmlWriter) {
		h.raw(`<article class="mx-auto max-w-6xl px-4 py-12"><a href="/blog/" class="text-sm font-bold underline">← Kembali ke blog</a>`)
		h.raw(`<div class="mt-8 grid gap-12 lg:grid-cols-[1fr_18rem]"><div>`)

		h.raw(`<header>`)
		if p.Category != nil {
			categoryBadge(h, *p.Category)
		}
		h.raw(`<h1 class="mt-4 text-4xl font-black md:text-5xl">`)
		h.text(p.Title)
		h.raw(`</h1>`)
		if p.Excerpt != "" {
			h.raw(`<p class="mt-4 text-xl text-ink/80">`)
			h.text(p.Excerpt)
			h.raw(`</p>`)
		}
		h.raw(`<p class="mt-6 flex flex-wrap gap-4 text-sm font-bold">`)
		if p.Author != nil {
			h.raw(`<span>`)
			h.text(p.Author.Name)
			h.raw(`</span>`)
		}
		if !p.PublishedAt.IsZero() {
			h.raw(`<time`)
			h.attr("datetime", p.PublishedAt.Format("2006-01-02"))
			h.raw(`>`)
			h.text(FormatDate(p.PublishedAt))
			h.raw(`</time>`)
		}
		if p.ReadTime > 0 {
			h.raw(`<span>`)
			h.text(readTime(p.ReadTime))
			h.raw(`</span>`)
		}
		h.raw(`</p></header>`)

		if src := site.image(p.MainImage, heroImageWidth); src != "" {
			h.raw(`<img class="mt-8 w-full border-4 border-ink" fetchpriority="high" decoding="async"`)
			h.attr("src", src)
			alt := p.MainImage.Alt
			if alt == "" {
				alt = p.Title
			}
			h.attr("alt", alt)
			h.raw(`/>`)
		}

		h.raw(`<div class="prose prose-lg mt-10 max-w-none">`)
		h.component(portabletext.PortableText(p.Body, site.assetFunc()))
		h.raw(`</div>`)

		if len(p.Tags) > 0 {
			h.raw(`<ul class="mt-10 flex flex-wrap gap-2">`)
			for _, t := range p.Tags {
				h.raw(`<li class="rounded-full border-2 border-ink px-3 py-1 text-xs font-bold">#`)
				h.text(t)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}

		commentSection(h, data)

		if p.Author != nil {
			authorBio(h, site, *p.Author)
		}
		h.raw(`</div>`)

		h.raw(`<aside class="space-y-10">`)
		sidebar(h, data.Categories)
		h.raw(`</aside></div>`)

		if len(p.Related) > 0 {
			h.raw(`<section class="mt-16"><h2 class="text-3xl font-black">Tulisan terkait</h2><div class="mt-8 grid gap-6 sm:grid-cols-2 lg:grid-cols-3">`)
			for _, r := range p.Related {
				postCard(h, site, r, false)
			}
			h.raw(`</div></section>`)
		}
		h.raw(`</article>`)
	})

	meta := PageMeta{
		Title:       p.Title,
		Description: p.Excerpt,
		URL:         buildURL(site.URL, "blog", p.Slug),
		OGType:      "article",
		Image:       site.image(p.MainImage, heroImageWidth),
		JSONLD:      BlogPostingJsonLD(site, p),
	}
	return layout(site, meta, body)
}

func commentSection(h *htmlWriter, data PostData) {
	h.raw(`<section id="comments" class="mt-16 border-t-4 border-ink pt-10"><h2 class="text-2xl font-black">Komentar (`)
	h.text(strconv.Itoa(len(data.Comments)))
	h.raw(`)</h2>`)

	if data.Flash.Success != "" {
		h.raw(`<p class="mt-6 border-4 border-ink bg-green-200 p-4 font-bold" role="status">`)
		h.text(data.Flash.Success)
		h.raw(`</p>`)
	}
	if data.Flash.Error != "" {
		h.raw(`<p class="mt-6 border-4 border-ink bg-red-200 p-4 font-bold" role="alert">`)
		h.text(data.Flash.Error)
		h.raw(`</p>`)
	}

	commentForm(h, data)

	switch {
	case data.CommentsUnavailable:
		h.raw(`<p class="mt-8 text-ink/70">Komentar tidak dapat dimuat saat ini.</p>`)
	case len(data.Comments) == 0:
		h.raw(`<p class="mt-8 font-bold text-ink/70">Belum ada komentar. Jadilah yang pertama berkomentar!</p>`)
	default:
		h.raw(`<ol class="mt-8 space-y-6">`)
		for _, c := range data.Comments {
			comment(h, c)
		}
		h.raw(`</ol>`)
	}
	h.raw(`</section>`)
}

func commentForm(h *htmlWriter, data PostData) {
	h.raw(`<form method="post" class="mt-8 space-y-4 border-4 border-ink bg-white p-6"`)
	h.attr("action", data.Post.Link()+"comments/")
	h.raw(`><h3 class="text-lg font-black">Tulis Komentar</h3>`)
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", data.CSRFToken)
	h.raw(`/><input type="hidden" name="postId"`)
	h.attr("value", data.Post.ID)
	h.raw(`/>`)
	for _, f := range []struct {
		name, label, typ string
		required         bool
	}{
		{"name", "Nama", "text", true},
		{"email", "Email", "email", true},
		{"website", "Website", "url", false},
	} {
		h.raw(`<label class="block text-sm font-bold">`)
		h.text(f.label)
		if f.required {
			h.raw(` <span class="text-primary">*</span>`)
		}
		h.raw(`<input class="mt-1 block w-full border-2 border-ink px-3 py-2"`)
		h.attr("type", f.typ)
		h.attr("name", f.name)
		if f.required {
			h.raw(` required`)
		}
		h.raw(`/></label>`)
	}
	h.raw(`<label class="block text-sm font-bold">Komentar <span class="text-primary">*</span>`)
	h.raw(`<textarea class="mt-1 block w-full border-2 border-ink px-3 py-2" name="comment" rows="5" minlength="10" required></textarea></label>`)
	h.raw(`<p class="text-xs text-ink/60">Email tidak akan ditampilkan. Komentar akan tampil setelah disetujui.</p>`)
	h.raw(`<button type="submit" class="border-4 border-ink bg-yellow-200 px-6 py-2 font-bold">Kirim Komentar</button></form>`)
}

func comment(h *htmlWriter, c content.Comment) {
	h.raw(`<li class="border-4 border-ink bg-white p-5"`)
	h.attr("id", "comment-"+c.ID)
	h.raw(`><div class="flex items-center gap-3"><span class="flex h-10 w-10 items-center justify-center rounded-full border-2 border-ink font-black">`)
	h.text(initial(c.Name))
	h.raw(`</span><div><p class="font-black">`)
	if c.Website != "" {
		if href := portabletext.SafeURL(c.Website); href != "" {
			h.raw(`<a rel="nofollow ugc noopener" target="_blank" class="underline" href="`)
			h.raw(href)
			h.raw(`">`)
			h.text(c.Name)
			h.raw(`</a>`)
		} else {
			h.text(c.Name)
		}
	} else {
		h.text(c.Name)
	}
	h.raw(`</p><p class="text-xs text-ink/60">`)
	h.text(FormatDate(c.CreatedAt))
	h.raw(`</p></div></div><p class="mt-3 whitespace-pre-line">`)
	h.text(c.Comment)
	h.raw(`</p>`)

	if len(c.Replies) > 0 {
		h.raw(`<ol class="mt-4 space-y-4 border-l-4 border-ink pl-4">`)
		for _, r := range c.Replies {
			h.raw(`<li class="bg-stone-100 p-4"`)
			h.attr("id", "comment-"+r.ID)
			h.raw(`><p class="font-black">`)
			h.text(r.Name)
			if r.IsAuthor {
				h.raw(` <span class="ml-1 rounded-full bg-ink px-2 py-0.5 text-xs text-white">Author</span>`)
			}
			h.raw(`</p><p class="text-xs text-ink/60">`)
			h.text(FormatDate(r.CreatedAt))
			h.raw(`</p><p class="mt-2 whitespace-pre-line">`)
			h.text(r.Comment)
			h.raw(`</p></li>`)
		}
		h.raw(`</ol>`)
	}
	h.raw(`</li>`)
}

func authorBio(h *htmlWriter, site Site, a content.Author) {
	h.raw(`<section class="mt-16 flex gap-6 border-4 border-ink bg-white p-6">`)
	if src := site.image(a.Image, 160); src != "" {
		h.raw(`<img class="h-20 w-20 rounded-full border-2 border-ink object-cover" loading="lazy"`)
		h.attr("src", src)
		h.attr("alt", a.Name)
		h.raw(`/>`)
	}
	h.raw(`<div><p class="text-xs font-bold uppercase">Ditulis oleh</p><p class="text-xl font-black">`)
	h.text(a.Name)
	h.raw(`</p>`)
	if a.JobTitle != "" {
		h.raw(`<p class="text-sm font-bold text-ink/70">`)
		h.text(a.JobTitle)
		h.raw(`</p>`)
	}
	if a.ShortBio != "" {
		h.raw(`<p class="mt-2">`)
		h.text(a.ShortBio)
		h.raw(`</p>`)
	}
	h.raw(`</div></section>`)
}

func sidebar(h *htmlWriter, cats []content.Category) {
	if len(cats) == 0 {
		return
	}
	if len(cats) > sidebarCategories {
		cats = cats[:sidebarCategories]
	}
	h.raw(`<section class="border-4 border-ink bg-white p-5"><h2 class="text-lg font-black">Kategori</h2><ul class="mt-4 space-y-2">`)
	for _, c := range cats {
		h.raw(`<li class="flex justify-between"><a class="font-bold hover:underline"`)
		h.attr("href", "/blog/?category="+c.Slug+"#articles")
		h.raw(`>`)
		h.text(c.Title)
		h.raw(`</a><span class="text-ink/60">`)
		h.text(strconv.Itoa(c.PostCount))
		h.raw(`</span></li>`)
	}
	h.raw(`</ul></section>`)
}
