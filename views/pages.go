package views

import (
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/mindjourney/content"
)

const (
	cardImageWidth = 600
	heroImageWidth = 1200
)

// Home is the landing page: hero, about teaser, newest posts and every post
// with a category filter.
func Home(site Site, data ListingData) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="border-b-4 border-ink bg-yellow-200"><div class="mx-auto max-w-6xl px-4 py-20">`)
		h.raw(`<p class="text-sm font-bold uppercase tracking-widest">Selamat datang di</p><h1 class="mt-2 text-5xl font-black">`)
		h.text(site.Name)
		h.raw(`</h1><p class="mt-4 text-xl">Jurnal Perjalanan Tumbuhku</p>`)
		h.raw(`<a href="#newest" class="mt-8 inline-block border-4 border-ink bg-white px-6 py-3 font-bold shadow-[4px_4px_0_0_#000]">Baca tulisan terbaru</a>`)
		h.raw(`</div></section>`)

		h.raw(`<section id="about" class="mx-auto max-w-6xl px-4 py-16"><h2 class="text-3xl font-black">Tentang Aku</h2><p class="mt-4 max-w-2xl text-lg">`)
		h.text(site.Description)
		h.raw(`</p><a href="/about/" class="mt-4 inline-block font-bold underline">Kenalan lebih jauh</a></section>`)

		newestSection(h, site, data.Newest)
		allPostsSection(h, site, data, "/")
	})
	return layout(site, PageMeta{URL: buildURL(site.URL), Description: site.Description}, body)
}

// Blog is the post listing, optionally filtered by category.
func Blog(site Site, data ListingData) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="border-b-4 border-ink bg-sky-200"><div class="mx-auto max-w-6xl px-4 py-16">`)
		h.raw(`<h1 class="text-5xl font-black">Blog</h1><p class="mt-4 text-lg">Setiap perjalanan dimulai dengan satu langkah kecil. Yang penting adalah terus melangkah.</p>`)
		h.raw(`</div></section>`)
		newestSection(h, site, data.Newest)
		allPostsSection(h, site, data, "/blog/")
	})
	meta := PageMeta{Title: "Blog", URL: buildURL(site.URL, "blog")}
	if data.ActiveCategory != "" {
		meta.URL += "?category=" + url.QueryEscape(data.ActiveCategory)
	}
	return layout(site, meta, body)
}

// About is the author page.
func About(site Site) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="mx-auto max-w-3xl px-4 py-16"><h1 class="text-5xl font-black">Tentang</h1>`)
		h.raw(`<p class="mt-6 text-lg">`)
		h.text(site.Description)
		h.raw(`</p>`)
		if site.Author != "" {
			h.raw(`<p class="mt-6 text-lg">Hai, aku `)
			h.text(site.Author)
			h.raw(`! Di sini aku menulis tentang memahami diri, orang lain, dan kehidupan.</p>`)
		}
		h.raw(`<blockquote class="mt-10 border-l-4 border-ink pl-4 italic">Karena terkadang, yang kita butuhkan hanyalah seseorang yang mau benar-benar mendengar.</blockquote>`)
		h.raw(`</section>`)
	})
	return layout(site, PageMeta{Title: "Tentang", URL: buildURL(site.URL, "about")}, body)
}

// NotFound is the 404 page.
func NotFound(site Site) templ.Component {
	return errorPage(site, "404", "Halaman tidak ditemukan", "Tulisan yang kamu cari mungkin sudah dipindahkan atau tidak pernah ada.")
}

// ServerError is the 500 page.
func ServerError(site Site) templ.Component {
	return errorPage(site, "500", "Terjadi kesalahan", "Ada yang tidak beres di sisi kami. Silakan coba lagi sebentar lagi.")
}

func errorPage(site Site, code, title, message string) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="mx-auto max-w-3xl px-4 py-24 text-center"><p class="text-7xl font-black">`)
		h.text(code)
		h.raw(`</p><h1 class="mt-4 text-3xl font-black">`)
		h.text(title)
		h.raw(`</h1><p class="mt-4">`)
		h.text(message)
		h.raw(`</p><a href="/" class="mt-8 inline-block border-4 border-ink bg-white px-6 py-3 font-bold">Kembali ke beranda</a></section>`)
	})
	return layout(site, PageMeta{Title: title}, body)
}

func newestSection(h *htmlWriter, site Site, posts []content.Post) {
	h.raw(`<section id="newest" class="mx-auto max-w-6xl px-4 py-16"><h2 class="text-3xl font-black">Tulisan terbaru untuk kamu</h2>`)
	if len(posts) == 0 {
		h.raw(`<p class="mt-6">Belum ada artikel yang dipublikasikan.</p></section>`)
		return
	}
	h.raw(`<div class="mt-8 flex snap-x gap-6 overflow-x-auto pb-4">`)
	for i, p := range posts {
		h.raw(`<div class="w-80 shrink-0 snap-start">`)
		postCard(h, site, p, i == 0)
		h.raw(`</div>`)
	}
	h.raw(`</div></section>`)
}

func allPostsSection(h *htmlWriter, site Site, data ListingData, basePath string) {
	h.raw(`<section id="articles" class="mx-auto max-w-6xl px-4 py-16"><h2 class="text-3xl font-black">Semua Artikel</h2>`)
	categoryFilter(h, data.Categories, data.ActiveCategory, basePath)
	if len(data.Posts) == 0 {
		if data.ActiveCategory != "" {
			h.raw(`<p class="mt-6">Tidak ada artikel dalam kategori ini.</p>`)
		} else {
			h.raw(`<p class="mt-6">Belum ada artikel yang dipublikasikan.</p>`)
		}
		h.raw(`</section>`)
		return
	}
	h.raw(`<div class="mt-8 grid gap-6 sm:grid-cols-2 lg:grid-cols-3">`)
	for _, p := range data.Posts {
		postCard(h, site, p, false)
	}
	h.raw(`</div></section>`)
}

func categoryFilter(h *htmlWriter, cats []content.Category, active, basePath string) {
	if len(cats) == 0 {
		return
	}
	h.raw(`<nav class="mt-6 flex flex-wrap gap-2" aria-label="Kategori"><a`)
	h.attr("class", categoryClass(active == ""))
	h.attr("href", basePath+"#articles")
	h.raw(`>Semua Kategori</a>`)
	for _, c := range cats {
		h.raw(`<a`)
		h.attr("class", categoryClass(active == c.Slug))
		h.attr("href", basePath+"?category="+url.QueryEscape(c.Slug)+"#articles")
		h.raw(`>`)
		h.text(c.Title)
		h.raw(` <span class="opacity-60">`)
		h.text(strconv.Itoa(c.PostCount))
		h.raw(`</span></a>`)
	}
	h.raw(`</nav>`)
}

func postCard(h *htmlWriter, site Site, p content.Post, priority bool) {
	h.raw(`<article class="flex h-full flex-col border-4 border-ink bg-white shadow-[6px_6px_0_0_#000]"><a`)
	h.attr("href", p.Link())
	h.raw(` class="block">`)
	if src := site.image(p.MainImage, cardImageWidth); src != "" {
		h.raw(`<img class="aspect-video w-full border-b-4 border-ink object-cover"`)
		h.attr("src", src)
		alt := p.MainImage.Alt
		if alt == "" {
			alt = p.Title
		}
		h.attr("alt", alt)
		if priority {
			h.raw(` fetchpriority="high"`)
		} else {
			h.raw(` loading="lazy"`)
		}
		h.raw(` decoding="async"/>`)
	} else {
		h.raw(`<div class="flex aspect-video items-center justify-center border-b-4 border-ink bg-stone-200 text-sm font-bold">No Image</div>`)
	}
	h.raw(`</a><div class="flex flex-1 flex-col p-5">`)
	if p.Category != nil {
		categoryBadge(h, *p.Category)
	}
	h.raw(`<h3 class="mt-3 text-xl font-black"><a`)
	h.attr("href", p.Link())
	h.raw(`>`)
	h.text(p.Title)
	h.raw(`</a></h3>`)
	if p.Excerpt != "" {
		h.raw(`<p class="mt-2 flex-1 text-sm">`)
		h.text(p.Excerpt)
		h.raw(`</p>`)
	}
	h.raw(`<p class="mt-4 text-xs font-bold uppercase text-ink/60">`)
	h.text(FormatDate(p.PublishedAt))
	if p.ReadTime > 0 {
		h.text(" · " + readTime(p.ReadTime))
	}
	h.raw(`</p></div></article>`)
}

func categoryBadge(h *htmlWriter, c content.Category) {
	h.raw(`<a class="self-start rounded-full border-2 border-ink px-2 py-0.5 text-xs font-bold uppercase"`)
	h.attr("href", "/blog/?category="+url.QueryEscape(c.Slug)+"#articles")
	if c.Color != "" {
		h.attr("data-color", c.Color)
	}
	h.raw(`>`)
	h.text(c.Title)
	h.raw(`</a>`)
}
