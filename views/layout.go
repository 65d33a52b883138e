package views

import (
	"github.com/a-h/templ"
)

func layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		title := meta.Title
		if title == "" {
			title = site.Name
		} else {
			title += " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		jsonLD := meta.JSONLD
		if jsonLD == "" {
			jsonLD = WebsiteJsonLD(site)
		}

		h.raw(`<!doctype html><html lang="id"><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><meta name="description"`)
		h.attr("content", description)
		h.raw(`/>`)
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(`/><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(`/>`)
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`/><meta property="og:description"`)
		h.attr("content", description)
		h.raw(`/><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`/>`)
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw(`/>`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.raw(` href="/feed.xml"/>`)
		h.raw(`<link rel="stylesheet" href="/public/styles.css"/>`)
		h.raw(`<script type="application/ld+json">`)
		h.raw(jsonLD)
		h.raw(`</script></head>`)

		h.raw(`<body class="min-h-screen bg-cream text-ink font-sans antialiased">`)
		navbar(h, site)
		h.raw(`<main id="main">`)
		h.component(body)
		h.raw(`</main>`)
		footer(h, site)
		h.raw(`</body></html>`)
	})
}

func navbar(h *htmlWriter, site Site) {
	h.raw(`<header class="sticky top-0 z-40 border-b-4 border-ink bg-white"><nav class="mx-auto flex max-w-6xl items-center justify-between px-4 py-3">`)
	h.raw(`<a href="/" class="text-xl font-black tracking-tight">`)
	h.text(site.Name)
	h.raw(`</a><ul class="flex gap-6 text-sm font-bold uppercase">`)
	for _, l := range []struct{ href, label string }{
		{"/", "Beranda"},
		{"/blog/", "Blog"},
		{"/about/", "Tentang"},
	} {
		h.raw(`<li><a class="hover:underline"`)
		h.attr("href", l.href)
		h.raw(`>`)
		h.text(l.label)
		h.raw(`</a></li>`)
	}
	h.raw(`</ul></nav></header>`)
}

func footer(h *htmlWriter, site Site) {
	h.raw(`<footer class="mt-16 border-t-4 border-ink bg-white"><div class="mx-auto max-w-6xl px-4 py-8 text-sm">`)
	h.raw(`<p class="font-black">`)
	h.text(site.Name)
	h.raw(`</p>`)
	if site.Description != "" {
		h.raw(`<p class="mt-2 text-ink/70">`)
		h.text(site.Description)
		h.raw(`</p>`)
	}
	h.raw(`<p class="mt-4"><a href="/feed.xml" class="underline">RSS</a></p></div></footer>`)
}
