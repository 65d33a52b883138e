package views

import (
	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/portabletext"
)

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	ImageURL    content.ImageURLFunc
}

func (s Site) image(img content.Image, width int) string {
	if s.ImageURL == nil || img.IsZero() {
		return ""
	}
	return s.ImageURL(img, width)
}

func (s Site) assetFunc() portabletext.ImageFunc {
	return func(ref string, width int) string {
		return s.image(content.Image{AssetRef: ref}, width)
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}

// ListingData is shared by the landing page and the blog listing.
type ListingData struct {
	Newest         []content.Post
	Posts          []content.Post
	Categories     []content.Category
	ActiveCategory string
}

// Flash is the one-time outcome of a comment form submission.
type Flash struct {
	Success string
	Error   string
}

// PostData is everything the post page renders.
type PostData struct {
	Post                content.Post
	Comments            []content.Comment
	CommentsUnavailable bool
	Categories          []content.Category
	CSRFToken           string
	Flash               Flash
}
