// Package content defines the documents the site reads from and writes to the
// content store, and the interfaces every store backend implements.
package content

import (
	"context"
	"errors"
	"time"

	"github.com/eringen/mindjourney/portabletext"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("content: not found")

// Store is the read path for posts and categories.
type Store interface {
	// ListPosts returns every post ordered by publishedAt descending, without bodies.
	ListPosts(ctx context.Context) ([]Post, error)
	// GetPost returns the full post for slug, or ErrNotFound.
	GetPost(ctx context.Context, slug string) (Post, error)
	// ListCategories returns categories ordered by featured desc, title asc.
	ListCategories(ctx context.Context) ([]Category, error)
}

// CommentStore is the only path comment data takes between the site and the store.
type CommentStore interface {
	// ApprovedComments returns the visible top-level comments of a post,
	// newest first, each with its approved replies.
	ApprovedComments(ctx context.Context, postID string) ([]Comment, error)
	// CreateComment persists an unapproved, non-spam comment.
	CreateComment(ctx context.Context, draft CommentDraft) (CommentDocument, error)
}

// ImageURLFunc resolves an image to a URL at the requested width in pixels.
type ImageURLFunc func(img Image, width int) string

// Image is a reference to a media asset.
type Image struct {
	AssetRef string `json:"assetRef"`
	Alt      string `json:"alt,omitempty"`
}

// IsZero reports whether the image has no asset.
func (i Image) IsZero() bool {
	return i.AssetRef == ""
}

// Author is the person a post is attributed to.
type Author struct {
	Name     string `json:"name"`
	Slug     string `json:"slug,omitempty"`
	Image    Image  `json:"image"`
	ShortBio string `json:"shortBio,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
}

// Category groups posts. PostCount is only populated by ListCategories.
type Category struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Featured  bool   `json:"featured"`
	PostCount int    `json:"postCount"`
}

// Post is a published article. Body and Related are only populated by GetPost.
type Post struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	Excerpt     string               `json:"excerpt"`
	MainImage   Image                `json:"mainImage"`
	Body        []portabletext.Block `json:"body,omitempty"`
	Category    *Category            `json:"category,omitempty"`
	Author      *Author              `json:"author,omitempty"`
	PublishedAt time.Time            `json:"publishedAt"`
	ReadTime    int                  `json:"readTime"`
	Featured    bool                 `json:"featured"`
	Premium     bool                 `json:"premium"`
	Tags        []string             `json:"tags,omitempty"`
	Related     []Post               `json:"related,omitempty"`
}

// Link returns the site path of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// InCategory reports whether the post belongs to the category with slug.
func (p Post) InCategory(slug string) bool {
	return p.Category != nil && p.Category.Slug == slug
}
