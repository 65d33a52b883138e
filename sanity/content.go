package sanity

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/portabletext"
)

const postCard = `
  "id": _id,
  title,
  "slug": slug.current,
  excerpt,
  "mainImage": {"assetRef": mainImage.asset._ref, "alt": mainImage.alt},
  "category": category->{"id": _id, title, "slug": slug.current, color, icon},
  publishedAt,
  "readTime": coalesce(readTime, 0),
  "featured": coalesce(featured, false),
  "premium": coalesce(premium, false),
  tags`

const cardAuthor = `
  "author": author->{name, "slug": slug.current, "image": {"assetRef": image.asset._ref}}`

const allPostsQuery = `*[_type == "post" && defined(slug.current)] | order(publishedAt desc) {` + postCard + `,` + cardAuthor + `
}`

const postQuery = `*[_type == "post" && slug.current == $slug][0] {` + postCard + `,
  body,
  "author": author->{name, "slug": slug.current, "image": {"assetRef": image.asset._ref}, shortBio, jobTitle},
  "related": *[_type == "post" && references(^.category._ref) && slug.current != $slug] | order(publishedAt desc) [0...3] {` + postCard + `,` + cardAuthor + `
  }
}`

const categoriesQuery = `*[_type == "category"] | order(featured desc, title asc) {
  "id": _id,
  title,
  "slug": slug.current,
  color,
  icon,
  "featured": coalesce(featured, false),
  "postCount": count(*[_type == "post" && references(^._id)])
}`

// ContentGateway implements content.Store against a dataset.
type ContentGateway struct {
	client *Client
}

// NewContentGateway returns a read-only gateway using client.
func NewContentGateway(client *Client) *ContentGateway {
	return &ContentGateway{client: client}
}

var _ content.Store = (*ContentGateway)(nil)

func (g *ContentGateway) ListPosts(ctx context.Context) ([]content.Post, error) {
	var posts []content.Post
	if err := g.client.Query(ctx, allPostsQuery, nil, &posts); err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	for i := range posts {
		fillReadTime(&posts[i])
	}
	return posts, nil
}

func (g *ContentGateway) GetPost(ctx context.Context, slug string) (content.Post, error) {
	var post *content.Post
	if err := g.client.Query(ctx, postQuery, map[string]any{"slug": slug}, &post); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return content.Post{}, content.ErrNotFound
		}
		return content.Post{}, fmt.Errorf("query post %q: %w", slug, err)
	}
	if post == nil || post.Slug == "" {
		return content.Post{}, content.ErrNotFound
	}
	fillReadTime(post)
	for i := range post.Related {
		fillReadTime(&post.Related[i])
	}
	return *post, nil
}

func (g *ContentGateway) ListCategories(ctx context.Context) ([]content.Category, error) {
	var cats []content.Category
	if err := g.client.Query(ctx, categoriesQuery, nil, &cats); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return cats, nil
}

// fillReadTime estimates the read time of posts that do not declare one.
func fillReadTime(p *content.Post) {
	if p.ReadTime > 0 {
		return
	}
	p.ReadTime = portabletext.ReadTime(p.Body)
}
