package mindjourney

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/metrics"
)

// PostCache is an in-memory read-through cache of posts and categories with
// TTL. Comments are never cached.
type PostCache struct {
	mu         sync.RWMutex
	store      content.Store
	ttl        time.Duration
	now        func() time.Time
	posts      []content.Post
	categories []content.Category
	fetched    time.Time
	entries    map[string]cachedPost
}

type cachedPost struct {
	post    content.Post
	fetched time.Time
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s content.Store, ttl time.Duration) *PostCache {
	return &PostCache{
		store:   s,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedPost),
	}
}

func (c *PostCache) fresh(fetched time.Time) bool {
	return !fetched.IsZero() && c.now().Sub(fetched) < c.ttl
}

func hit(ok bool) {
	if ok {
		metrics.PostCacheResults.WithLabelValues("hit").Inc()
	} else {
		metrics.PostCacheResults.WithLabelValues("miss").Inc()
	}
}

// ensureLoaded returns cached posts and categories after ensuring the cache
// is fresh. It tries a read lock first and only takes the write lock if a
// reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, []content.Category, error) {
	c.mu.RLock()
	if c.fresh(c.fetched) {
		posts, cats := c.posts, c.categories
		c.mu.RUnlock()
		hit(true)
		return posts, cats, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh(c.fetched) {
		hit(true)
		return c.posts, c.categories, nil
	}
	hit(false)

	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, nil, err
	}
	cats, err := c.store.ListCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.posts, c.categories, c.fetched = posts, cats, c.now()
	return posts, cats, nil
}

// ListPosts returns posts newest first, optionally filtered by category slug.
func (c *PostCache) ListPosts(ctx context.Context, category string) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return posts, nil
	}
	var filtered []content.Post
	for _, p := range posts {
		if p.InCategory(category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ListCategories returns every category ordered featured first, then by title.
func (c *PostCache) ListCategories(ctx context.Context) ([]content.Category, error) {
	_, cats, err := c.ensureLoaded(ctx)
	return cats, err
}

// GetPost returns the full post for slug. Misses are not cached.
func (c *PostCache) GetPost(ctx context.Context, slug string) (content.Post, error) {
	c.mu.RLock()
	e, ok := c.entries[slug]
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		hit(true)
		return e.post, nil
	}
	hit(false)

	post, err := c.store.GetPost(ctx, slug)
	if err != nil {
		return content.Post{}, err
	}
	c.mu.Lock()
	c.entries[slug] = cachedPost{post: post, fetched: c.now()}
	c.mu.Unlock()
	return post, nil
}
