package mindjourney

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/mindjourney/content"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// sourceAddress is the submitter's address as reported by the proxy
// headers, X-Forwarded-For first. The raw header value is kept.
func sourceAddress(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.Header.Get("X-Real-IP")); v != "" {
		return v
	}
	return content.Unknown
}

func clientAgent(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("User-Agent")); v != "" {
		return v
	}
	return content.Unknown
}

// newest returns at most n posts from the head of posts.
func newest(posts []content.Post, n int) []content.Post {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}

// nonEmptyCategories drops categories with no posts.
func nonEmptyCategories(cats []content.Category) []content.Category {
	var out []content.Category
	for _, c := range cats {
		if c.PostCount > 0 {
			out = append(out, c)
		}
	}
	return out
}
