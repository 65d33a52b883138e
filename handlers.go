package mindjourney

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/views"
)

const newestCount = 6

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		ImageURL:    a.imageURL,
	}
}

// listing loads the data shared by the landing page and the blog listing.
func (a *App) listing(c echo.Context) (views.ListingData, error) {
	ctx := c.Request().Context()
	category := strings.TrimSpace(c.QueryParam("category"))

	all, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return views.ListingData{}, err
	}
	posts := all
	if category != "" {
		if posts, err = a.Cache.ListPosts(ctx, category); err != nil {
			return views.ListingData{}, err
		}
	}
	cats, err := a.Cache.ListCategories(ctx)
	if err != nil {
		return views.ListingData{}, err
	}
	return views.ListingData{
		Newest:         newest(all, newestCount),
		Posts:          posts,
		Categories:     nonEmptyCategories(cats),
		ActiveCategory: category,
	}, nil
}

func (a *App) handleHome(c echo.Context) error {
	data, err := a.listing(c)
	if err != nil {
		return err
	}
	return Render(c, views.Home(a.site(), data))
}

func (a *App) handleBlog(c echo.Context) error {
	data, err := a.listing(c)
	if err != nil {
		return err
	}
	return Render(c, views.Blog(a.site(), data))
}

func handleBlogRedirect(c echo.Context) error {
	target := "/blog/"
	if q := c.QueryString(); q != "" {
		target += "?" + q
	}
	return c.Redirect(http.StatusMovedPermanently, target)
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	post, err := a.Cache.GetPost(ctx, slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	cats, err := a.Cache.ListCategories(ctx)
	if err != nil {
		return err
	}

	data := views.PostData{
		Post:       post,
		Categories: cats,
		CSRFToken:  CsrfToken(c),
		Flash:      popFlash(c),
	}
	comments, err := a.Comments.ApprovedComments(ctx, post.ID)
	if err != nil {
		a.log.Error().Err(err).Str("post_id", post.ID).Msg("fetch comments for post page")
		data.CommentsUnavailable = true
	} else {
		data.Comments = comments
	}
	return Render(c, views.Post(a.site(), data))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, views.About(a.site()))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = a.renderServerError(c, code)
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
