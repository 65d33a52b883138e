// Package mindjourney is the MindJourney blog: server-rendered pages backed
// by a headless content store, and a moderated comment system exposed as a
// JSON API and a plain HTML form.
//
// Content comes from a content.Store and comments go through a
// content.CommentStore. Both are constructed by the caller and injected, so
// the same App runs against the remote CMS or the local SQLite store.
package mindjourney

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/docstore"
	"github.com/eringen/mindjourney/logger"
	"github.com/eringen/mindjourney/notify"
)

// App is the central application. It wires together the stores, cache,
// handlers, middleware and pages.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Content  content.Store
	Comments content.CommentStore
	Cache    *PostCache

	limiter      *CommentLimiter
	notifier     notify.Publisher
	log          zerolog.Logger
	imageURL     content.ImageURLFunc
	customRoutes []func(*App)
	staticDir    string
	setupOnce    sync.Once
}

// New creates an App serving posts from store and comments from comments.
func New(cfg SiteConfig, store content.Store, comments content.CommentStore, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config:    cfg,
		Echo:      e,
		Content:   store,
		Comments:  comments,
		notifier:  notify.Nop{},
		log:       logger.New(cfg.LogLevel, cfg.LogFormat),
		imageURL:  docstore.ImageURL,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *App) setup() {
	a.setupOnce.Do(func() {
		a.Cache = NewPostCache(a.Content, a.Config.PostCacheTTL)
		a.limiter = NewCommentLimiter(a.Config.CommentRateLimit, a.Config.CommentRateWindow)

		a.setupMiddleware()
		a.setupRoutes()

		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
}

// Handler returns the fully wired HTTP handler without starting a server.
func (a *App) Handler() http.Handler {
	a.setup()
	return a.Echo
}

// Start validates the configuration, wires the app and serves until the
// server is shut down.
func (a *App) Start() error {
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("mindjourney: invalid config: %w", err)
	}
	a.setup()

	a.log.Info().
		Str("addr", a.Config.Addr).
		Str("store", a.Config.StoreDriver).
		Msg("server starting")

	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.renderRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/", a.handleHome)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.POST("/blog/:slug/comments/", a.handleCommentForm)
	e.GET("/about/", a.handleAbout)

	e.GET("/api/comments", a.handleListComments)
	e.POST("/api/comments", a.handleCreateComment)

	if a.Config.StoreDriver == DriverSQLite {
		e.GET("/media/:name", a.handleMedia)
	}
}

// Close releases the limiter and the notifier. Stores are owned by the caller.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.notifier != nil {
		return a.notifier.Close()
	}
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.log
}
