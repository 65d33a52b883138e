package mindjourney

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eringen/mindjourney/content"
	"github.com/eringen/mindjourney/notify"
)

// Store drivers.
const (
	DriverSanity = "sanity"
	DriverSQLite = "sqlite"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "MindJourney")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	StoreDriver  string // "sanity" or "sqlite" (default "sqlite")
	DatabasePath string // SQLite path (default "data/mindjourney.db")
	MediaDir     string // Local images served at /media/ (default "media")

	SanityProjectID  string
	SanityDataset    string // default "production"
	SanityAPIVersion string // default "2024-01-01"
	SanityToken      string // Required for comment writes against Sanity
	SanityUseCDN     bool
	SanityTimeout    time.Duration // default 10s

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL      time.Duration // default 30s
	CommentRateLimit  int           // Submissions per window per IP (default 5)
	CommentRateWindow time.Duration // default 10m

	RabbitMQURL      string // Empty disables moderation events
	RabbitMQExchange string // default "events_exchange"

	LogLevel  string // default "info"
	LogFormat string // "json" or "pretty" (default "json")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "MindJourney"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.StoreDriver == "" {
		c.StoreDriver = DriverSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/mindjourney.db"
	}
	if c.MediaDir == "" {
		c.MediaDir = "media"
	}
	if c.SanityDataset == "" {
		c.SanityDataset = "production"
	}
	if c.SanityAPIVersion == "" {
		c.SanityAPIVersion = "2024-01-01"
	}
	if c.SanityTimeout == 0 {
		c.SanityTimeout = 10 * time.Second
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 30 * time.Second
	}
	if c.CommentRateLimit == 0 {
		c.CommentRateLimit = 5
	}
	if c.CommentRateWindow == 0 {
		c.CommentRateWindow = 10 * time.Minute
	}
	if c.RabbitMQExchange == "" {
		c.RabbitMQExchange = notify.DefaultExchange
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *SiteConfig) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverSQLite:
	case DriverSanity:
		if c.SanityProjectID == "" {
			errs = append(errs, errors.New("SANITY_PROJECT_ID is required when STORE_DRIVER=sanity"))
		}
		if c.SanityToken == "" {
			errs = append(errs, errors.New("SANITY_API_TOKEN is required when STORE_DRIVER=sanity"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSanity, DriverSQLite, c.StoreDriver))
	}
	if c.CommentRateLimit < 0 {
		errs = append(errs, errors.New("COMMENT_RATE_LIMIT must not be negative"))
	}
	if c.CommentRateWindow < 0 {
		errs = append(errs, errors.New("COMMENT_RATE_WINDOW must not be negative"))
	}
	if c.SanityTimeout < 0 {
		errs = append(errs, errors.New("SANITY_TIMEOUT must not be negative"))
	}
	if c.PostCacheTTL < 0 {
		errs = append(errs, errors.New("POST_CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads the configuration from the environment and applies defaults.
func LoadConfig() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:        getEnv("SITE_NAME", ""),
		URL:         getEnv("SITE_URL", ""),
		Description: getEnv("SITE_DESCRIPTION", "Catatan perjalanan batin, kebiasaan kecil, dan kesehatan mental."),
		Author:      getEnv("SITE_AUTHOR", ""),

		Addr:         getEnv("ADDR", ""),
		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "")),
		DatabasePath: getEnv("DATABASE_PATH", ""),
		MediaDir:     getEnv("MEDIA_DIR", ""),

		SanityProjectID:  getEnv("SANITY_PROJECT_ID", ""),
		SanityDataset:    getEnv("SANITY_DATASET", ""),
		SanityAPIVersion: getEnv("SANITY_API_VERSION", ""),
		SanityToken:      getEnv("SANITY_API_TOKEN", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", ""),

		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogFormat: getEnv("LOG_FORMAT", ""),
	}

	var errs []error
	var err error
	if cfg.SanityUseCDN, err = getBoolEnv("SANITY_USE_CDN", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.CookieSecure, err = getBoolEnv("COOKIE_SECURE", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.SanityTimeout, err = getDurationEnv("SANITY_TIMEOUT", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.PostCacheTTL, err = getDurationEnv("POST_CACHE_TTL", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.CommentRateLimit, err = getIntEnv("COMMENT_RATE_LIMIT", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.CommentRateWindow, err = getDurationEnv("COMMENT_RATE_WINDOW", 0); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return SiteConfig{}, err
	}

	cfg.setDefaults()
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithNotifier publishes comment events through p instead of discarding them.
func WithNotifier(p notify.Publisher) Option {
	return func(a *App) {
		a.notifier = p
	}
}

// WithImageURL sets how images are resolved to URLs (default: local /media/).
func WithImageURL(fn content.ImageURLFunc) Option {
	return func(a *App) {
		a.imageURL = fn
	}
}
