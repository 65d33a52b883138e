// Package sanity talks to the Sanity content lake over its HTTP API: GROQ
// queries against the query endpoint and document creation against the
// mutate endpoint.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/mindjourney/metrics"
)

const (
	defaultAPIVersion  = "2024-01-01"
	defaultPerspective = "published"
	defaultTimeout     = 10 * time.Second
	maxErrorBody       = 64 << 10
)

// Config holds the connection settings of a project dataset.
type Config struct {
	ProjectID   string
	Dataset     string
	APIVersion  string // default "2024-01-01"
	Token       string // required for writes
	UseCDN      bool   // reads go through apicdn.sanity.io
	Perspective string // default "published"
	Timeout     time.Duration

	// BaseURL replaces https://<project>.api.sanity.io, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Config) setDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	c.APIVersion = strings.TrimPrefix(c.APIVersion, "v")
	if c.Perspective == "" {
		c.Perspective = defaultPerspective
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// APIError is a non-2xx response from the Sanity API.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("sanity: http %d", e.StatusCode)
	}
	return fmt.Sprintf("sanity: http %d: %s", e.StatusCode, e.Description)
}

// Client is a minimal Sanity HTTP API client. It is safe for concurrent use.
type Client struct {
	cfg       Config
	http      *http.Client
	readHost  string
	writeHost string
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.ProjectID == "" {
		return nil, errors.New("sanity: project id is required")
	}
	if cfg.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{cfg: cfg, http: hc}
	switch {
	case cfg.BaseURL != "":
		base := strings.TrimRight(cfg.BaseURL, "/")
		c.readHost, c.writeHost = base, base
	case cfg.UseCDN:
		c.readHost = "https://" + cfg.ProjectID + ".apicdn.sanity.io"
		c.writeHost = "https://" + cfg.ProjectID + ".api.sanity.io"
	default:
		c.readHost = "https://" + cfg.ProjectID + ".api.sanity.io"
		c.writeHost = c.readHost
	}
	return c, nil
}

// ProjectID returns the configured project.
func (c *Client) ProjectID() string { return c.cfg.ProjectID }

// Dataset returns the configured dataset.
func (c *Client) Dataset() string { return c.cfg.Dataset }

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs a GROQ query with params and decodes its result into out.
// A null result leaves out untouched.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", query)
	q.Set("perspective", c.cfg.Perspective)
	for name, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("sanity: encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(b))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s", c.readHost, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sanity: build query request: %w", err)
	}

	var resp queryResponse
	if err := c.do(req, "query", &resp); err != nil {
		return err
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("sanity: decode query result: %w", err)
	}
	return nil
}

type mutateRequest struct {
	Mutations []map[string]any `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string          `json:"id"`
		Operation string          `json:"operation"`
		Document  json.RawMessage `json:"document"`
	} `json:"results"`
}

// Create writes doc as a new document and decodes the stored document,
// including its assigned _id and _createdAt, into out.
func (c *Client) Create(ctx context.Context, doc any, out any) error {
	body, err := json.Marshal(mutateRequest{Mutations: []map[string]any{{"create": doc}}})
	if err != nil {
		return fmt.Errorf("sanity: encode mutation: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?returnDocuments=true&visibility=sync",
		c.writeHost, c.cfg.APIVersion, url.PathEscape(c.cfg.Dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sanity: build mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp mutateResponse
	if err := c.do(req, "mutate", &resp); err != nil {
		return err
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Document) == 0 {
		return errors.New("sanity: mutation returned no document")
	}
	if err := json.Unmarshal(resp.Results[0].Document, out); err != nil {
		return fmt.Errorf("sanity: decode created document: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request, operation string, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreCall("sanity", operation, start, err) }()

	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity: %s: %w", operation, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return parseAPIError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("sanity: decode %s response: %w", operation, err)
	}
	return nil
}

// parseAPIError reads either {"error":{"description":...}} or
// {"error":"...","message":"..."} bodies.
func parseAPIError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		apiErr.Description = strings.TrimSpace(string(body))
		return apiErr
	}

	var nested struct {
		Description string `json:"description"`
	}
	var flat string
	switch {
	case json.Unmarshal(payload.Error, &nested) == nil && nested.Description != "":
		apiErr.Description = nested.Description
	case payload.Message != "":
		apiErr.Description = payload.Message
	case json.Unmarshal(payload.Error, &flat) == nil:
		apiErr.Description = flat
	}
	return apiErr
}
