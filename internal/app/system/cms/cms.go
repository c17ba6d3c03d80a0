// Package cms is a read-only client for the headless CMS GraphQL endpoint.
//
// Successful responses are kept in a bounded LRU. When a later call for the
// same query fails, the last good payload is served instead, so pages keep
// working through short CMS outages. Callers that still get an error fall
// back to the content compiled into the binary.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultCacheSize bounds the last-known-good cache when Config leaves it 0.
const DefaultCacheSize = 128

var (
	// ErrNotConfigured is returned when no GraphQL URL or token is set.
	ErrNotConfigured = errors.New("cms: not configured")
	// ErrNoData is returned when the response carries neither data nor errors.
	ErrNoData = errors.New("cms: response has no data")
)

// Config is the CMS connection. GraphQLURL and APIToken are both required
// for the client to issue requests.
type Config struct {
	GraphQLURL   string
	APIToken     string
	MediaBaseURL string
	CacheSize    int
	Timeout      time.Duration
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// ResponseError reports GraphQL-level errors in an otherwise OK response.
type ResponseError struct {
	Errors []GraphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "cms: graphql errors: " + strings.Join(msgs, "; ")
}

// Client issues GraphQL queries. It is safe for concurrent use.
type Client struct {
	cfg   Config
	http  *resty.Client
	cache *lru.Cache[string, json.RawMessage]
	log   *zap.Logger
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// New builds a client. An unconfigured client is valid; every Query on it
// returns ErrNotConfigured and a single warning is logged here.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, json.RawMessage](size)
	if err != nil {
		return nil, fmt.Errorf("cms cache: %w", err)
	}

	hc := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		hc.SetTimeout(cfg.Timeout)
	}
	if cfg.APIToken != "" {
		hc.SetAuthToken(cfg.APIToken)
	}

	c := &Client{cfg: cfg, http: hc, cache: cache, log: logger}
	if !c.Configured() {
		logger.Warn("cms not configured; devotionals and plans will use embedded content",
			zap.Bool("graphql_url_set", cfg.GraphQLURL != ""),
			zap.Bool("api_token_set", cfg.APIToken != ""))
	}
	return c, nil
}

// Configured reports whether both the GraphQL URL and the token are set.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.GraphQLURL != "" && c.cfg.APIToken != ""
}

// MediaURL resolves a CMS media path against MediaBaseURL. Absolute URLs
// and empty paths are returned unchanged.
func (c *Client) MediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if c == nil {
		return path
	}
	return strings.TrimRight(c.cfg.MediaBaseURL, "/") + path
}

// Query runs query with vars and decodes "data" into out.
//
// A non-2xx status, a non-empty "errors" array, and a null "data" are all
// failures. On failure the last good payload for the same query and
// variables is decoded instead, if one is cached.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if vars == nil {
		vars = map[string]any{}
	}
	key, err := cacheKey(query, vars)
	if err != nil {
		return err
	}

	data, err := c.fetch(ctx, query, vars)
	if err != nil {
		cached, ok := c.cache.Get(key)
		if !ok {
			return err
		}
		c.log.Warn("cms request failed; serving cached response", zap.Error(err))
		data = cached
	} else {
		c.cache.Add(key, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cms: decode data: %w", err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error) {
	var body response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request{Query: query, Variables: vars}).
		SetResult(&body).
		SetError(&body).
		Post(c.cfg.GraphQLURL)
	if err != nil {
		return nil, fmt.Errorf("cms: request: %w", err)
	}
	if resp.IsError() {
		c.log.Error("cms http error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 512)))
		return nil, fmt.Errorf("cms: http %d", resp.StatusCode())
	}
	if len(body.Errors) > 0 {
		c.log.Error("cms graphql errors", zap.Int("count", len(body.Errors)),
			zap.String("first", body.Errors[0].Message))
		return nil, &ResponseError{Errors: body.Errors}
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return nil, ErrNoData
	}
	return body.Data, nil
}

func cacheKey(query string, vars map[string]any) (string, error) {
	b, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("cms: encode variables: %w", err)
	}
	return query + "\x00" + string(b), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
