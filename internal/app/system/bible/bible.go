// Package bible proxies chapter and verse lookups to the Bible text API.
// Nothing is stored locally.
package bible

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.abibliadigital.com.br/api"
	DefaultVersion = "nvi"
)

// ErrNoToken is returned when the client has no API token.
var ErrNoToken = errors.New("bible: api token not configured")

// Book identifies a book of the Bible.
type Book struct {
	Name   string `json:"name"`
	Abbrev struct {
		PT string `json:"pt"`
		EN string `json:"en"`
	} `json:"abbrev"`
}

// Verse is one numbered verse.
type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ChapterInfo is the chapter number and its verse count.
type ChapterInfo struct {
	Number int `json:"number"`
	Verses int `json:"verses"`
}

// Chapter is a full chapter as returned upstream.
type Chapter struct {
	Book    Book        `json:"book"`
	Chapter ChapterInfo `json:"chapter"`
	Verses  []Verse     `json:"verses"`
}

// Only returns a copy of ch holding just verse n. n <= 0 keeps every verse.
func (ch Chapter) Only(n int) Chapter {
	if n <= 0 {
		return ch
	}
	out := ch
	out.Verses = []Verse{}
	for _, v := range ch.Verses {
		if v.Number == n {
			out.Verses = append(out.Verses, v)
		}
	}
	return out
}

// RandomVerse is the payload of the random-verse endpoint.
type RandomVerse struct {
	Book    Book   `json:"book"`
	Chapter int    `json:"chapter"`
	Number  int    `json:"number"`
	Text    string `json:"text"`
}

// Config configures the client.
type Config struct {
	BaseURL        string
	Token          string
	DefaultVersion string
	Timeout        time.Duration
}

// Client talks to the Bible API.
type Client struct {
	http    *resty.Client
	token   string
	version string
	log     *zap.Logger
}

// New builds a client. Empty BaseURL and DefaultVersion use the defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	version := cfg.DefaultVersion
	if version == "" {
		version = DefaultVersion
	}
	hc := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		hc.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		hc.SetAuthToken(cfg.Token)
	} else {
		logger.Warn("bible api token not set; /api/bible will fail")
	}
	return &Client{http: hc, token: cfg.Token, version: version, log: logger}
}

// DefaultVersion is the version used when a caller passes none.
func (c *Client) DefaultVersion() string { return c.version }

// GetChapter fetches a whole chapter. An empty version uses the default.
func (c *Client) GetChapter(ctx context.Context, version, book string, chapter int) (*Chapter, error) {
	if version == "" {
		version = c.version
	}
	path := "/verses/" + url.PathEscape(version) + "/" + url.PathEscape(book) + "/" + strconv.Itoa(chapter)
	var out Chapter
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Random fetches a random verse.
func (c *Client) Random(ctx context.Context, version string) (*RandomVerse, error) {
	if version == "" {
		version = c.version
	}
	var out RandomVerse
	if err := c.get(ctx, "/verses/"+url.PathEscape(version)+"/random", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.token == "" {
		return ErrNoToken
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("bible: request %s: %w", path, err)
	}
	if resp.IsError() {
		c.log.Error("bible api error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return fmt.Errorf("bible: %s returned %d", path, resp.StatusCode())
	}
	return nil
}
