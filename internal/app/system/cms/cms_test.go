package cms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type plansData struct {
	ReadingPlans []struct {
		Slug string `json:"slug"`
	} `json:"readingPlans"`
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{GraphQLURL: url, APIToken: "tok", Timeout: 2 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestQuery_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization: got %q", got)
		}
		var req request
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Variables["slug"] != "caminho" {
			t.Errorf("variables: got %v", req.Variables)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"readingPlans":[{"slug":"caminho"}]}}`)
	}))
	defer srv.Close()

	var out plansData
	err := newClient(t, srv.URL).Query(context.Background(), "query Q { x }", map[string]any{"slug": "caminho"}, &out)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out.ReadingPlans) != 1 || out.ReadingPlans[0].Slug != "caminho" {
		t.Errorf("unexpected data: %+v", out)
	}
}

func TestQuery_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"http error", http.StatusInternalServerError, `oops`, func(err error) bool { return err != nil }},
		{"graphql errors", http.StatusOK, `{"data":null,"errors":[{"message":"bad field"}]}`, func(err error) bool {
			var re *ResponseError
			return errors.As(err, &re) && re.Errors[0].Message == "bad field"
		}},
		{"null data", http.StatusOK, `{"data":null}`, func(err error) bool { return errors.Is(err, ErrNoData) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			var out plansData
			err := newClient(t, srv.URL).Query(context.Background(), "q", nil, &out)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestQuery_ServesLastGoodOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"readingPlans":[{"slug":"a"}]}}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	var first plansData
	if err := c.Query(context.Background(), "q", nil, &first); err != nil {
		t.Fatalf("first Query: %v", err)
	}

	fail.Store(true)
	var second plansData
	if err := c.Query(context.Background(), "q", nil, &second); err != nil {
		t.Fatalf("second Query should be served from cache: %v", err)
	}
	if len(second.ReadingPlans) != 1 || second.ReadingPlans[0].Slug != "a" {
		t.Errorf("cached data: got %+v", second)
	}

	var other plansData
	if err := c.Query(context.Background(), "q", map[string]any{"slug": "b"}, &other); err == nil {
		t.Error("different variables must not hit the cache")
	}
}

func TestNew_NotConfigured(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c, err := New(Config{GraphQLURL: "http://cms.local/graphql"}, zap.New(core))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Configured() {
		t.Error("client without token should not be configured")
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
	var out plansData
	if err := c.Query(context.Background(), "q", nil, &out); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Query: got %v, want ErrNotConfigured", err)
	}
}

func TestMediaURL(t *testing.T) {
	c, _ := New(Config{MediaBaseURL: "https://cms.example.com/"}, zap.NewNop())
	tests := []struct{ in, want string }{
		{"/uploads/a.jpg", "https://cms.example.com/uploads/a.jpg"},
		{"https://cdn.example.com/b.jpg", "https://cdn.example.com/b.jpg"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.MediaURL(tt.in); got != tt.want {
			t.Errorf("MediaURL(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
