package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/features/health"
	"github.com/koinonia-app/koinonia/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type cmsFlag bool

func (c cmsFlag) Configured() bool { return bool(c) }

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	CMS      string `json:"cms"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), cmsFlag(true), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var resp healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "ok" || resp.Database != "connected" || resp.CMS != "configured" {
		t.Errorf("unexpected body: %+v", resp)
	}
}

func TestServe_DatabaseDisconnected(t *testing.T) {
	// A client that was never connected fails Ping immediately.
	client, err := mongo.NewClient(options.Client().ApplyURI("mongodb://127.0.0.1:1").SetServerSelectionTimeout(200 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	handler := health.NewHandler(client, nil, zap.NewNop())
	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var resp healthBody
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "error" || resp.CMS != "fallback" {
		t.Errorf("unexpected body: %+v", resp)
	}
}
