package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
)

type body struct {
	Name string `json:"name" validate:"required,min=2" label:"Name"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Ana"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"too short", `{"name":"A"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var b body
			err := DecodeAndValidate(httptest.NewRecorder(), r, &b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.Is(err, apperr.Validation) {
				t.Errorf("expected validation kind, got %v", apperr.KindOf(err))
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusTeapot, "nope")
	if rec.Code != http.StatusTeapot {
		t.Errorf("status: got %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, `"error":"nope"`) {
		t.Errorf("body: got %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q", ct)
	}
}
