package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"mercator-hq/placement/pkg/config"
)

func newTestMiddleware(keys ...config.APIKeyConfig) *Middleware {
	sources := []Source{
		{Type: SourceHeader, Name: "Authorization", Scheme: "Bearer"},
		{Type: SourceHeader, Name: "X-API-Key"},
		{Type: SourceQuery, Name: "api_key"},
	}
	return NewMiddleware(NewKeyRing(keys), sources, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMiddleware_Handle(t *testing.T) {
	const key = "admin-key-0123456789"
	m := newTestMiddleware(config.APIKeyConfig{Key: key, Name: "deploy"})

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{
			name:     "bearer token",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+key) },
			wantCode: http.StatusOK,
		},
		{
			name:     "lowercase scheme",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "bearer "+key) },
			wantCode: http.StatusOK,
		},
		{
			name:     "x-api-key header",
			setup:    func(r *http.Request) { r.Header.Set("X-API-Key", key) },
			wantCode: http.StatusOK,
		},
		{
			name: "query parameter",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("api_key", key)
				r.URL.RawQuery = q.Encode()
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "missing key",
			setup:    func(*http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong scheme",
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Basic "+key) },
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong key",
			setup:    func(r *http.Request) { r.Header.Set("X-API-Key", "another-key-0123456") },
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName string
			h := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				info, ok := KeyInfoFromContext(r.Context())
				if !ok {
					t.Error("KeyInfoFromContext() found nothing")
				}
				gotName = info.Name
			}))

			req := httptest.NewRequest(http.MethodPut, "/v1/layouts/l1", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && gotName != "deploy" {
				t.Errorf("key name = %q, want deploy", gotName)
			}
			if tt.wantCode == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestMiddleware_OpenWithoutKeys(t *testing.T) {
	m := newTestMiddleware()

	called := false
	h := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := KeyInfoFromContext(r.Context()); ok {
			t.Error("unexpected key info on an open API")
		}
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/layouts/l1", nil))

	if !called || rr.Code != http.StatusOK {
		t.Errorf("called = %v, code = %d", called, rr.Code)
	}
}
