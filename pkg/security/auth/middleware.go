package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware authenticates admin requests with API keys.
type Middleware struct {
	ring    *KeyRing
	sources []Source
	logger  *slog.Logger
}

// NewMiddleware creates the middleware. A key ring without keys lets every
// request through.
func NewMiddleware(ring *KeyRing, sources []Source, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{ring: ring, sources: sources, logger: logger}
}

// Handle wraps next with key authentication. Its signature matches chi's
// middleware type.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.ring == nil || m.ring.Len() == 0 {
			next.ServeHTTP(w, r)
			return
		}

		key, err := m.extract(r)
		if err == nil {
			var info KeyInfo
			info, err = m.ring.Validate(key)
			if err == nil {
				m.logger.Debug("admin key authenticated", "key_name", info.Name, "path", r.URL.Path)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), keyInfoKey, info)))
				return
			}
		}

		m.logger.Warn("admin authentication failed",
			"error", err,
			"remote_addr", r.RemoteAddr,
			"path", r.URL.Path,
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("WWW-Authenticate", `Bearer realm="placement"`)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid API key"})
	})
}

// extract returns the key from the first source that carries one.
func (m *Middleware) extract(r *http.Request) (string, error) {
	for _, source := range m.sources {
		switch source.Type {
		case SourceHeader:
			value := r.Header.Get(source.Name)
			if value == "" {
				continue
			}
			if source.Scheme == "" {
				return value, nil
			}
			if prefix := source.Scheme + " "; len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
				return value[len(prefix):], nil
			}
		case SourceQuery:
			if value := r.URL.Query().Get(source.Name); value != "" {
				return value, nil
			}
		}
	}
	return "", ErrMissingKey
}

type contextKey string

// #nosec G101 - context key, not a credential
const keyInfoKey contextKey = "admin_key_info"

// KeyInfoFromContext returns the info of the key that authenticated the
// request.
func KeyInfoFromContext(ctx context.Context) (KeyInfo, bool) {
	info, ok := ctx.Value(keyInfoKey).(KeyInfo)
	return info, ok
}
