// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pdiddy/bookshelf-engine/pkg/types"
)

// identityKey carries the request Identity in the context.
type identityKey struct{}

// identify reads the trusted front-end headers into an Identity. Requests
// without an X-User-ID header are Anonymous.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id types.Identity = types.Anonymous{}
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			id = types.Authenticated{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
			}
		}
		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom returns the Identity the middleware stored on ctx. Contexts
// that never passed the middleware read as Anonymous.
func IdentityFrom(ctx context.Context) types.Identity {
	if id, ok := ctx.Value(identityKey{}).(types.Identity); ok {
		return id
	}
	return types.Anonymous{}
}

// statusWriter captures the response status for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
