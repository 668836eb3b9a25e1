package httphandler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/niksmo/naran-storefront/internal/core/port"
)

const sessionCookieName = "naran_session"

type ctxKeySession struct{}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeySession{}).(string)
	return id
}

// Session opens the visitor's storefront session and refreshes the cookie
// when a new session id was issued.
func Session(sf port.Storefront, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			const op = "Session"

			var known string
			if c, err := r.Cookie(sessionCookieName); err == nil {
				known = c.Value
			}

			id, err := sf.OpenSession(r.Context(), known)
			if err != nil {
				slog.Error("failed to open session", "op", op, "err", err)
				http.Error(w, "storefront is unavailable", http.StatusServiceUnavailable)
				return
			}

			if id != known {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxKeySession{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hf)
	}
}

// AllowForm rejects request bodies that are not HTML form posts.
func AllowForm(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/x-www-form-urlencoded", "multipart/form-data":
			next.ServeHTTP(w, r)
		default:
			http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
		}
	}
	return http.HandlerFunc(hf)
}

// RequestLogger writes one structured record per request.
func RequestLogger(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info(
			"request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remoteIP", r.RemoteAddr,
			"requestID", middleware.GetReqID(r.Context()),
		)
	}
	return http.HandlerFunc(hf)
}
