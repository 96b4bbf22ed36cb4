package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/guestgate/guestgate/internal/core/domain"
	"github.com/guestgate/guestgate/internal/core/ports"
)

type contextKey string

const ctxPass contextKey = "visitor_pass"

// PassFromContext returns the pass resolved by VisitorMiddleware, if any.
func PassFromContext(ctx context.Context) (*domain.Pass, bool) {
	pass, ok := ctx.Value(ctxPass).(*domain.Pass)
	return pass, ok
}

// MiddlewareConfig controls token extraction and session binding.
type MiddlewareConfig struct {
	// QueryKey is the query-string parameter carrying the pass token.
	QueryKey string
	// SessionCookie names the cookie identifying the visitor session.
	SessionCookie string
	// SessionTTL bounds how long a session binding outlives its consume.
	SessionTTL time.Duration
}

func (c MiddlewareConfig) withDefaults() MiddlewareConfig {
	if c.QueryKey == "" {
		c.QueryKey = "vuid"
	}
	if c.SessionCookie == "" {
		c.SessionCookie = "guestgate_session"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 5 * time.Minute
	}
	return c
}

// statusRecorder captures the status code written downstream so the access
// log carries the real response outcome.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// remoteAddr prefers the X-Forwarded-For header over the direct peer
// address, since load balancers rewrite the latter in transit.
func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

// VisitorMiddleware resolves the visitor pass for a request. A token seen
// for the first time is consumed (burning one use); a session that already
// resolved a token skips the consume on subsequent requests. Every attempt,
// success or failure, is written to the access log.
func VisitorMiddleware(svc ports.PassService, cache ports.SessionCache, cfg MiddlewareConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionKey := sessionKey(w, r, cfg)

			token := r.URL.Query().Get(cfg.QueryKey)
			fromSession := false
			if token == "" && cache != nil {
				if cached, ok := cache.Get(r.Context(), sessionKey); ok {
					token = cached
					fromSession = true
				}
			}

			logAttempt := func(pass *domain.Pass, status int) {
				entry := &domain.AccessLog{
					SessionKey:  sessionKey,
					HTTPMethod:  r.Method,
					RequestURI:  r.URL.Path,
					QueryString: r.URL.RawQuery,
					UserAgent:   r.UserAgent(),
					Referer:     r.Referer(),
					RemoteAddr:  remoteAddr(r),
					StatusCode:  status,
				}
				if pass != nil {
					entry.PassID = pass.ID
				}
				// Logging must never block the visit itself.
				if err := svc.RecordAccess(r.Context(), entry); err != nil {
					log.Printf("failed to record access: %v", err)
				}
			}

			if token == "" {
				http.Error(w, domain.ErrPassNotFound.Error(), http.StatusNotFound)
				logAttempt(nil, http.StatusNotFound)
				return
			}

			var pass *domain.Pass
			var err error
			if fromSession {
				// The session already consumed this token; re-read without
				// burning another use.
				pass, err = svc.GetByToken(r.Context(), token)
			} else {
				pass, err = svc.Consume(r.Context(), token)
			}
			if err != nil {
				rec := &statusRecorder{ResponseWriter: w}
				writePassError(rec, err)
				logAttempt(nil, rec.status)
				return
			}

			if cache != nil && !fromSession {
				cache.Set(r.Context(), sessionKey, pass.SessionData(), cfg.SessionTTL)
			}

			rec := &statusRecorder{ResponseWriter: w}
			ctx := context.WithValue(r.Context(), ctxPass, pass)
			next.ServeHTTP(rec, r.WithContext(ctx))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logAttempt(pass, rec.status)
		})
	}
}

func sessionKey(w http.ResponseWriter, r *http.Request, cfg MiddlewareConfig) string {
	if cookie, err := r.Cookie(cfg.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	key := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.SessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(cfg.SessionTTL.Seconds()),
	})
	return key
}
