package rest

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/library/internal/server/auth"
	"github.com/dmitrijs2005/library/internal/server/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	msgTokenNotSupplied = "Auth token is not supplied"
	msgTokenNotValid    = "Token is not valid"
	msgTooManyRequests  = "Too many requests"
)

// RateLimiter admits or rejects one request from the client identified by key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Result, error)
}

// requestID reuses an incoming X-Request-Id or generates one, and stores it
// where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerAuth verifies the token in the Authorization header and puts its
// claims into the request context.
func (h *Handler) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token == "" {
			writeMessage(w, r, http.StatusUnauthorized, msgTokenNotSupplied)
			return
		}

		claims, err := auth.ParseToken(token, h.opts.SecretKey)
		if err != nil {
			h.logger.Debug(r.Context(), "token rejected",
				"request_id", middleware.GetReqID(r.Context()), "error", err)
			writeMessage(w, r, http.StatusForbidden, msgTokenNotValid)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimit rejects clients over the limit with 429. Limiter failures let the
// request through.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := h.opts.Limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			h.logger.Warn(r.Context(), "rate limiter unavailable",
				"request_id", middleware.GetReqID(r.Context()), "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeMessage(w, r, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
