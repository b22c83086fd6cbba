package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/radwayousryyy/InkCrypt/internal/api"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
)

// MaxUploadSizeHeader tells clients how large a document upload may be
const MaxUploadSizeHeader = "X-Max-Request-Size"

// UploadLimit caps the size of document uploads on /sign, /verify and /revoke.
//
// A declared Content-Length over the limit is refused before the body is read.
// Otherwise the body is wrapped in http.MaxBytesReader, and the handler reports the
// overflow when multipart parsing fails. Both paths answer 413 with error code 7010.
func UploadLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := strconv.FormatInt(maxBytes, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(MaxUploadSizeHeader, limit)

			if r.ContentLength > maxBytes {
				logger.ContextWithLogAttrs(r.Context(),
					slog.Int64("content_length", r.ContentLength),
					slog.Int64("max_upload_size", maxBytes),
				)
				api.RespondWithErrorResponse(w, r, api.NewRequestTooLargeError(
					fmt.Sprintf("Uploaded document (%d bytes) exceeds the maximum upload size (%d bytes)", r.ContentLength, maxBytes),
				))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows browser clients on the given origins to call the API.
// The identifier header set by POST /sign is exposed so that clients can read it.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{api.IdentifierHeader, "Content-Disposition", MaxUploadSizeHeader},
		MaxAge:         300,
	})
}

// SecurityHeaders sets response headers for an API that only returns JSON and PDF downloads.
// Responses are not cacheable unless a handler overrides Cache-Control (the JWKS does).
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cache-Control", "no-store")

			if environment == "prod" || environment == "staging" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clients idle for longer than this lose their bucket
const clientIdleTimeout = 3 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters holds one token bucket per client address
type clientLimiters struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	buckets   map[string]*clientBucket
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(rps int32, burst int32) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   int(burst),
		buckets: make(map[string]*clientBucket),
		now:     time.Now,
	}
}

// reserve takes a token for client. When none is available it returns false and
// how long the client should wait before retrying.
func (c *clientLimiters) reserve(client string) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) > clientIdleTimeout {
		for key, b := range c.buckets {
			if now.Sub(b.lastSeen) > clientIdleTimeout {
				delete(c.buckets, key)
			}
		}
		c.lastSweep = now
	}

	b, ok := c.buckets[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.buckets[client] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := b.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

func (c *clientLimiters) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// clientAddress is the host part of RemoteAddr (set from X-Forwarded-For / X-Real-IP by chi's RealIP)
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits each client address to requestsPerSecond with the given burst.
// If requestsPerSecond <= 0, rate limiting is disabled.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return rateLimit(newClientLimiters(requestsPerSecond, burst))
}

func rateLimit(limiters *clientLimiters) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientAddress(r)

			allowed, wait := limiters.reserve(client)
			if !allowed {
				retryAfter := int(math.Ceil(wait.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				logger.ContextRequestLogger(r.Context()).Warn("Rate limit exceeded",
					slog.String("component", "RateLimit"),
					slog.String("client", client),
				)
				logger.ContextWithLogAttrs(r.Context(), slog.String("client", client))

				api.RespondWithErrorResponse(w, r, api.NewRateLimitError("Too many requests. Please try again later."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
