package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func uploadRouter(maxBytes int64) http.Handler {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(UploadLimit(maxBytes))
		r.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Post("/verify", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return router
}

func TestUploadLimit(t *testing.T) {
	const maxUpload = int64(64)
	router := uploadRouter(maxUpload)

	tests := []struct {
		name     string
		path     string
		bodySize int64
		wantCode int
	}{
		{"sign at limit", "/sign", maxUpload, http.StatusOK},
		{"sign over limit", "/sign", maxUpload + 1, http.StatusRequestEntityTooLarge},
		{"verify empty", "/verify", 0, http.StatusOK},
		{"verify over limit", "/verify", 2 * maxUpload, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(bytes.Repeat([]byte("%"), int(tt.bodySize))))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantCode)
			}
			if got := rr.Header().Get(MaxUploadSizeHeader); got != strconv.FormatInt(maxUpload, 10) {
				t.Errorf("%s = %q, want %d", MaxUploadSizeHeader, got, maxUpload)
			}
		})
	}
}

func TestUploadLimitWithoutContentLength(t *testing.T) {
	router := chi.NewRouter()
	router.Use(UploadLimit(16))

	var readErr error
	router.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
		_, readErr = new(bytes.Buffer).ReadFrom(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/sign", strings.NewReader(strings.Repeat("x", 32)))
	req.ContentLength = -1
	router.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Fatal("expected reading an oversized chunked upload to fail")
	}
}

func TestRequestTooLargeResponseBody(t *testing.T) {
	router := uploadRouter(16)

	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(strings.Repeat("x", 32)))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
	}
	if !strings.Contains(rr.Body.String(), `"errorCode":7010`) {
		t.Errorf("body = %s, want error code 7010", rr.Body.String())
	}
}

func signFrom(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sign", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name        string
		rps         int32
		burst       int32
		requests    int
		wantLimited int
	}{
		{"within burst", 10, 5, 5, 0},
		{"burst exhausted", 10, 5, 7, 2},
		{"disabled with 0", 0, 1, 5, 0},
		{"disabled with negative", -1, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Use(RateLimit(tt.rps, tt.burst))
			router.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			limited := 0
			for range tt.requests {
				rr := signFrom(router, "192.0.2.10:40000")
				switch rr.Code {
				case http.StatusOK:
				case http.StatusTooManyRequests:
					limited++
					if rr.Header().Get("Retry-After") == "" {
						t.Error("Retry-After not set on a rate limited response")
					}
					if !strings.Contains(rr.Body.String(), `"errorCode":7009`) {
						t.Errorf("body = %s, want error code 7009", rr.Body.String())
					}
				default:
					t.Fatalf("unexpected status %d", rr.Code)
				}
			}
			if limited != tt.wantLimited {
				t.Errorf("got %d limited requests, want %d", limited, tt.wantLimited)
			}
		})
	}
}

func TestRateLimitIsPerClient(t *testing.T) {
	router := chi.NewRouter()
	router.Use(RateLimit(1, 1))
	router.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if rr := signFrom(router, "192.0.2.10:40000"); rr.Code != http.StatusOK {
		t.Fatalf("first client: got status %d, want %d", rr.Code, http.StatusOK)
	}
	// a new source port is the same client
	if rr := signFrom(router, "192.0.2.10:40001"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: got status %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if rr := signFrom(router, "198.51.100.7:40000"); rr.Code != http.StatusOK {
		t.Errorf("second client: got status %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimitRetryAfter(t *testing.T) {
	tests := []struct {
		name string
		rps  int32
		want string
	}{
		{"one per second", 1, "1"},
		{"fractional wait rounds up", 2, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiters := newClientLimiters(tt.rps, 1)
			now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			limiters.now = func() time.Time { return now }

			router := chi.NewRouter()
			router.Use(rateLimit(limiters))
			router.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			signFrom(router, "192.0.2.10:40000")
			rr := signFrom(router, "192.0.2.10:40000")
			if rr.Code != http.StatusTooManyRequests {
				t.Fatalf("got status %d, want %d", rr.Code, http.StatusTooManyRequests)
			}
			if got := rr.Header().Get("Retry-After"); got != tt.want {
				t.Errorf("Retry-After = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	limiters := newClientLimiters(1, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiters.now = func() time.Time { return now }

	limiters.reserve("192.0.2.10")
	limiters.reserve("198.51.100.7")
	if got := limiters.len(); got != 2 {
		t.Fatalf("got %d buckets, want 2", got)
	}

	now = now.Add(clientIdleTimeout + time.Second)
	limiters.reserve("203.0.113.5")

	if got := limiters.len(); got != 1 {
		t.Errorf("got %d buckets after idle timeout, want 1", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		environment string
		wantHSTS    bool
	}{
		{"dev", false},
		{"test", false},
		{"staging", true},
		{"prod", true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			router := chi.NewRouter()
			router.Use(SecurityHeaders(tt.environment))
			router.Post("/verify", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			router.Get("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Cache-Control", "public, max-age=3600")
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/verify", nil))

			want := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
				"Referrer-Policy":         "no-referrer",
				"Cache-Control":           "no-store",
			}
			for header, value := range want {
				if got := rr.Header().Get(header); got != value {
					t.Errorf("%s = %q, want %q", header, got, value)
				}
			}
			if hsts := rr.Header().Get("Strict-Transport-Security"); (hsts != "") != tt.wantHSTS {
				t.Errorf("Strict-Transport-Security = %q, want set: %v", hsts, tt.wantHSTS)
			}

			rr = httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
			if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
				t.Errorf("JWKS Cache-Control = %q, want the handler's value", got)
			}
		})
	}
}

func TestCORSExposesIdentifierHeader(t *testing.T) {
	router := chi.NewRouter()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.Post("/sign", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-InkCrypt-UUID", "0b8f6c1e-5d0a-4c4e-9a57-3e0d6f3b8a21")
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "https://app.example.com", "https://app.example.com"},
		{"other origin", "https://evil.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/sign", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && !strings.Contains(strings.ToLower(rr.Header().Get("Access-Control-Expose-Headers")), "x-inkcrypt-uuid") {
				t.Errorf("Access-Control-Expose-Headers = %q, want it to include the identifier header",
					rr.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}
