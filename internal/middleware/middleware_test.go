package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freeeve/hexwar/internal/logger"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		origin   string
		wantVary bool
	}{
		{"*", false},
		{"https://hexwar.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			h := CORS(tt.origin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games", nil))

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.origin {
				t.Errorf("Allow-Origin = %q", got)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Errorf("Vary: Origin present = %v, want %v", got, tt.wantVary)
			}
			if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut) {
				t.Error("PUT must be allowed for scenario edits")
			}
			if got := rec.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
				t.Errorf("Expose-Headers = %q", got)
			}
		})
	}
}

func TestCORSScenarioUpdate(t *testing.T) {
	var methods []string
	h := CORS("https://hexwar.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
	}))

	pre := httptest.NewRequest(http.MethodOptions, "/api/v1/scenarios/s1", nil)
	pre.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, pre)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", rec.Code)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/scenarios/s1", strings.NewReader(`{}`)))
	if len(methods) != 1 || methods[0] != http.MethodPut {
		t.Errorf("expected only the PUT to reach the handler, got %v", methods)
	}
}

// server wraps h the way cmd/server does.
func server(h http.HandlerFunc) http.Handler {
	return Chain(h, Logger, Recover, CORS("*"), JSON)
}

func TestServerChain(t *testing.T) {
	var seenID string
	h := server(func(w http.ResponseWriter, r *http.Request) {
		seenID = logger.RequestIDFromContext(r.Context())
		if r.URL.Path == "/api/v1/games/boom/events" {
			panic("nil state")
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"game not found"}`))
	})

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"handler error", "/api/v1/games/missing/events", http.StatusNotFound, `{"error":"game not found"}`},
		{"panic", "/api/v1/games/boom/events", http.StatusInternalServerError, `{"error":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(`{"eventType":"endPhase"}`)))

			if rec.Code != tt.status || rec.Body.String() != tt.body {
				t.Errorf("got %d %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if id := rec.Header().Get(RequestIDHeader); id == "" || id != seenID {
				t.Errorf("request id header %q does not match context %q", id, seenID)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	})

	rec := httptest.NewRecorder()
	Recover(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/g1", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"error":"internal server error"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestLoggerSetsRequestID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	Logger(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", strings.NewReader(`{"name":"x"}`)))

	if len(seen) != 8 {
		t.Fatalf("expected an 8-char request id in the context, got %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("expected header %q, got %q", seen, got)
	}
}

func TestLoggerKeepsHijacker(t *testing.T) {
	var hijackErr error
	var ok bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var hj http.Hijacker
		hj, ok = w.(http.Hijacker)
		if ok {
			_, _, hijackErr = hj.Hijack()
		}
	})

	Logger(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil))

	if !ok {
		t.Fatal("the WebSocket upgrade needs a Hijacker behind the logger")
	}
	// The recorder cannot be hijacked, so the wrapper must report that.
	if hijackErr == nil || errors.Is(hijackErr, http.ErrHijacked) {
		t.Errorf("expected a not-a-Hijacker error, got %v", hijackErr)
	}
}
