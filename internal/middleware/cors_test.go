package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveCORS(origins []string, method, origin string) (*httptest.ResponseRecorder, bool) {
	called := false
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(method, "/api/get-result", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, called
}

func TestCORSWildcard(t *testing.T) {
	w, called := serveCORS([]string{"*"}, http.MethodGet, "https://quiz.example")
	if !called {
		t.Fatal("expected next handler to run")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://quiz.example" {
		t.Errorf("expected echoed origin, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("wildcard must not allow credentials, got %q", got)
	}
}

func TestCORSExplicitOrigin(t *testing.T) {
	origins := []string{"https://quiz.example"}

	w, _ := serveCORS(origins, http.MethodGet, "https://quiz.example")
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials for explicit origin, got %q", got)
	}

	w, called := serveCORS(origins, http.MethodGet, "https://evil.example")
	if !called {
		t.Fatal("disallowed origin still reaches the handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	w, called := serveCORS([]string{"*"}, http.MethodOptions, "https://quiz.example")
	if called {
		t.Error("preflight must not reach the handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("unexpected methods %q", got)
	}
}
