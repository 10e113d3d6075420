package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupTest(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	srv, err := NewServer(database, cfg, nil, "test", "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler
}

func do(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHandleSolve(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "POST", "/api/math/solve", `{"formula": "2x + 5 = 13"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["id"] == "" || body["type"] != "equation" {
		t.Errorf("body = %v", body)
	}
	answer, ok := body["answer"].([]any)
	if !ok || len(answer) != 1 || answer[0] != "x = 4" {
		t.Errorf("answer = %v, want [x = 4]", body["answer"])
	}
	if _, ok := body["steps"].([]any); !ok {
		t.Errorf("steps missing: %v", body)
	}
}

func TestHandleSolve_MissingFormula(t *testing.T) {
	h := setupTest(t, nil)

	for _, payload := range []string{`{}`, `{"formula": 42}`, `{"formula": ""}`, `not json`} {
		w := do(t, h, "POST", "/api/math/solve", payload, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", payload, w.Code)
			continue
		}
		body := decodeBody(t, w)
		if body["error"] != "No formula provided. Please provide a mathematical expression to solve." {
			t.Errorf("%s: error = %v", payload, body["error"])
		}
		example, _ := body["example"].(map[string]any)
		if example["formula"] != "2x + 5 = 13" {
			t.Errorf("%s: example = %v", payload, body["example"])
		}
	}
}

func TestHandleSolve_Unsupported(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "POST", "/api/math/solve", `{"formula": "2 + y"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Invalid or unsupported formula." || body["formula"] != "2 + y" {
		t.Errorf("body = %v", body)
	}
	if d, _ := body["details"].(string); d == "" {
		t.Errorf("details missing: %v", body)
	}
}

func TestHandleSolve_RecoveredSentinel(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "POST", "/api/math/solve", `{"formula": "∫ sin(x^2) dx"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["answer"] != "Integration failed" {
		t.Errorf("answer = %v", body["answer"])
	}
}

func TestHandleHelp(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "GET", "/api/math/help", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if ops, _ := body["supportedOperations"].([]any); len(ops) != 5 {
		t.Errorf("supportedOperations = %v", body["supportedOperations"])
	}
	if ex, _ := body["examples"].([]any); len(ex) != 7 {
		t.Errorf("examples = %v", body["examples"])
	}
}

func TestHandleListAndDetail(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "POST", "/api/math/solve", `{"formula": "x^2 - 4 = 0"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("solve status = %d", w.Code)
	}
	id, _ := decodeBody(t, w)["id"].(string)

	w = do(t, h, "GET", "/api/math/solutions?limit=5", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	items, _ := decodeBody(t, w)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["id"] != id {
		t.Errorf("items = %v", items)
	}

	w = do(t, h, "GET", "/api/math/solutions/"+id, "", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("detail status = %d, content type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if decodeBody(t, w)["id"] != id {
		t.Errorf("detail id mismatch")
	}

	w = do(t, h, "GET", "/api/math/solutions/"+id, "", map[string]string{"Accept": "text/html"})
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("html status = %d, content type %q", w.Code, w.Header().Get("Content-Type"))
	}
	html := w.Body.String()
	for _, want := range []string{"<h2>Steps</h2>", "<table>", "<code>x^2 - 4 = 0</code>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestHandleList_BadQuery(t *testing.T) {
	h := setupTest(t, nil)

	for _, target := range []string{"/api/math/solutions?limit=abc", "/api/math/solutions?type=matrix"} {
		w := do(t, h, "GET", target, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
		if decodeBody(t, w)["code"] != "INVALID_REQUEST" {
			t.Errorf("%s: want INVALID_REQUEST", target)
		}
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "GET", "/api/math/solutions/01MISSING", "", nil)
	if w.Code != http.StatusNotFound || decodeBody(t, w)["code"] != "NOT_FOUND" {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, h, "GET", "/api/math/solutions/01MISSING?format=html", "", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "error-message") {
		t.Errorf("html status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestPingBannerMetrics(t *testing.T) {
	h := setupTest(t, nil)

	if w := do(t, h, "GET", "/ping", "", nil); w.Body.String() != "pong" {
		t.Errorf("/ping = %q", w.Body.String())
	}
	if w := do(t, h, "GET", "/", "", nil); !strings.Contains(w.Body.String(), "POST /api/math/solve") {
		t.Errorf("/ = %q", w.Body.String())
	}

	do(t, h, "POST", "/api/math/solve", `{"formula": "1 + 1"}`, nil)
	w := do(t, h, "GET", "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "algenova_solve_total") {
		t.Errorf("/metrics missing algenova_solve_total")
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := setupTest(t, nil)

	w := do(t, h, "GET", "/ping", "", nil)
	if w.Header().Get("X-Frame-Options") != "DENY" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", w.Header())
	}
}

func TestRateLimit(t *testing.T) {
	h := setupTest(t, func(cfg *config.Config) { cfg.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		if w := do(t, h, "GET", "/api/math/help", "", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	w := do(t, h, "GET", "/api/math/help", "", nil)
	if w.Code != http.StatusTooManyRequests || decodeBody(t, w)["code"] != "RATE_LIMITED" {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// Health checks are not limited.
	if w := do(t, h, "GET", "/ping", "", nil); w.Code != http.StatusOK {
		t.Errorf("/ping status = %d", w.Code)
	}
}
