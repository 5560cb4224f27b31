package navigator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"land_proforma/pkg/core/agent"
)

func postIntent(t *testing.T, h *Handler, req NavigationRequest) NavigationResponse {
	t.Helper()
	body, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	h.HandleNavigationIntent(rec, httptest.NewRequest("POST", "/api/assistant/navigate", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Navigate returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp NavigationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Navigate decode: %v", err)
	}
	return resp
}

func TestUnparseableModelReplyBecomesChat(t *testing.T) {
	// An empty config resolves to the unimplemented OpenAI provider, whose
	// canned reply is plain text. The handler must surface it as chat
	// rather than fail the request.
	h := NewHandler(agent.NewManager(agent.Config{}), nil, nil)

	resp := postIntent(t, h, NavigationRequest{Message: "take me to the pricing tab"})
	if resp.Intent != "chat" {
		t.Errorf("Intent = %q, want chat", resp.Intent)
	}
	if resp.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", resp.Confidence)
	}
	if !strings.Contains(resp.Explanation, "Not implemented") {
		t.Errorf("Explanation should carry the raw reply, got %q", resp.Explanation)
	}
}

func TestKeywordFallbackWhenProviderErrors(t *testing.T) {
	// Pointing at a provider with no credentials makes the model call fail
	// fast, which routes through the keyword matcher.
	t.Setenv("DEEPSEEK_API_KEY", "")
	h := NewHandler(agent.NewManager(agent.Config{ActiveProvider: "deepseek"}), nil, nil)

	resp := postIntent(t, h, NavigationRequest{Message: "where do I edit pricing"})
	if resp.Intent != "navigate" || resp.TargetTab != "land-pricing" {
		t.Errorf("Expected pricing navigation, got %+v", resp)
	}
	if resp.Confidence != 0.8 || resp.TabLabel == "" {
		t.Errorf("Fallback should carry label and 0.8 confidence: %+v", resp)
	}

	resp = postIntent(t, h, NavigationRequest{Message: "hello, how are you today"})
	if resp.Intent != "chat" || resp.Confidence != 1.0 {
		t.Errorf("Keyword-free message should be chat: %+v", resp)
	}
}

func TestPreflightAndMethodGuard(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{}), nil, nil)

	rec := httptest.NewRecorder()
	h.HandleNavigationIntent(rec, httptest.NewRequest("OPTIONS", "/api/assistant/navigate", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Preflight failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleNavigationIntent(rec, httptest.NewRequest("GET", "/api/assistant/navigate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET returned %d, want 405", rec.Code)
	}
}

func TestRejectsMalformedBody(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{}), nil, nil)

	rec := httptest.NewRecorder()
	h.HandleNavigationIntent(rec, httptest.NewRequest("POST", "/api/assistant/navigate", strings.NewReader("{broken")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Malformed body returned %d, want 400", rec.Code)
	}
}
