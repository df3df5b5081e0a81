package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inbox-triage/triage/internal/agent"
	"github.com/inbox-triage/triage/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default()
	triageAgent, err := agent.New(agent.Options{})
	require.NoError(t, err)

	s, err := NewServer(cfg.Server.Port, cfg, triageAgent, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleAPISample(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sample", nil)
	rec := httptest.NewRecorder()
	s.handleAPISample(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Emails []agent.Email `json:"emails"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Emails, 5)
}

func TestHandleAPIAgent(t *testing.T) {
	s := newTestServer(t)

	body := `{"emails":[{"id":"e-1","senderName":"ShopSphere","senderEmail":"deals@shopsphere.example.com","subject":"Flash sale ends tonight","body":"Unsubscribe here: https://shopsphere.example.com/unsubscribe?u=1","receivedAt":"2024-03-14T10:00:00Z"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleAPIAgent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp agent.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 1)
	assert.Equal(t, "e-1", resp.Decisions[0].EmailID)
	assert.Equal(t, agent.CategoryMarketing, resp.Decisions[0].Category)
}

func TestHandleAPIAgentEmptyBatch(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"emails":[]}`))
	rec := httptest.NewRecorder()
	s.handleAPIAgent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"decisions":[]`)
}

func TestHandleAPIAgentBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"emails": [`},
		{name: "missing emails field", body: `{}`},
		{name: "emails null", body: `{"emails": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handleAPIAgent(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestHandleAPIAgentRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.rateLimiter = NewRateLimiter(1, time.Minute)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"emails":[]}`))
		rec := httptest.NewRecorder()
		s.handleAPIAgent(rec, req)

		assert.Equalf(t, want, rec.Code, "request %d", i+1)
	}
}

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Inbox Triage")
	assert.Contains(t, rec.Body.String(), "Run Triage")
}

func TestRateLimiter(t *testing.T) {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    2,
		window:   time.Minute,
	}

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request within window should be denied")
	}
	if !rl.Allow("b") {
		t.Error("separate key should have its own budget")
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}
