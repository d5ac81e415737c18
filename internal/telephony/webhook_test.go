package telephony

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type captureSink struct {
	events []CallEvent
}

func (s *captureSink) HandleCall(ev CallEvent) { s.events = append(s.events, ev) }

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_EnqueuesCallEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &captureSink{}
	now := time.Unix(1700000000, 0).UTC()
	h := WebhookHandler{Sink: sink, Now: func() time.Time { return now }}

	r := gin.New()
	r.POST("/webhooks/callerid", h.HandleInboundCall)

	w := postForm(r, "/webhooks/callerid", url.Values{
		"NMBR": {"0600000000"},
		"NAME": {"DEMARCHAGE"},
		"DATE": {"0315"},
		"TIME": {"1430"},
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected one event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Number != "0600000000" || ev.CallerName != "DEMARCHAGE" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if !ev.ReceivedAt.Equal(now) {
		t.Fatalf("expected injected time, got %v", ev.ReceivedAt)
	}
	if ev.Raw == "" {
		t.Fatalf("expected raw payload for audit")
	}
}

func TestWebhook_RejectsMissingNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sink := &captureSink{}
	r := gin.New()
	r.POST("/webhooks/callerid", WebhookHandler{Sink: sink}.HandleInboundCall)

	w := postForm(r, "/webhooks/callerid", url.Values{"NAME": {"X"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(sink.events) != 0 {
		t.Fatalf("expected no events, got %d", len(sink.events))
	}
}

func TestWebhook_MissingSinkIsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/webhooks/callerid", WebhookHandler{}.HandleInboundCall)

	w := postForm(r, "/webhooks/callerid", url.Values{"NMBR": {"5551234"}})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
