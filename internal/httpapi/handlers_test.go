package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"callscreen/internal/audit"
	"callscreen/internal/registry"
	"callscreen/internal/reporting"
	"callscreen/internal/screening"
	"callscreen/internal/telephony"
	"callscreen/internal/voicemail"

	"github.com/gin-gonic/gin"
)

type nopAudio struct{}

func (nopAudio) Remove(ctx context.Context, ref string) error { return nil }

type env struct {
	h        Handlers
	registry *registry.Service
	calls    *screening.MemoryCallLog
	messages *voicemail.Store
	audit    *audit.MemoryRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	calls := screening.NewMemoryCallLog()
	reg := registry.NewService(registry.NewMemoryRepo())
	cls := screening.NewClassifier(reg, calls)
	msgs := voicemail.NewStore(voicemail.NewMemoryRepo(), calls, nopAudio{})
	auditRepo := audit.NewMemoryRepo()

	reports := reporting.NewService(&callLogReporter{calls: calls, msgs: msgs})

	return &env{
		h: Handlers{
			Screening: cls,
			Messages:  msgs,
			Registry:  reg,
			Reports:   reports,
			Audit:     audit.NewService(auditRepo),
		},
		registry: reg,
		calls:    calls,
		messages: msgs,
		audit:    auditRepo,
	}
}

// callLogReporter adapts the in-memory stores to the reporting repository.
type callLogReporter struct {
	calls *screening.MemoryCallLog
	msgs  *voicemail.Store
}

func (r *callLogReporter) ListCalls(ctx context.Context, from, to time.Time) ([]screening.CallRecord, error) {
	all, err := r.calls.Recent(ctx, 1000)
	if err != nil {
		return nil, err
	}
	out := make([]screening.CallRecord, 0, len(all))
	for _, c := range all {
		if c.Timestamp.Before(from) || !c.Timestamp.Before(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *callLogReporter) ListMessages(ctx context.Context, from, to time.Time) ([]voicemail.Message, error) {
	all, err := r.msgs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]voicemail.Message, 0, len(all))
	for _, m := range all {
		if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (e *env) router() *gin.Engine {
	r := gin.New()
	r.GET("/v1/calls", e.h.ListCalls)
	r.GET("/v1/calls/:call_no", e.h.GetCall)
	r.GET("/v1/messages", e.h.ListMessages)
	r.GET("/v1/messages/unplayed-count", e.h.GetUnplayedCount)
	r.POST("/v1/messages/:msg_no/played", e.h.MarkMessagePlayed)
	r.DELETE("/v1/messages/:msg_no", e.h.DeleteMessage)
	r.GET("/v1/registry/:number", e.h.GetRegistryEntry)
	r.PUT("/v1/registry/:number/whitelist", e.h.SetWhitelisted)
	r.PUT("/v1/registry/:number/blacklist", e.h.SetBlacklisted)
	r.DELETE("/v1/registry/:number", e.h.ClearRegistryEntry)
	r.GET("/v1/reports/calls", e.h.CallsSummary)
	r.GET("/v1/reports/messages", e.h.MessagesSummary)
	return r
}

func doReq(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func classify(t *testing.T, e *env, number string) screening.CallRecord {
	t.Helper()
	rec, err := e.h.Screening.Classify(context.Background(), telephony.CallEvent{Number: number, ReceivedAt: time.Now()})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	return rec
}

func TestRegistryRoundTrip(t *testing.T) {
	e := newEnv(t)
	r := e.router()

	w := doReq(t, r, http.MethodPut, "/v1/registry/555-123-4567/blacklist", `{"display_name":"Telemarketer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("blacklist: status %d body %s", w.Code, w.Body.String())
	}
	var entry registry.Entry
	if err := json.Unmarshal(w.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !entry.Blacklisted || entry.Whitelisted || entry.PhoneNumber != "5551234567" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	// flipping to whitelist clears the blacklist flag
	w = doReq(t, r, http.MethodPut, "/v1/registry/5551234567/whitelist", "")
	if w.Code != http.StatusOK {
		t.Fatalf("whitelist: status %d body %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &entry)
	if !entry.Whitelisted || entry.Blacklisted {
		t.Fatalf("flags not exclusive: %+v", entry)
	}

	w = doReq(t, r, http.MethodDelete, "/v1/registry/5551234567", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear: status %d", w.Code)
	}
	w = doReq(t, r, http.MethodDelete, "/v1/registry/5551234567", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second clear: status %d, want 404", w.Code)
	}

	if got := len(e.audit.Events()); got != 3 {
		t.Fatalf("expected 3 audit events, got %d", got)
	}
}

func TestGetCall_JoinsRegistryAndMessage(t *testing.T) {
	e := newEnv(t)
	r := e.router()

	if _, err := e.registry.SetBlacklisted(context.Background(), "5552223333", "Spam"); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	rec := classify(t, e, "5552223333")
	if rec.Action != screening.ActionBlocked {
		t.Fatalf("expected blocked, got %s", rec.Action)
	}
	if _, err := e.messages.Create(context.Background(), rec.CallNo, "a.wav"); err != nil {
		t.Fatalf("create message: %v", err)
	}

	w := doReq(t, r, http.MethodGet, "/v1/calls/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var out callDetail
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Call.Reason != screening.ReasonBlacklisted {
		t.Fatalf("unexpected reason %q", out.Call.Reason)
	}
	if out.Registry == nil || !out.Registry.Blacklisted {
		t.Fatalf("expected registry entry in detail, got %+v", out.Registry)
	}
	if out.Message == nil || out.Message.CallNo != rec.CallNo {
		t.Fatalf("expected message in detail, got %+v", out.Message)
	}
}

func TestGetCall_UnknownIs404(t *testing.T) {
	e := newEnv(t)
	w := doReq(t, e.router(), http.MethodGet, "/v1/calls/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
}

func TestMessageLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	r := e.router()

	if _, err := e.registry.SetBlacklisted(context.Background(), "5550001111", ""); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	rec := classify(t, e, "5550001111")
	msg, err := e.messages.Create(context.Background(), rec.CallNo, "m.wav")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := doReq(t, r, http.MethodGet, "/v1/messages/unplayed-count", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"unplayed_count":1`) {
		t.Fatalf("count: status %d body %s", w.Code, w.Body.String())
	}

	w = doReq(t, r, http.MethodPost, "/v1/messages/1/played", "")
	if w.Code != http.StatusOK {
		t.Fatalf("played: status %d body %s", w.Code, w.Body.String())
	}
	var played struct {
		MsgNo         int64 `json:"msg_no"`
		UnplayedCount int64 `json:"unplayed_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &played); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if played.MsgNo != msg.MsgNo || played.UnplayedCount != 0 {
		t.Fatalf("unexpected response %+v", played)
	}

	// marking again is idempotent
	w = doReq(t, r, http.MethodPost, "/v1/messages/1/played", "")
	if w.Code != http.StatusOK {
		t.Fatalf("replay: status %d", w.Code)
	}

	w = doReq(t, r, http.MethodDelete, "/v1/messages/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status %d body %s", w.Code, w.Body.String())
	}
	w = doReq(t, r, http.MethodDelete, "/v1/messages/1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", w.Code)
	}
	if got := len(e.audit.Events()); got == 0 {
		t.Fatalf("expected audit event for message delete")
	}
}

func TestCallsSummaryOverHTTP(t *testing.T) {
	e := newEnv(t)
	r := e.router()

	if _, err := e.registry.SetBlacklisted(context.Background(), "5557778888", ""); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	classify(t, e, "5557778888")
	classify(t, e, "5551112222")

	from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	to := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	w := doReq(t, r, http.MethodGet, "/v1/reports/calls?from="+from+"&to="+to, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var sum reporting.CallsSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sum.TotalCalls != 2 || sum.BlockedCalls != 1 || sum.PermittedCalls != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	w = doReq(t, r, http.MethodGet, "/v1/reports/calls?from=bad&to=worse", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad range: status %d, want 400", w.Code)
	}
}

func TestListCalls_RejectsBadLimit(t *testing.T) {
	e := newEnv(t)
	w := doReq(t, e.router(), http.MethodGet, "/v1/calls?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}
