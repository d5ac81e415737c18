package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GatewayModem drives an analog telephone adapter or SIP gateway over its
// HTTP control API. One instance controls one line.
//
// Inbound signalling (caller ID, ring pulses) arrives via webhooks the
// gateway posts to this service; outbound control (pick up, play, record)
// goes to the gateway's control endpoints.
//
// IMPORTANT:
// - Keep this adapter free of business logic.
// - It only translates line events into internal types and relays line
//   commands; decisions belong to the attendant and screening layers.
type GatewayModem struct {
	baseURL string
	client  *http.Client
	rings   chan struct{}
}

func NewGatewayModem(baseURL string, client *http.Client) *GatewayModem {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GatewayModem{
		baseURL: baseURL,
		client:  client,
		// Small buffer: a ring pulse arriving while the attendant is busy
		// elsewhere should not block the webhook.
		rings: make(chan struct{}, 8),
	}
}

func (m *GatewayModem) Rings() <-chan struct{} { return m.rings }

// RingDetected records one ring pulse. Non-blocking: excess pulses beyond
// the buffer are dropped, which only shortens the observed ring count.
func (m *GatewayModem) RingDetected() {
	select {
	case m.rings <- struct{}{}:
	default:
	}
}

// HandleRing is the webhook the gateway posts on every ring pulse.
func (m *GatewayModem) HandleRing(c *gin.Context) {
	m.RingDetected()
	c.Status(http.StatusNoContent)
}

func (m *GatewayModem) PickUp(ctx context.Context) error {
	return m.post(ctx, "/line/pickup", nil, nil)
}

func (m *GatewayModem) HangUp(ctx context.Context) error {
	return m.post(ctx, "/line/hangup", nil, nil)
}

func (m *GatewayModem) PlayAudio(ctx context.Context, path string) error {
	return m.post(ctx, "/line/play", map[string]string{"path": path}, nil)
}

func (m *GatewayModem) RecordAudio(ctx context.Context, path string) (string, error) {
	var out struct {
		AudioRef string `json:"audio_ref"`
	}
	if err := m.post(ctx, "/line/record", map[string]string{"path": path}, &out); err != nil {
		return "", err
	}
	if out.AudioRef == "" {
		out.AudioRef = path
	}
	return out.AudioRef, nil
}

func (m *GatewayModem) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("telephony: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telephony: gateway health status %d", resp.StatusCode)
	}
	return nil
}

func (m *GatewayModem) post(ctx context.Context, path string, body any, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("telephony: gateway %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telephony: gateway %s status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("telephony: gateway %s decode: %w", path, err)
		}
	}
	return nil
}
