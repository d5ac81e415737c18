package telephony

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"callscreen/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallerIDForm is the caller-ID notification a modem gateway or ATA posts
// when a call starts ringing. application/x-www-form-urlencoded, mirroring
// the NMBR/NAME/DATE/TIME fields classic hardware reports.
//
// Keep it adapter-only. Screening decisions are not made here.
type CallerIDForm struct {
	Number string
	Name   string
	Date   string
	Time   string
}

func ParseCallerID(r *http.Request) (CallerIDForm, error) {
	if err := r.ParseForm(); err != nil {
		return CallerIDForm{}, err
	}
	return CallerIDForm{
		Number: strings.TrimSpace(r.PostFormValue("NMBR")),
		Name:   strings.TrimSpace(r.PostFormValue("NAME")),
		Date:   strings.TrimSpace(r.PostFormValue("DATE")),
		Time:   strings.TrimSpace(r.PostFormValue("TIME")),
	}, nil
}

func (f CallerIDForm) ToCallEvent(receivedAt time.Time) CallEvent {
	raw, _ := json.Marshal(f)
	return CallEvent{
		Number:     f.Number,
		CallerName: f.Name,
		ReceivedAt: receivedAt,
		Raw:        string(raw),
	}
}

// CallSink accepts inbound call events for processing. The attendant queue
// implements this.
type CallSink interface {
	HandleCall(ev CallEvent)
}

// WebhookHandler converts gateway caller-ID posts into call events and
// enqueues them.
type WebhookHandler struct {
	Sink CallSink
	Now  func() time.Time
}

func (h WebhookHandler) HandleInboundCall(c *gin.Context) {
	log := logger.FromGin(c)

	if h.Sink == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call sink not configured"})
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	form, err := ParseCallerID(c.Request)
	if err != nil {
		log.Warn("caller id webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	if form.Number == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "NMBR required"})
		return
	}

	h.Sink.HandleCall(form.ToCallEvent(now()))
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
