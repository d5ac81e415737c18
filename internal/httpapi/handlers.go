package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"callscreen/internal/audit"
	"callscreen/internal/auth"
	"callscreen/internal/registry"
	"callscreen/internal/reporting"
	"callscreen/internal/screening"
	"callscreen/internal/voicemail"
	"callscreen/pkg/phone"
	"callscreen/pkg/utils"

	"github.com/gin-gonic/gin"
)

// retryCfg bounds retries on management writes. The live call path never
// retries; only user-facing admin operations go through this.
var retryCfg = utils.RetryConfig{Attempts: 3, Base: 100 * time.Millisecond, Max: time.Second}

// transient reports whether an error is worth retrying. Domain sentinel
// errors are final; everything else is assumed to be a persistence hiccup.
func transient(err error) bool {
	switch {
	case errors.Is(err, screening.ErrNotFound),
		errors.Is(err, voicemail.ErrNotFound),
		errors.Is(err, registry.ErrNotFound),
		errors.Is(err, voicemail.ErrInvalidState),
		errors.Is(err, voicemail.ErrInvariant),
		errors.Is(err, phone.ErrEmptyNumber),
		errors.Is(err, phone.ErrInvalidNumber):
		return false
	}
	return true
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Screening *screening.Classifier
	Messages  *voicemail.Store
	Registry  *registry.Service
	Reports   *reporting.Service
	Audit     *audit.Service
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

// callDetail joins a screening record with its registry entry and message, if any.
type callDetail struct {
	Call     screening.CallRecord `json:"call"`
	Registry *registry.Entry      `json:"registry,omitempty"`
	Message  *voicemail.Message   `json:"message,omitempty"`
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Screening == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "screening not configured"})
		return
	}
	callNo, err := strconv.ParseInt(c.Param("call_no"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_no must be an integer"})
		return
	}

	ctx := c.Request.Context()
	rec, err := h.Screening.GetCall(ctx, callNo)
	if err != nil {
		abortMapped(c, err)
		return
	}

	out := callDetail{Call: rec}
	if h.Registry != nil {
		if entry, err := h.Registry.Lookup(ctx, rec.PhoneNumber); err == nil && !entry.Neutral() {
			out.Registry = &entry
		}
	}
	if h.Messages != nil && rec.MsgNo != nil {
		if msg, err := h.Messages.Get(ctx, *rec.MsgNo); err == nil {
			out.Message = &msg
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListCalls(c *gin.Context) {
	if h.Screening == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "screening not configured"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	rows, err := h.Screening.RecentCalls(c.Request.Context(), limit)
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": rows})
}

// --- Messages ---

func (h Handlers) ListMessages(c *gin.Context) {
	if h.Messages == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "messages not configured"})
		return
	}
	rows, err := h.Messages.List(c.Request.Context())
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows})
}

func (h Handlers) GetUnplayedCount(c *gin.Context) {
	if h.Messages == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "messages not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unplayed_count": h.Messages.UnplayedCount()})
}

func (h Handlers) MarkMessagePlayed(c *gin.Context) {
	if h.Messages == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "messages not configured"})
		return
	}
	msgNo, err := strconv.ParseInt(c.Param("msg_no"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "msg_no must be an integer"})
		return
	}
	var no, unplayed int64
	err = utils.Retry(c.Request.Context(), retryCfg, transient, func(ctx context.Context) error {
		var rerr error
		no, unplayed, rerr = h.Messages.MarkPlayed(ctx, msgNo)
		return rerr
	})
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg_no": no, "unplayed_count": unplayed})
}

func (h Handlers) DeleteMessage(c *gin.Context) {
	if h.Messages == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "messages not configured"})
		return
	}
	msgNo, err := strconv.ParseInt(c.Param("msg_no"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "msg_no must be an integer"})
		return
	}

	ctx := c.Request.Context()
	msg, err := h.Messages.Get(ctx, msgNo)
	if err != nil {
		abortMapped(c, err)
		return
	}
	err = utils.Retry(ctx, retryCfg, transient, func(ctx context.Context) error {
		return h.Messages.Delete(ctx, msgNo)
	})
	if err != nil {
		abortMapped(c, err)
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(ctx)
		role, _ := auth.Role(ctx)
		_ = h.Audit.LogMessageDelete(ctx, uid, role, c.ClientIP(), msg.CallNo, msgNo)
	}
	c.JSON(http.StatusOK, gin.H{"msg_no": msgNo, "unplayed_count": h.Messages.UnplayedCount()})
}

// --- Registry ---

type registryRequest struct {
	DisplayName string `json:"display_name,omitempty"`
}

func (h Handlers) SetWhitelisted(c *gin.Context) { h.setRegistry(c, "whitelisted") }
func (h Handlers) SetBlacklisted(c *gin.Context) { h.setRegistry(c, "blacklisted") }

func (h Handlers) setRegistry(c *gin.Context, list string) {
	if h.Registry == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registry not configured"})
		return
	}
	number := c.Param("number")
	var req registryRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	var entry registry.Entry
	err := utils.Retry(ctx, retryCfg, transient, func(ctx context.Context) error {
		var rerr error
		if list == "whitelisted" {
			entry, rerr = h.Registry.SetWhitelisted(ctx, number, req.DisplayName)
		} else {
			entry, rerr = h.Registry.SetBlacklisted(ctx, number, req.DisplayName)
		}
		return rerr
	})
	if err != nil {
		abortMapped(c, err)
		return
	}

	if h.Audit != nil {
		uid, _ := auth.UserID(ctx)
		role, _ := auth.Role(ctx)
		_ = h.Audit.LogRegistryUpdate(ctx, uid, role, c.ClientIP(), entry.PhoneNumber, list)
	}
	c.JSON(http.StatusOK, entry)
}

func (h Handlers) ClearRegistryEntry(c *gin.Context) {
	if h.Registry == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registry not configured"})
		return
	}
	number := c.Param("number")
	ctx := c.Request.Context()
	err := utils.Retry(ctx, retryCfg, transient, func(ctx context.Context) error {
		return h.Registry.Clear(ctx, number)
	})
	if err != nil {
		abortMapped(c, err)
		return
	}
	if h.Audit != nil {
		uid, _ := auth.UserID(ctx)
		role, _ := auth.Role(ctx)
		_ = h.Audit.LogRegistryUpdate(ctx, uid, role, c.ClientIP(), number, "cleared")
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) GetRegistryEntry(c *gin.Context) {
	if h.Registry == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "registry not configured"})
		return
	}
	entry, err := h.Registry.Lookup(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// --- Reporting ---

func (h Handlers) CallsSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{Range: r})
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h Handlers) MessagesSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	r, ok := parseRange(c)
	if !ok {
		return
	}
	sum, err := h.Reports.MessagesSummary(c.Request.Context(), reporting.MessagesSummaryRequest{Range: r})
	if err != nil {
		abortMapped(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func parseRange(c *gin.Context) (reporting.TimeRange, bool) {
	from, err1 := time.Parse(time.RFC3339, c.Query("from"))
	to, err2 := time.Parse(time.RFC3339, c.Query("to"))
	if err1 != nil || err2 != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 timestamps"})
		return reporting.TimeRange{}, false
	}
	return reporting.TimeRange{From: from, To: to}, true
}

// abortMapped translates service errors to HTTP status codes.
func abortMapped(c *gin.Context, err error) {
	switch {
	case errors.Is(err, screening.ErrNotFound),
		errors.Is(err, voicemail.ErrNotFound),
		errors.Is(err, registry.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, voicemail.ErrInvalidState):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call was not diverted"})
	case errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, voicemail.ErrInvariant):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal invariant violated"})
	case errors.Is(err, phone.ErrEmptyNumber), errors.Is(err, phone.ErrInvalidNumber):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid phone number"})
	default:
		// Anything unmapped is treated as a persistence failure that
		// outlived the retry budget.
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	}
}
