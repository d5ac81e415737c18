package main

import (
	"callscreen/internal/attendant"
	"callscreen/internal/httpapi"
	"callscreen/internal/rbac"
	"callscreen/internal/telephony"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, att *attendant.Attendant, modem *telephony.GatewayModem, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Gateway webhooks (public within the LAN).
	// NOTE: expose these only to the gateway's network segment; they carry no auth.
	{
		wh := telephony.WebhookHandler{Sink: att}
		r.POST("/webhooks/gateway/call", wh.HandleInboundCall)
		r.POST("/webhooks/gateway/ring", modem.HandleRing)
	}

	// auth (public)
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		// Call history: any authenticated household member may read.
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleViewer))
		{
			calls.GET("", h.ListCalls)
			calls.GET("/:call_no", h.GetCall)
		}

		// Voicemail: playback state and deletion are owner actions.
		messages := v1.Group("/messages")
		messages.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleViewer))
		{
			messages.GET("", h.ListMessages)
			messages.GET("/unplayed-count", h.GetUnplayedCount)
			messages.POST("/:msg_no/played", rbac.RequireAnyRole(rbac.RoleOwner), h.MarkMessagePlayed)
			messages.DELETE("/:msg_no", rbac.RequireAnyRole(rbac.RoleOwner), h.DeleteMessage)
		}

		// Reputation registry: writes are owner-only, reads open to viewers.
		reg := v1.Group("/registry")
		reg.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleViewer))
		{
			reg.GET("/:number", h.GetRegistryEntry)
			reg.PUT("/:number/whitelist", rbac.RequireAnyRole(rbac.RoleOwner), h.SetWhitelisted)
			reg.PUT("/:number/blacklist", rbac.RequireAnyRole(rbac.RoleOwner), h.SetBlacklisted)
			reg.DELETE("/:number", rbac.RequireAnyRole(rbac.RoleOwner), h.ClearRegistryEntry)
		}

		// Reporting
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleViewer))
		{
			reports.GET("/calls", h.CallsSummary)
			reports.GET("/messages", h.MessagesSummary)
		}
	}
}
