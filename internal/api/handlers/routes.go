package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
)

// RegisterRoutes mounts the authenticated workspace API on api.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, jwtSecret string, logger zerolog.Logger) {
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, logger))

	protected.POST("/presence", h.Member.Presence)

	workspaces := protected.Group("/workspaces")
	{
		workspaces.GET("", h.Workspace.List)
		workspaces.POST("", h.Workspace.Create)
	}

	ws := workspaces.Group("/:id")
	ws.Use(h.RequireReader())
	{
		ws.GET("", h.Workspace.Get)
		ws.GET("/versions", h.Workspace.Versions)
		ws.POST("/views", h.Workspace.RecordView)

		ws.GET("/members", h.Member.Roster)
		ws.POST("/members", h.Member.Add)
		ws.GET("/members/:memberId", h.Member.Get)
		ws.DELETE("/members/:memberId", h.Member.Remove)
		ws.PATCH("/members/:memberId/role", h.Member.UpdateRole)
		ws.POST("/owner", h.Member.TransferOwnership)
		if h.Presence != nil {
			ws.GET("/presence", h.Presence.Workspace)
			ws.GET("/presence/:memberId", h.Presence.Member)
		}

		ws.GET("/messages", h.Message.List)
		ws.POST("/messages", h.Message.Send)
		ws.GET("/messages/pinned", h.Message.Pinned)
		ws.POST("/messages/:messageId/pin", h.Message.TogglePin)
		ws.GET("/messages/:messageId/chain", h.Message.Chain)
		ws.GET("/messages/:messageId/replies", h.Message.Replies)

		ws.GET("/evidence", h.Evidence.List)
		ws.POST("/evidence", h.Evidence.Create)
		ws.GET("/evidence/stats", h.Evidence.Stats)
		ws.GET("/evidence/:evidenceId", h.Evidence.Get)
		ws.PATCH("/evidence/:evidenceId/status", h.Evidence.UpdateStatus)
		ws.DELETE("/evidence/:evidenceId", h.Evidence.Delete)
		ws.POST("/evidence/:evidenceId/connections", h.Evidence.Connect)
		ws.DELETE("/evidence/:evidenceId/connections/:targetId", h.Evidence.Disconnect)
		ws.GET("/evidence/:evidenceId/neighbors", h.Evidence.Neighbors)
		ws.GET("/evidence/:evidenceId/related", h.Evidence.Related)

		ws.GET("/documents", h.Document.List)
		ws.POST("/documents", h.Document.Upload)
		ws.DELETE("/documents/:documentId", h.Document.Delete)
		ws.POST("/documents/:documentId/downloads", h.Document.RecordDownload)

		ws.GET("/milestones", h.Milestone.List)
		ws.POST("/milestones", h.Milestone.Create)
		ws.PATCH("/milestones/:milestoneId", h.Milestone.Update)

		if h.Events != nil {
			ws.GET("/events", h.Events.List)
		}
	}
}
