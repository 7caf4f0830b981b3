package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Document Handler
// ============================================

type DocumentHandler struct {
	store *workspace.Store
}

// List returns the folder view. With ?folder it returns the flat search
// result for that folder instead.
func (h *DocumentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if folder, ok := c.GetQuery("folder"); ok {
		docs, err := h.store.SearchDocuments(ctx, c.Param("id"), c.Query("q"), folder)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
		return
	}

	view, err := h.store.DocumentsByFolder(ctx, c.Param("id"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Upload records metadata of a file stored by the upload service.
func (h *DocumentHandler) Upload(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.UploadedBy = memberID

	doc, err := h.store.UploadDocument(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteDocument(c.Request.Context(), c.Param("id"), memberID, c.Param("documentId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) RecordDownload(c *gin.Context) {
	doc, err := h.store.RecordDownload(c.Request.Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
