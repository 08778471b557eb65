package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadrouter_backend/internal/leadrouting/service"
	"leadrouter_backend/internal/leadrouting/transport"
	"leadrouter_backend/platform/httpkit"
	"leadrouter_backend/platform/validator"
)

// Handler handles the admin routing endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgLeadIDRequired   = "lead id is required"
)

// New creates a new routing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Redistribute moves a lead to the next candidate in its match list.
// POST /api/v1/admin/leads/:id/redistribute
func (h *Handler) Redistribute(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgLeadIDRequired, nil)
		return
	}

	result, err := h.svc.Redistribute(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Close marks a lead closed or lost.
// POST /api/v1/admin/leads/:id/close
func (h *Handler) Close(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgLeadIDRequired, nil)
		return
	}

	var req transport.CloseLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	if err := h.svc.Close(c.Request.Context(), id, req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// Overwrite re-syncs edited lead fields into the assigned store.
// POST /api/v1/admin/leads/:id/overwrite
func (h *Handler) Overwrite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgLeadIDRequired, nil)
		return
	}

	var req transport.OverwriteLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.Overwrite(c.Request.Context(), id, req); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// ListOrphans returns the orphan queue.
// GET /api/v1/admin/orphans
func (h *Handler) ListOrphans(c *gin.Context) {
	result, err := h.svc.ListOrphans(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ReprocessOrphans triggers one reassignment sweep.
// POST /api/v1/admin/orphans/reprocess
func (h *Handler) ReprocessOrphans(c *gin.Context) {
	result, err := h.svc.ReprocessOrphans(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
