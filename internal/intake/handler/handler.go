package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadrouter_backend/internal/intake/service"
	"leadrouter_backend/internal/intake/transport"
	"leadrouter_backend/platform/httpkit"
	"leadrouter_backend/platform/validator"
)

// Handler handles HTTP requests for lead intake.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgSessionRequired  = "session id is required"
)

// New creates a new intake handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// PatchSession merges fields into an intake draft.
// POST /api/v1/intake/sessions/:id
func (h *Handler) PatchSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgSessionRequired, nil)
		return
	}

	var req transport.PatchSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.PatchSession(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetSession returns the current intake draft.
// GET /api/v1/intake/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgSessionRequired, nil)
		return
	}

	result, err := h.svc.GetSession(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteSession discards an intake draft.
// DELETE /api/v1/intake/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgSessionRequired, nil)
		return
	}

	if err := h.svc.DeleteSession(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.NoContent(c)
}

// SubmitSession routes the drafted lead.
// POST /api/v1/intake/sessions/:id/submit
func (h *Handler) SubmitSession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		httpkit.Error(c, http.StatusBadRequest, msgSessionRequired, nil)
		return
	}

	result, err := h.svc.SubmitSession(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Capture routes a complete lead submitted in one call.
// POST /api/v1/intake/leads
func (h *Handler) Capture(c *gin.Context) {
	var req transport.CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Capture(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}
