// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/leads/service"
	"leadscout_backend/internal/leads/transport"
	"leadscout_backend/platform/httpkit"
	"leadscout_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles lead HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// List returns leads matching the query filters.
func (h *Handler) List(c *gin.Context) {
	var query transport.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	params := repository.ListParams{
		Search:   query.Search,
		City:     query.City,
		Category: query.Category,
		Status:   query.Status,
		Page:     query.Page,
		Limit:    query.Limit,
	}

	leads, total, err := h.service.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	if params.Page < 1 {
		params.Page = 1
	}
	httpkit.OK(c, transport.ListResponse{
		Leads: transport.FromLeads(leads),
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	})
}

// GetByID returns a single lead.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	lead, err := h.service.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}

// Archive marks a lead archived.
func (h *Handler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}

	lead, err := h.service.Archive(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromLead(lead))
}
