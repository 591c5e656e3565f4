// Package handler exposes the discovery module over HTTP.
package handler

import (
	"net/http"

	"leadscout_backend/internal/discovery/quota"
	"leadscout_backend/internal/discovery/service"
	"leadscout_backend/internal/discovery/transport"
	leadstransport "leadscout_backend/internal/leads/transport"
	"leadscout_backend/platform/httpkit"
	"leadscout_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles discovery HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new discovery handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// Search starts a discovery run. Queued runs return 202; a synchronous
// (no-queue) run is terminal already and returns 200.
func (h *Handler) Search(c *gin.Context) {
	userID, ok := httpkit.UserIDFromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "user identity required", nil)
		return
	}

	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.SubscriptionTier == "" {
		req.SubscriptionTier = quota.FallbackTier
	}

	result, err := h.service.StartDiscovery(c.Request.Context(), service.StartParams{
		UserID:   userID,
		City:     req.City,
		Category: req.BusinessCategory,
		Limit:    req.Limit,
		Tier:     req.SubscriptionTier,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	response := transport.SearchResponse{
		Run:    transport.FromRun(result.Run),
		JobID:  result.JobID,
		Queued: result.Queued,
		Quota:  transport.FromQuota(result.Quota),
	}

	if result.Queued {
		httpkit.Accepted(c, response)
		return
	}
	httpkit.OK(c, response)
}

// Status returns the run's current state after syncing it with the queue.
func (h *Handler) Status(c *gin.Context) {
	userID, runID, ok := h.runScope(c)
	if !ok {
		return
	}

	run, err := h.service.GetDiscoveryStatus(c.Request.Context(), runID, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromRun(run))
}

// Results returns the run plus the leads attributed to it.
func (h *Handler) Results(c *gin.Context) {
	userID, runID, ok := h.runScope(c)
	if !ok {
		return
	}

	run, leads, err := h.service.GetDiscoveryResults(c.Request.Context(), runID, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"run":   transport.FromRun(run),
		"leads": leadstransport.FromLeads(leads),
	})
}

func (h *Handler) runScope(c *gin.Context) (userID, runID uuid.UUID, ok bool) {
	userID, found := httpkit.UserIDFromContext(c)
	if !found {
		httpkit.Error(c, http.StatusUnauthorized, "user identity required", nil)
		return uuid.Nil, uuid.Nil, false
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid run id", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, runID, true
}
