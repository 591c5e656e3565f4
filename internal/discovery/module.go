// Package discovery provides the discovery-run bounded context: quota-gated
// user searches, queue-backed pipeline execution and run↔lead reconciliation.
package discovery

import (
	"leadscout_backend/internal/discovery/handler"
	"leadscout_backend/internal/discovery/quota"
	"leadscout_backend/internal/discovery/repository"
	"leadscout_backend/internal/discovery/service"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/pipeline"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the discovery bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the discovery module. Pass a nil jobs
// queue to run discoveries synchronously in-process.
func NewModule(
	pool *pgxpool.Pool,
	quotaCfg config.QuotaConfig,
	leads service.LeadReader,
	deps pipeline.Deps,
	jobs service.JobQueue,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	enforcer := quota.New(quotaCfg, repo)
	svc := service.New(repo, leads, enforcer, jobs, deps, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "discovery"
}

// Service returns the run orchestrator for other composition-root consumers.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts discovery routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Identified.Group("/discovery")
	group.POST("/search", m.handler.Search)
	group.GET("/runs/:id", m.handler.Status)
	group.GET("/runs/:id/results", m.handler.Results)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
