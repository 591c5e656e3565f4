// Package leads provides the persisted-leads bounded context: the pipeline's
// storage layer plus the user-facing lead queries.
package leads

import (
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/leads/handler"
	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/internal/leads/service"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the repository, which also serves as the pipeline's
// persistence port.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Identified.Group("/leads")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.PATCH("/:id/archive", m.handler.Archive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
