// Package service implements lead read/archive use cases on top of the
// repository. Pipeline writes go through the repository directly; this layer
// exists for the user-facing surface.
package service

import (
	"context"

	"leadscout_backend/internal/leads/repository"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service provides lead queries and user actions.
type Service struct {
	repo repository.LeadsRepository
	log  *logger.Logger
}

// New creates a new leads service.
func New(repo repository.LeadsRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns leads matching the given filters, with totals for paging.
func (s *Service) List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}

	return s.repo.List(ctx, params)
}

// GetByID returns a single lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	if id == uuid.Nil {
		return repository.Lead{}, apperr.Validation("lead id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Archive transitions a lead to archived status. Leads are never deleted.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	if id == uuid.Nil {
		return repository.Lead{}, apperr.Validation("lead id is required")
	}

	lead, err := s.repo.Archive(ctx, id)
	if err != nil {
		return repository.Lead{}, err
	}

	s.log.Info("lead archived", "leadId", lead.ID)
	return lead, nil
}
