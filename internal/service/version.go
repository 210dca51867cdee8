package service

import (
	"context"
	"log/slog"

	"vellum/internal/config"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// versionService implements the VersionService interface
type versionService struct {
	versionRepo repositories.VersionRepository
	logger      *slog.Logger
}

// NewVersionService creates a new version history service
func NewVersionService(versionRepo repositories.VersionRepository, logger *slog.Logger) services.VersionService {
	return &versionService{
		versionRepo: versionRepo,
		logger:      logger,
	}
}

// ListVersions returns ledger history newest-first
func (s *versionService) ListVersions(ctx context.Context, tc models.TenantContext, documentID string, page, limit int) (*models.Page[models.VersionSummary], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}

	items, total, err := s.versionRepo.List(ctx, tc.TenantID, documentID, page, limit)
	if err != nil {
		return nil, err
	}

	return &models.Page[models.VersionSummary]{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GetVersion fetches one snapshot by version number
func (s *versionService) GetVersion(ctx context.Context, tc models.TenantContext, documentID string, versionNumber int) (*models.VersionRecord, error) {
	return s.versionRepo.Get(ctx, tc.TenantID, documentID, versionNumber)
}
