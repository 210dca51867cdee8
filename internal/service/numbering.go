package service

import (
	"context"
	"log/slog"

	"vellum/internal/doctype"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// numberingService implements the NumberingService interface
type numberingService struct {
	sequenceRepo repositories.SequenceRepository
	registry     *doctype.Registry
	logger       *slog.Logger
}

// NewNumberingService creates a new document number allocator
func NewNumberingService(sequenceRepo repositories.SequenceRepository, registry *doctype.Registry, logger *slog.Logger) services.NumberingService {
	return &numberingService{
		sequenceRepo: sequenceRepo,
		registry:     registry,
		logger:       logger,
	}
}

// AllocateDocumentNumber allocates and formats the next number for the
// tenant and type. A number consumed by a creation that later fails is a
// gap, not an error; uniqueness is what matters.
func (s *numberingService) AllocateDocumentNumber(ctx context.Context, tc models.TenantContext, documentType string) (string, error) {
	def, err := s.registry.Get(documentType)
	if err != nil {
		return "", err
	}

	n, err := s.sequenceRepo.NextNumber(ctx, tc.TenantID, documentType)
	if err != nil {
		return "", err
	}

	return def.FormatNumber(n), nil
}
