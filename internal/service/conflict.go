package service

import (
	"vellum/internal/domain"
	"vellum/internal/domain/models"
)

// Detector is the pure comparison between a draft's baseline version and the
// document's current version. It never resolves anything: on divergence the
// caller decides between force-overwrite, re-merge and discard.
type Detector struct{}

// Check returns nil when the baseline matches the current version. Otherwise
// it returns a conflict carrying both version numbers and the fields that
// diverged between the baseline snapshot and the current snapshot. Diffing
// snapshots rather than the raw draft delta keeps the diverged list
// meaningful to the editor.
func (Detector) Check(baselineVersion, currentVersion int, baselineSnapshot, currentSnapshot models.Payload) *domain.ConflictError {
	if baselineVersion == currentVersion {
		return nil
	}
	return &domain.ConflictError{
		DraftVersion:   baselineVersion,
		CurrentVersion: currentVersion,
		DivergedFields: models.DiffFields(baselineSnapshot, currentSnapshot),
	}
}

// State is Check reshaped for read paths: the same comparison, reported as
// data instead of an error.
func (d Detector) State(baselineVersion, currentVersion int, baselineSnapshot, currentSnapshot models.Payload) *models.ConflictState {
	conflict := d.Check(baselineVersion, currentVersion, baselineSnapshot, currentSnapshot)
	if conflict == nil {
		return nil
	}
	return &models.ConflictState{
		DraftVersion:   conflict.DraftVersion,
		CurrentVersion: conflict.CurrentVersion,
		DivergedFields: conflict.DivergedFields,
	}
}
