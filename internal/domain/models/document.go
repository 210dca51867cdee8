package models

import (
	"time"
)

// DocumentStatus is the document lifecycle state. The set {draft, completed,
// archived} is authoritative; any other value is rejected as invalid input.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusCompleted DocumentStatus = "completed"
	StatusArchived  DocumentStatus = "archived"
)

// Valid reports whether the status is one of the accepted values.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle permits moving to the target
// status: draft -> completed -> archived -> completed (restore). There is no
// path back to draft.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	switch s {
	case StatusDraft:
		return to == StatusCompleted
	case StatusCompleted:
		return to == StatusArchived
	case StatusArchived:
		return to == StatusCompleted
	}
	return false
}

// Document is one versioned business record (consultation, proposal, ...).
// Version equals the highest version number in the document's ledger; it
// starts at 1 and never decreases.
type Document struct {
	ID                string         `json:"id" db:"id"`
	TenantID          string         `json:"tenant_id" db:"tenant_id"`
	DocumentType      string         `json:"document_type" db:"document_type"`
	DocumentNumber    string         `json:"document_number" db:"document_number"`
	OwnerActorID      string         `json:"owner_actor_id" db:"owner_actor_id"`
	Status            DocumentStatus `json:"status" db:"status"`
	Version           int            `json:"version" db:"version"`
	Payload           Payload        `json:"payload" db:"payload"`
	CompletionPercent int            `json:"completion_percentage" db:"completion_percentage"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// DocumentSummary is the listing projection: no payload, just enough to
// render an index row.
type DocumentSummary struct {
	ID                string         `json:"id"`
	DocumentType      string         `json:"document_type"`
	DocumentNumber    string         `json:"document_number"`
	OwnerActorID      string         `json:"owner_actor_id"`
	Status            DocumentStatus `json:"status"`
	Version           int            `json:"version"`
	ClientName        string         `json:"client_name,omitempty"`
	CompletionPercent int            `json:"completion_percentage"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Status     *DocumentStatus
	SearchTerm string
	Page       int
	Limit      int
}

// ApplyDefaults normalizes pagination to sane bounds.
func (f *DocumentFilter) ApplyDefaults(defaultLimit, maxLimit int) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
}
