package models

import (
	"time"
)

// VersionRecord is one immutable ledger entry: the full payload snapshot at a
// committed version. Records are append-only and never renumbered; rollback
// appends a new record whose snapshot equals an older one.
type VersionRecord struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	Snapshot      Payload   `json:"snapshot" db:"snapshot"`
	ChangedFields []string  `json:"changed_fields" db:"changed_fields"`
	ChangeSummary string    `json:"change_summary" db:"change_summary"`
	ActorID       string    `json:"actor_id" db:"actor_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// VersionSummary is the history-listing projection without the snapshot body.
type VersionSummary struct {
	VersionNumber int       `json:"version_number"`
	ChangedFields []string  `json:"changed_fields"`
	ChangeSummary string    `json:"change_summary"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}
