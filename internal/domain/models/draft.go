package models

import (
	"time"
)

// Draft is the per-(document, actor) staging area for in-progress edits.
// Exactly one draft exists per editor per document; autosaves upsert it.
// Drafts are not audited and not versioned - they are deleted on successful
// promotion or explicit discard.
type Draft struct {
	DocumentID      string    `json:"document_id" db:"document_id"`
	ActorID         string    `json:"actor_id" db:"actor_id"`
	BaselineVersion int       `json:"baseline_version" db:"baseline_version"`
	PayloadDelta    Payload   `json:"payload_delta" db:"payload_delta"`
	// Revision is an optional caller-supplied monotonic stamp. Upserts whose
	// stamp is not newer than the stored one are ignored, so out-of-order
	// autosave delivery cannot clobber a newer delta. Zero disables the guard
	// (plain last-write-wins).
	Revision  int64     `json:"revision" db:"revision"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Stale reports whether the draft was based on an older document version.
func (d *Draft) Stale(currentVersion int) bool {
	return d.BaselineVersion != currentVersion
}
