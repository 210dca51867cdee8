package models

// ConflictState describes a stale draft: the version it was based on, the
// document's current version, and the fields that diverged between the two
// snapshots. It is the read-side twin of the promotion conflict error.
type ConflictState struct {
	DraftVersion   int      `json:"draft_version"`
	CurrentVersion int      `json:"current_version"`
	DivergedFields []string `json:"diverged_fields"`
}
