package repositories

import "context"

// SequenceRepository allocates collision-free sequential numbers per
// (tenant, document type). The implementation must be a single atomic
// read-modify-write primitive - a separate read followed by a write admits
// lost updates under concurrency and is not acceptable here.
type SequenceRepository interface {
	// NextNumber returns the next number for the key. Gaps are acceptable,
	// duplicates are not.
	NextNumber(ctx context.Context, tenantID, documentType string) (int, error)
}
