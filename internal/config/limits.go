package config

const (
	// MaxSectionTextLength is the maximum length for free-text section fields
	// (assessment summaries, recommendation details, notes). Limited to keep
	// snapshots at a size where full-payload versioning stays cheap.
	MaxSectionTextLength = 20000

	// MaxNameLength is the maximum length for names and titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxNameLength = 255

	// MaxChangeSummaryLength is the maximum length for a version change summary.
	MaxChangeSummaryLength = 500

	// DefaultListLimit is the page size applied when the caller does not
	// specify one.
	DefaultListLimit = 20

	// MaxListLimit caps page sizes for document and version listings.
	MaxListLimit = 100

	// MaxRecommendations caps the recommendation items per document.
	MaxRecommendations = 50
)
