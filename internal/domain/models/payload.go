package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"vellum/internal/config"
)

// Section names as they appear in payloads, diffs and doctype definitions.
const (
	SectionClient          = "client"
	SectionAssessment      = "assessment"
	SectionRecommendations = "recommendations"
	SectionBilling         = "billing"
	SectionNotes           = "notes"
)

// Payload is the structured content of a document: a tagged union of known
// section types with explicit optional fields. A nil section means "absent"
// on a document and "unchanged" on a draft delta. Notes is the only
// free-form section.
type Payload struct {
	Client          *ClientSection          `json:"client,omitempty"`
	Assessment      *AssessmentSection      `json:"assessment,omitempty"`
	Recommendations *RecommendationsSection `json:"recommendations,omitempty"`
	Billing         *BillingSection         `json:"billing,omitempty"`
	Notes           *NotesSection           `json:"notes,omitempty"`
}

// ClientSection identifies the client the record concerns.
type ClientSection struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (s ClientSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&s.Email, validation.Length(0, config.MaxNameLength)),
		validation.Field(&s.Company, validation.Length(0, config.MaxNameLength)),
	)
}

// AssessmentSection holds the consultant's findings.
type AssessmentSection struct {
	Summary  string   `json:"summary"`
	Findings []string `json:"findings,omitempty"`
}

func (s AssessmentSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Summary, validation.Required, validation.Length(1, config.MaxSectionTextLength)),
		validation.Field(&s.Findings, validation.Each(validation.Length(1, config.MaxSectionTextLength))),
	)
}

// Recommendation is one advised action item.
type Recommendation struct {
	Title    string `json:"title"`
	Priority string `json:"priority,omitempty"` // low, medium, high
	Detail   string `json:"detail,omitempty"`
}

func (r Recommendation) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&r.Priority, validation.In("", "low", "medium", "high")),
		validation.Field(&r.Detail, validation.Length(0, config.MaxSectionTextLength)),
	)
}

// RecommendationsSection lists advised actions.
type RecommendationsSection struct {
	Items []Recommendation `json:"items"`
}

func (s RecommendationsSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Items,
			validation.Required,
			validation.Length(1, config.MaxRecommendations),
		),
	)
}

// BillingSection carries monetary terms. Decimal fields avoid float drift in
// snapshots and diffs.
type BillingSection struct {
	Currency   string          `json:"currency"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Hours      decimal.Decimal `json:"hours"`
	Total      decimal.Decimal `json:"total"`
}

func (s BillingSection) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Currency, validation.Required, validation.Length(3, 3)),
	)
	if err != nil {
		return err
	}
	if s.HourlyRate.IsNegative() || s.Hours.IsNegative() || s.Total.IsNegative() {
		return validation.Errors{"total": fmt.Errorf("billing amounts cannot be negative")}
	}
	return nil
}

// NotesSection is genuinely free-form text.
type NotesSection struct {
	Text string `json:"text"`
}

func (s NotesSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Text, validation.Length(0, config.MaxSectionTextLength)),
	)
}

// sections returns the present (non-nil) sections keyed by name.
func (p Payload) sections() map[string]interface{} {
	out := make(map[string]interface{})
	if p.Client != nil {
		out[SectionClient] = *p.Client
	}
	if p.Assessment != nil {
		out[SectionAssessment] = *p.Assessment
	}
	if p.Recommendations != nil {
		out[SectionRecommendations] = *p.Recommendations
	}
	if p.Billing != nil {
		out[SectionBilling] = *p.Billing
	}
	if p.Notes != nil {
		out[SectionNotes] = *p.Notes
	}
	return out
}

// HasSection reports whether the named section is present.
func (p Payload) HasSection(name string) bool {
	_, ok := p.sections()[name]
	return ok
}

// Section returns the named section value, or nil if absent or unknown.
func (p Payload) Section(name string) interface{} {
	return p.sections()[name]
}

// Merge applies a draft delta onto the payload: every section present in the
// delta replaces the corresponding section wholesale. Merge granularity is the
// section, matching the granularity at which editors save.
func (p Payload) Merge(delta Payload) Payload {
	merged := p
	if delta.Client != nil {
		c := *delta.Client
		merged.Client = &c
	}
	if delta.Assessment != nil {
		a := *delta.Assessment
		merged.Assessment = &a
	}
	if delta.Recommendations != nil {
		r := *delta.Recommendations
		merged.Recommendations = &r
	}
	if delta.Billing != nil {
		b := *delta.Billing
		merged.Billing = &b
	}
	if delta.Notes != nil {
		n := *delta.Notes
		merged.Notes = &n
	}
	return merged
}

// IsEmpty reports whether the delta carries no sections at all.
func (p Payload) IsEmpty() bool {
	return len(p.sections()) == 0
}

// CompletionPercent derives how much of the document is filled in, as the
// share of required sections that are present, 0-100.
func (p Payload) CompletionPercent(requiredSections []string) int {
	if len(requiredSections) == 0 {
		return 100
	}
	present := 0
	for _, name := range requiredSections {
		if p.HasSection(name) {
			present++
		}
	}
	return present * 100 / len(requiredSections)
}

// DiffFields computes a structural diff between two payload snapshots,
// returning changed field paths like "client.name", sorted. Sections compare
// through their JSON form so the diff stays meaningful to callers regardless
// of in-memory representation.
func DiffFields(before, after Payload) []string {
	beforeFlat := flattenPayload(before)
	afterFlat := flattenPayload(after)

	changed := make(map[string]struct{})
	for key, beforeVal := range beforeFlat {
		afterVal, ok := afterFlat[key]
		if !ok || !reflect.DeepEqual(beforeVal, afterVal) {
			changed[key] = struct{}{}
		}
	}
	for key := range afterFlat {
		if _, ok := beforeFlat[key]; !ok {
			changed[key] = struct{}{}
		}
	}

	fields := make([]string, 0, len(changed))
	for key := range changed {
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields
}

// flattenPayload maps a payload to "section.field" keys with JSON-decoded
// values. Nested structures (recommendation items, findings) compare as whole
// values under their field key.
func flattenPayload(p Payload) map[string]interface{} {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	var decoded map[string]map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	out := make(map[string]interface{})
	for section, fields := range decoded {
		for field, value := range fields {
			out[section+"."+field] = value
		}
	}
	return out
}
