package service

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"vellum/internal/doctype"
	"vellum/internal/domain"
	"vellum/internal/domain/models"
)

// validatePayload checks every present section against its schema. When
// forCompletion is set, the document type's required sections must also all
// be present. Field paths in the result read "section.field".
func validatePayload(def doctype.Definition, p models.Payload, forCompletion bool) error {
	fields := make(map[string]string)

	if forCompletion {
		for _, name := range def.RequiredSections {
			if !p.HasSection(name) {
				fields[name] = "section is required for completion"
			}
		}
	}

	type validatable interface{ Validate() error }
	sections := map[string]validatable{}
	if p.Client != nil {
		sections[models.SectionClient] = *p.Client
	}
	if p.Assessment != nil {
		sections[models.SectionAssessment] = *p.Assessment
	}
	if p.Recommendations != nil {
		sections[models.SectionRecommendations] = *p.Recommendations
	}
	if p.Billing != nil {
		sections[models.SectionBilling] = *p.Billing
	}
	if p.Notes != nil {
		sections[models.SectionNotes] = *p.Notes
	}

	for name, section := range sections {
		if err := section.Validate(); err != nil {
			collectFieldErrors(name, err, fields)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{
			Message: "payload validation failed",
			Fields:  fields,
		}
	}
	return nil
}

// collectFieldErrors flattens ozzo validation errors into "section.field"
// messages.
func collectFieldErrors(section string, err error, out map[string]string) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			out[section+"."+field] = fieldErr.Error()
		}
		return
	}
	out[section] = err.Error()
}
