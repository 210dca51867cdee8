package doctype

import (
	"errors"
	"reflect"
	"testing"

	"vellum/internal/domain"
	"vellum/internal/domain/models"
)

func TestNewRegistryLoadsEmbeddedTypes(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []string{"consultation", "invoice", "proposal"}
	if got := r.Types(); !reflect.DeepEqual(got, want) {
		t.Errorf("Types() = %v, want %v", got, want)
	}
}

func TestRegistryGet(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		docType      string
		wantPrefix   string
		wantRequired []string
	}{
		{"consultation", "CON", []string{models.SectionClient, models.SectionAssessment, models.SectionRecommendations}},
		{"proposal", "PRO", []string{models.SectionClient, models.SectionRecommendations, models.SectionBilling}},
		{"invoice", "INV", []string{models.SectionClient, models.SectionBilling}},
	}
	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			def, err := r.Get(tt.docType)
			if err != nil {
				t.Fatalf("Get(%s): %v", tt.docType, err)
			}
			if def.NumberPrefix != tt.wantPrefix {
				t.Errorf("prefix = %s, want %s", def.NumberPrefix, tt.wantPrefix)
			}
			if !reflect.DeepEqual(def.RequiredSections, tt.wantRequired) {
				t.Errorf("required = %v, want %v", def.RequiredSections, tt.wantRequired)
			}
		})
	}
}

func TestRegistryGetUnknownType(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	_, err = r.Get("memo")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %T, want *domain.ValidationError", err)
	}
	if _, ok := validationErr.Fields["document_type"]; !ok {
		t.Errorf("fields = %v, want document_type entry", validationErr.Fields)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		def  Definition
		n    int
		want string
	}{
		{Definition{NumberPrefix: "CON", NumberPadding: 6}, 42, "CON-000042"},
		{Definition{NumberPrefix: "INV", NumberPadding: 6}, 1, "INV-000001"},
		{Definition{NumberPrefix: "PRO", NumberPadding: 4}, 12345, "PRO-12345"},
	}
	for _, tt := range tests {
		if got := tt.def.FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}
