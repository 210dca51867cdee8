package service

import (
	"testing"

	"vellum/internal/domain/models"
)

func TestDetectorCheck(t *testing.T) {
	var d Detector

	baseline := models.Payload{
		Client: &models.ClientSection{Name: "Acme"},
		Notes:  &models.NotesSection{Text: "original"},
	}
	current := models.Payload{
		Client: &models.ClientSection{Name: "Acme Group"},
		Notes:  &models.NotesSection{Text: "original"},
	}

	if got := d.Check(3, 3, baseline, current); got != nil {
		t.Errorf("matching versions: got %+v, want nil", got)
	}

	conflict := d.Check(2, 4, baseline, current)
	if conflict == nil {
		t.Fatal("diverged versions: got nil, want conflict")
	}
	if conflict.DraftVersion != 2 || conflict.CurrentVersion != 4 {
		t.Errorf("versions = %d/%d, want 2/4", conflict.DraftVersion, conflict.CurrentVersion)
	}
	if len(conflict.DivergedFields) != 1 || conflict.DivergedFields[0] != "client.name" {
		t.Errorf("diverged = %v, want [client.name]", conflict.DivergedFields)
	}
}

func TestDetectorState(t *testing.T) {
	var d Detector

	if got := d.State(1, 1, models.Payload{}, models.Payload{}); got != nil {
		t.Errorf("matching versions: got %+v, want nil", got)
	}

	state := d.State(1, 2, models.Payload{}, models.Payload{
		Notes: &models.NotesSection{Text: "added"},
	})
	if state == nil {
		t.Fatal("diverged versions: got nil, want state")
	}
	if state.DraftVersion != 1 || state.CurrentVersion != 2 {
		t.Errorf("versions = %d/%d, want 1/2", state.DraftVersion, state.CurrentVersion)
	}
	if len(state.DivergedFields) != 1 || state.DivergedFields[0] != "notes.text" {
		t.Errorf("diverged = %v, want [notes.text]", state.DivergedFields)
	}
}
