package service

import (
	"context"
	"errors"
	"testing"

	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/services"
)

func TestSaveDraftRecordsBaseline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	draft, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "first pass"}},
	})
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if draft.BaselineVersion != 1 {
		t.Errorf("baseline = %d, want 1", draft.BaselineVersion)
	}
	if draft.ActorID != tenantA.ActorID {
		t.Errorf("actor = %s, want %s", draft.ActorID, tenantA.ActorID)
	}
}

func TestSaveDraftIsIdempotentUpsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	req := &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "same content"}},
	}
	first, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, req)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, req)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if second.PayloadDelta.Notes.Text != first.PayloadDelta.Notes.Text {
		t.Errorf("content changed across identical saves")
	}
	if second.BaselineVersion != first.BaselineVersion {
		t.Errorf("baseline changed across saves: %d -> %d", first.BaselineVersion, second.BaselineVersion)
	}
}

func TestSaveDraftPreservesBaselineAcrossPromotions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	// Actor 2 drafts at version 1.
	if _, err := f.drafts.SaveDraft(ctx, actor2, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "v1 edit"}},
	}); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	// Actor 1 promotes, moving the document to version 2.
	if _, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Client: &models.ClientSection{Name: "Acme v2"}},
	}); err != nil {
		t.Fatalf("save owner draft: %v", err)
	}
	if _, err := f.promotion.PromoteDraft(ctx, tenantA, doc.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// Actor 2 autosaves again. The stored baseline must stay 1, not jump to 2:
	// it records what the editor actually loaded.
	updated, err := f.drafts.SaveDraft(ctx, actor2, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "v1 edit, continued"}},
	})
	if err != nil {
		t.Fatalf("re-save draft: %v", err)
	}
	if updated.BaselineVersion != 1 {
		t.Errorf("baseline = %d, want 1", updated.BaselineVersion)
	}
}

func TestSaveDraftRevisionGuardIgnoresStaleStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	if _, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "newer"}},
		Revision:     5,
	}); err != nil {
		t.Fatalf("save revision 5: %v", err)
	}

	// An out-of-order delivery with an older stamp must not clobber.
	stale, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "older"}},
		Revision:     3,
	})
	if err != nil {
		t.Fatalf("save revision 3: %v", err)
	}
	if stale.PayloadDelta.Notes.Text != "newer" {
		t.Errorf("content = %q, want revision 5 content preserved", stale.PayloadDelta.Notes.Text)
	}
	if stale.Revision != 5 {
		t.Errorf("revision = %d, want 5", stale.Revision)
	}
}

func TestSaveDraftEmptyDeltaRejected(t *testing.T) {
	f := newFixture(t)
	doc := mustCreateConsultation(t, f, tenantA)

	_, err := f.drafts.SaveDraft(context.Background(), tenantA, doc.ID, &services.SaveDraftRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestDraftsAreIsolatedPerActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	if _, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "actor 1"}},
	}); err != nil {
		t.Fatalf("save actor-1 draft: %v", err)
	}
	if _, err := f.drafts.SaveDraft(ctx, actor2, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "actor 2"}},
	}); err != nil {
		t.Fatalf("save actor-2 draft: %v", err)
	}

	d1, err := f.drafts.GetDraft(ctx, tenantA, doc.ID)
	if err != nil {
		t.Fatalf("get actor-1 draft: %v", err)
	}
	d2, err := f.drafts.GetDraft(ctx, actor2, doc.ID)
	if err != nil {
		t.Fatalf("get actor-2 draft: %v", err)
	}
	if d1.PayloadDelta.Notes.Text == d2.PayloadDelta.Notes.Text {
		t.Error("drafts not isolated per actor")
	}
}

func TestDiscardDraftLeavesDocumentUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := mustCreateConsultation(t, f, tenantA)

	if _, err := f.drafts.SaveDraft(ctx, tenantA, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "scratch"}},
	}); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if err := f.drafts.DiscardDraft(ctx, tenantA, doc.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}

	if _, err := f.drafts.GetDraft(ctx, tenantA, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("draft after discard: err = %v, want not found", err)
	}
	current, err := f.docs.GetDocumentWithDraft(ctx, tenantA, doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if current.Document.Version != 1 {
		t.Errorf("version = %d, want 1", current.Document.Version)
	}
	if current.Document.Payload.Notes != nil {
		t.Error("discarded delta leaked into canonical payload")
	}
}

func TestDiscardAbsentDraftIsNoError(t *testing.T) {
	f := newFixture(t)
	doc := mustCreateConsultation(t, f, tenantA)

	if err := f.drafts.DiscardDraft(context.Background(), tenantA, doc.ID); err != nil {
		t.Errorf("discard absent draft: %v", err)
	}
}

func TestDraftCrossTenantRejected(t *testing.T) {
	f := newFixture(t)
	doc := mustCreateConsultation(t, f, tenantA)

	_, err := f.drafts.SaveDraft(context.Background(), tenantB, doc.ID, &services.SaveDraftRequest{
		PayloadDelta: models.Payload{Notes: &models.NotesSection{Text: "intruder"}},
	})
	if !errors.Is(err, domain.ErrTenantMismatch) {
		t.Errorf("err = %v, want tenant mismatch", err)
	}
}
