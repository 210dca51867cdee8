package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"vellum/internal/doctype"
	"vellum/internal/domain"
	"vellum/internal/domain/models"
	"vellum/internal/domain/repositories"
	"vellum/internal/domain/services"
)

// memStore is the shared in-memory state behind the fake repositories.
type memStore struct {
	mu        sync.Mutex
	documents map[string]*models.Document
	versions  map[string][]*models.VersionRecord
	drafts    map[string]*models.Draft
	counters  map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		documents: make(map[string]*models.Document),
		versions:  make(map[string][]*models.VersionRecord),
		drafts:    make(map[string]*models.Draft),
		counters:  make(map[string]int),
	}
}

func draftKey(documentID, actorID string) string {
	return documentID + "|" + actorID
}

// snapshot copies the whole store so a failed transaction can roll back.
func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := newMemStore()
	for id, doc := range s.documents {
		d := *doc
		c.documents[id] = &d
	}
	for id, recs := range s.versions {
		copied := make([]*models.VersionRecord, len(recs))
		for i, rec := range recs {
			r := *rec
			copied[i] = &r
		}
		c.versions[id] = copied
	}
	for key, draft := range s.drafts {
		d := *draft
		c.drafts[key] = &d
	}
	for key, n := range s.counters {
		c.counters[key] = n
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = from.documents
	s.versions = from.versions
	s.drafts = from.drafts
	s.counters = from.counters
}

// fakeTxKey marks a context as transactional, so GetForUpdate can insist on
// running inside a transaction like the real repository does.
type fakeTxKey struct{}

// fakeTxManager serializes transactions on one mutex and restores the store
// snapshot when the function fails. Serialization plays the role of the
// document row lock; snapshot restore plays the role of rollback.
type fakeTxManager struct {
	store *memStore
	txMu  sync.Mutex
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return m.run(ctx, fn)
}

func (m *fakeTxManager) ExecLocked(ctx context.Context, fn repositories.TxFn) error {
	return m.run(ctx, fn)
}

func (m *fakeTxManager) run(ctx context.Context, fn repositories.TxFn) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	before := m.store.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		m.store.restore(before)
		return err
	}
	return nil
}

// fakeDocRepo mirrors the Postgres repository's error contract.
type fakeDocRepo struct {
	store *memStore
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.documents {
		if existing.TenantID == doc.TenantID && existing.DocumentNumber == doc.DocumentNumber {
			return &domain.DuplicateSequenceError{Number: doc.DocumentNumber}
		}
	}
	d := *doc
	r.store.documents[doc.ID] = &d
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getOne(tenantID, id)
}

func (r *fakeDocRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*models.Document, error) {
	if ctx.Value(fakeTxKey{}) == nil {
		return nil, fmt.Errorf("GetForUpdate requires a transaction")
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getOne(tenantID, id)
}

func (r *fakeDocRepo) getOne(tenantID, id string) (*models.Document, error) {
	doc, ok := r.store.documents[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
	}
	if doc.TenantID != tenantID {
		return nil, &domain.TenantMismatchError{TenantID: tenantID, ResourceID: id}
	}
	d := *doc
	return &d, nil
}

func (r *fakeDocRepo) UpdatePromoted(ctx context.Context, doc *models.Document) error {
	return r.update(doc)
}

func (r *fakeDocRepo) UpdateStatus(ctx context.Context, doc *models.Document) error {
	return r.update(doc)
}

func (r *fakeDocRepo) update(doc *models.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.documents[doc.ID]
	if !ok || existing.TenantID != doc.TenantID {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", doc.ID)}
	}
	d := *doc
	r.store.documents[doc.ID] = &d
	return nil
}

func (r *fakeDocRepo) List(ctx context.Context, tenantID string, filter models.DocumentFilter) ([]models.DocumentSummary, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]*models.Document, 0)
	for _, doc := range r.store.documents {
		if doc.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && doc.Status != *filter.Status {
			continue
		}
		if filter.SearchTerm != "" {
			term := strings.ToLower(filter.SearchTerm)
			name := ""
			if doc.Payload.Client != nil {
				name = doc.Payload.Client.Name
			}
			if !strings.Contains(strings.ToLower(doc.DocumentNumber), term) &&
				!strings.Contains(strings.ToLower(name), term) {
				continue
			}
		}
		matched = append(matched, doc)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	summaries := make([]models.DocumentSummary, 0, end-start)
	for _, doc := range matched[start:end] {
		name := ""
		if doc.Payload.Client != nil {
			name = doc.Payload.Client.Name
		}
		summaries = append(summaries, models.DocumentSummary{
			ID:                doc.ID,
			DocumentType:      doc.DocumentType,
			DocumentNumber:    doc.DocumentNumber,
			OwnerActorID:      doc.OwnerActorID,
			Status:            doc.Status,
			Version:           doc.Version,
			ClientName:        name,
			CompletionPercent: doc.CompletionPercent,
			UpdatedAt:         doc.UpdatedAt,
		})
	}
	return summaries, total, nil
}

// fakeVersionRepo stores ledger records per document.
type fakeVersionRepo struct {
	store *memStore
}

func (r *fakeVersionRepo) Append(ctx context.Context, rec *models.VersionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.versions[rec.DocumentID] {
		if existing.VersionNumber == rec.VersionNumber {
			return fmt.Errorf("%w: version %d already recorded", domain.ErrConflict, rec.VersionNumber)
		}
	}
	copied := *rec
	r.store.versions[rec.DocumentID] = append(r.store.versions[rec.DocumentID], &copied)
	return nil
}

func (r *fakeVersionRepo) Get(ctx context.Context, tenantID, documentID string, versionNumber int) (*models.VersionRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkTenant(tenantID, documentID); err != nil {
		return nil, err
	}
	for _, rec := range r.store.versions[documentID] {
		if rec.VersionNumber == versionNumber {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("version %d not found", versionNumber)}
}

func (r *fakeVersionRepo) List(ctx context.Context, tenantID, documentID string, page, limit int) ([]models.VersionSummary, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.checkTenant(tenantID, documentID); err != nil {
		return nil, 0, err
	}

	recs := make([]*models.VersionRecord, len(r.store.versions[documentID]))
	copy(recs, r.store.versions[documentID])
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].VersionNumber > recs[j].VersionNumber
	})

	total := len(recs)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	summaries := make([]models.VersionSummary, 0, end-start)
	for _, rec := range recs[start:end] {
		summaries = append(summaries, models.VersionSummary{
			VersionNumber: rec.VersionNumber,
			ChangedFields: rec.ChangedFields,
			ChangeSummary: rec.ChangeSummary,
			ActorID:       rec.ActorID,
			CreatedAt:     rec.CreatedAt,
		})
	}
	return summaries, total, nil
}

// checkTenant mirrors the tenant-scoping join: history of a foreign or absent
// document reads as not found.
func (r *fakeVersionRepo) checkTenant(tenantID, documentID string) error {
	doc, ok := r.store.documents[documentID]
	if !ok || doc.TenantID != tenantID {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", documentID)}
	}
	return nil
}

// fakeDraftRepo implements the revision-stamp upsert guard in memory.
type fakeDraftRepo struct {
	store *memStore
}

func (r *fakeDraftRepo) Upsert(ctx context.Context, draft *models.Draft) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := draftKey(draft.DocumentID, draft.ActorID)
	existing, ok := r.store.drafts[key]
	if !ok {
		d := *draft
		r.store.drafts[key] = &d
		return nil
	}

	// A stamped upsert that is not newer than the stored row is ignored.
	if draft.Revision != 0 && existing.Revision >= draft.Revision {
		return nil
	}

	existing.PayloadDelta = draft.PayloadDelta
	existing.Revision = draft.Revision
	existing.UpdatedAt = draft.UpdatedAt
	// BaselineVersion keeps its original value on update.
	return nil
}

func (r *fakeDraftRepo) Get(ctx context.Context, documentID, actorID string) (*models.Draft, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	draft, ok := r.store.drafts[draftKey(documentID, actorID)]
	if !ok {
		return nil, &domain.NotFoundError{Message: "draft not found"}
	}
	d := *draft
	return &d, nil
}

func (r *fakeDraftRepo) Delete(ctx context.Context, documentID, actorID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.drafts, draftKey(documentID, actorID))
	return nil
}

// fakeSequenceRepo is an atomic in-memory counter.
type fakeSequenceRepo struct {
	store *memStore
}

func (r *fakeSequenceRepo) NextNumber(ctx context.Context, tenantID, documentType string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := tenantID + "|" + documentType
	r.store.counters[key]++
	return r.store.counters[key], nil
}

// fixture wires every service against one shared in-memory store.
type fixture struct {
	store     *memStore
	docs      services.DocumentService
	drafts    services.DraftService
	promotion services.PromotionService
	versions  services.VersionService
	numbering services.NumberingService
	draftRepo repositories.DraftRepository
	docRepo   repositories.DocumentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	docRepo := &fakeDocRepo{store: store}
	versionRepo := &fakeVersionRepo{store: store}
	draftRepo := &fakeDraftRepo{store: store}
	sequenceRepo := &fakeSequenceRepo{store: store}
	txManager := &fakeTxManager{store: store}

	registry, err := doctype.NewRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	numbering := NewNumberingService(sequenceRepo, registry, logger)

	return &fixture{
		store:     store,
		docs:      NewDocumentService(docRepo, versionRepo, draftRepo, txManager, registry, numbering, logger),
		drafts:    NewDraftService(docRepo, draftRepo, logger),
		promotion: NewPromotionService(docRepo, versionRepo, draftRepo, txManager, registry, logger),
		versions:  NewVersionService(versionRepo, logger),
		numbering: numbering,
		draftRepo: draftRepo,
		docRepo:   docRepo,
	}
}

var (
	tenantA = models.TenantContext{TenantID: "tenant-a", ActorID: "actor-1", Role: "owner"}
	actor2  = models.TenantContext{TenantID: "tenant-a", ActorID: "actor-2", Role: "member"}
	tenantB = models.TenantContext{TenantID: "tenant-b", ActorID: "actor-9", Role: "owner"}
)

// mustCreateConsultation creates a consultation with a client section.
func mustCreateConsultation(t *testing.T, f *fixture, tc models.TenantContext) *models.Document {
	t.Helper()

	doc, err := f.docs.CreateDocument(context.Background(), tc, &services.CreateDocumentRequest{
		DocumentType: "consultation",
		InitialPayload: models.Payload{
			Client: &models.ClientSection{Name: "Acme"},
		},
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

// fullConsultationDelta carries every section a consultation requires to
// complete.
func fullConsultationDelta() models.Payload {
	return models.Payload{
		Assessment: &models.AssessmentSection{Summary: "findings recorded"},
		Recommendations: &models.RecommendationsSection{
			Items: []models.Recommendation{{Title: "do the thing", Priority: "high"}},
		},
	}
}
