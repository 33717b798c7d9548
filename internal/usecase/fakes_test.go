package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campnest/backend/internal/domain"
)

// In-memory fakes for the repository interfaces. Each test wires only the
// fields it needs.

type fakeListingRepo struct {
	mu        sync.Mutex
	refs      []domain.ListingRef
	refsErr   error
	nextID    int64
	created   []domain.NewListing
	createErr func(l domain.NewListing) error
	photos    []domain.ListingPhoto
	photoErr  error
}

func (f *fakeListingRepo) Create(ctx context.Context, l domain.NewListing) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(l); err != nil {
			return 0, err
		}
	}
	f.nextID++
	f.created = append(f.created, l)
	return f.nextID, nil
}

func (f *fakeListingRepo) AttachPhoto(ctx context.Context, p domain.ListingPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, p)
	return nil
}

func (f *fakeListingRepo) ActiveRefs(ctx context.Context) ([]domain.ListingRef, error) {
	if f.refsErr != nil {
		return nil, f.refsErr
	}
	return f.refs, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]interface{})}
}

func (f *fakeCache) Get(ctx context.Context, key string) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type fakeRawPlaceRepo struct {
	mu       sync.Mutex
	places   map[int64]*domain.RawPlace
	photos   map[int64][]string
	statuses map[int64][]domain.RawPlaceStatus
	imported map[int64]int64
}

func newFakeRawPlaceRepo(places ...*domain.RawPlace) *fakeRawPlaceRepo {
	f := &fakeRawPlaceRepo{
		places:   make(map[int64]*domain.RawPlace),
		photos:   make(map[int64][]string),
		statuses: make(map[int64][]domain.RawPlaceStatus),
		imported: make(map[int64]int64),
	}
	for _, p := range places {
		f.places[p.ID] = p
	}
	return f
}

func (f *fakeRawPlaceRepo) GetByID(ctx context.Context, id int64) (*domain.RawPlace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.places[id]
	if !ok {
		return nil, domain.ErrRawPlaceNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRawPlaceRepo) ListPendingIDs(ctx context.Context, limit int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id, p := range f.places {
		if p.Status == domain.RawPlaceStatusPending && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRawPlaceRepo) UpdateStatus(ctx context.Context, id int64, status domain.RawPlaceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.places[id]
	if !ok {
		return domain.ErrRawPlaceNotFound
	}
	p.Status = status
	f.statuses[id] = append(f.statuses[id], status)
	return nil
}

func (f *fakeRawPlaceRepo) MarkImported(ctx context.Context, id int64, listingID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.places[id]
	if !ok {
		return domain.ErrRawPlaceNotFound
	}
	p.Imported = true
	p.ImportedListingID = &listingID
	f.imported[id] = listingID
	return nil
}

func (f *fakeRawPlaceRepo) DownloadedPhotos(ctx context.Context, rawPlaceID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.photos[rawPlaceID], nil
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	nextID     int64
	candidates map[int64]*domain.ImportCandidate
	updates    int
}

func newFakeCandidateRepo(candidates ...*domain.ImportCandidate) *fakeCandidateRepo {
	f := &fakeCandidateRepo{candidates: make(map[int64]*domain.ImportCandidate)}
	for _, c := range candidates {
		f.candidates[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCandidateRepo) GetByID(ctx context.Context, id int64) (*domain.ImportCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCandidateRepo) GetByRawPlaceID(ctx context.Context, rawPlaceID int64) (*domain.ImportCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.RawPlaceID == rawPlaceID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCandidateNotFound
}

func (f *fakeCandidateRepo) Create(ctx context.Context, c *domain.ImportCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.candidates[c.ID] = &cp
	return nil
}

func (f *fakeCandidateRepo) Update(ctx context.Context, c *domain.ImportCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.candidates[c.ID]; !ok {
		return domain.ErrCandidateNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	f.candidates[c.ID] = &cp
	f.updates++
	return nil
}

func (f *fakeCandidateRepo) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.ImportCandidate, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ImportCandidate
	for _, c := range f.candidates {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.MinConfidence != nil && c.Confidence < *filter.MinConfidence {
			continue
		}
		if filter.IsDuplicate != nil && c.IsDuplicate != *filter.IsDuplicate {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeCandidateRepo) MarkApproved(ctx context.Context, id int64, reviewerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok || c.Status != domain.CandidateStatusPending {
		return false, nil
	}
	now := time.Now()
	c.Status = domain.CandidateStatusApproved
	c.ReviewerID = &reviewerID
	c.ReviewedAt = &now
	return true, nil
}

func (f *fakeCandidateRepo) MarkRejected(ctx context.Context, id int64, reviewerID, reason, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok || c.Status != domain.CandidateStatusPending {
		return domain.ErrInvalidCandidateState
	}
	now := time.Now()
	c.Status = domain.CandidateStatusRejected
	c.ReviewerID = &reviewerID
	c.ReviewedAt = &now
	c.RejectReason = reason
	c.ReviewNotes = notes
	return nil
}

func (f *fakeCandidateRepo) MarkImported(ctx context.Context, id int64, listingID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok || c.Status != domain.CandidateStatusApproved {
		return domain.ErrInvalidCandidateState
	}
	c.Status = domain.CandidateStatusImported
	c.ImportedListingID = &listingID
	c.ImportedAt = &at
	return nil
}

type fakeSyncRunRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*domain.SyncRun
}

func newFakeSyncRunRepo() *fakeSyncRunRepo {
	return &fakeSyncRunRepo{runs: make(map[uuid.UUID]*domain.SyncRun)}
}

func (f *fakeSyncRunRepo) Create(ctx context.Context, r *domain.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.CreatedAt = time.Now()
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeSyncRunRepo) Update(ctx context.Context, r *domain.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.runs[r.ID]; !ok {
		return domain.ErrSyncNotRunning
	}
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeSyncRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SyncRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, domain.ErrSyncNotRunning
	}
	cp := *r
	return &cp, nil
}

func (f *fakeSyncRunRepo) List(ctx context.Context, filter domain.SyncRunFilter) ([]domain.SyncRun, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SyncRun
	for _, r := range f.runs {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

type fakeProvinceRepo struct {
	provinces []domain.Province
	err       error
}

func (f *fakeProvinceRepo) All(ctx context.Context) ([]domain.Province, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.provinces, nil
}

type fakeAIClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(ctx context.Context, event string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

var errStore = errors.New("store unavailable")

func f64(v float64) *float64 { return &v }
