package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"myfood/internal/domain"
	"myfood/internal/snapshot"
)

const businessesKind = "businesses"

// BusinessStore keeps businesses by id. byName holds the first business
// registered under each name; byOwner keeps creation order per owner.
type BusinessStore struct {
	store
	nextID  domain.BusinessID
	byID    map[domain.BusinessID]domain.Business
	byName  map[string]domain.BusinessID
	byOwner map[domain.UserID][]domain.BusinessID
}

var _ BusinessRepository = (*BusinessStore)(nil)

func NewBusinessStore(path string, log *slog.Logger) *BusinessStore {
	s := &BusinessStore{}
	s.init(businessesKind, path, log)
	s.clear()
	s.load()
	return s
}

func (s *BusinessStore) clear() {
	s.nextID = 1
	s.byID = make(map[domain.BusinessID]domain.Business)
	s.byName = make(map[string]domain.BusinessID)
	s.byOwner = make(map[domain.UserID][]domain.BusinessID)
}

func (s *BusinessStore) Create(ctx context.Context, b *domain.Business) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	b.ID = s.nextID
	s.nextID++
	s.index(*b)
	return nil
}

func (s *BusinessStore) index(b domain.Business) {
	s.byID[b.ID] = b
	if _, claimed := s.byName[b.Name]; !claimed {
		s.byName[b.Name] = b.ID
	}
	s.byOwner[b.OwnerID] = append(s.byOwner[b.OwnerID], b.ID)
}

func (s *BusinessStore) GetByID(ctx context.Context, id domain.BusinessID) (*domain.Business, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	b, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *BusinessStore) GetByName(ctx context.Context, name string) (*domain.Business, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	id, ok := s.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	b := s.byID[id]
	return &b, nil
}

func (s *BusinessStore) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.Business, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	ids := s.byOwner[owner]
	out := make([]domain.Business, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *BusinessStore) Save(ctx context.Context) {
	if !s.persistent() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.rlock(ctx)
	records := make([]domain.Business, 0, len(s.byID))
	for _, b := range s.byID {
		records = append(records, b)
	}
	next := int64(s.nextID)
	s.runlock(ctx)

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if err := snapshot.Write(s.path, businessesKind, next, records); err != nil {
		s.logSaveFailed(err)
		return
	}
	s.logSaved(len(records))
}

func (s *BusinessStore) Reset(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.clear()
	s.removeSnapshot()
}

func (s *BusinessStore) load() {
	if !s.persistent() {
		return
	}
	doc, err := snapshot.Read[domain.Business](s.path, businessesKind)
	if err == nil {
		err = s.restore(doc)
	}
	if s.loadFailed(err) {
		s.clear()
		return
	}
	s.logLoaded(len(s.byID), int64(s.nextID))
}

// restore replays records in id order, which is creation order, so the
// owner lists and name claims come out as they were before the save.
func (s *BusinessStore) restore(doc snapshot.Document[domain.Business]) error {
	s.clear()
	sort.Slice(doc.Records, func(i, j int) bool { return doc.Records[i].ID < doc.Records[j].ID })
	for _, b := range doc.Records {
		if b.ID < 1 || int64(b.ID) >= doc.NextID {
			return fmt.Errorf("business id %d outside [1, %d)", b.ID, doc.NextID)
		}
		if _, dup := s.byID[b.ID]; dup {
			return fmt.Errorf("duplicate business id %d", b.ID)
		}
		s.index(b)
	}
	s.nextID = domain.BusinessID(doc.NextID)
	return nil
}
