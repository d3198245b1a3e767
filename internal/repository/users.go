package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"myfood/internal/domain"
	"myfood/internal/snapshot"
)

const usersKind = "users"

// UserStore keeps users by id with an email index
type UserStore struct {
	store
	nextID  domain.UserID
	byID    map[domain.UserID]domain.User
	byEmail map[string]domain.UserID
}

var _ UserRepository = (*UserStore)(nil)

// NewUserStore creates the store and loads the snapshot at path, if any.
// An empty path keeps the store in memory only.
func NewUserStore(path string, log *slog.Logger) *UserStore {
	s := &UserStore{}
	s.init(usersKind, path, log)
	s.clear()
	s.load()
	return s
}

func (s *UserStore) clear() {
	s.nextID = 1
	s.byID = make(map[domain.UserID]domain.User)
	s.byEmail = make(map[string]domain.UserID)
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	u.ID = s.nextID
	s.nextID++
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *UserStore) Save(ctx context.Context) {
	if !s.persistent() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.rlock(ctx)
	records := make([]domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		records = append(records, u)
	}
	next := int64(s.nextID)
	s.runlock(ctx)

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if err := snapshot.Write(s.path, usersKind, next, records); err != nil {
		s.logSaveFailed(err)
		return
	}
	s.logSaved(len(records))
}

func (s *UserStore) Reset(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.clear()
	s.removeSnapshot()
}

func (s *UserStore) load() {
	if !s.persistent() {
		return
	}
	doc, err := snapshot.Read[domain.User](s.path, usersKind)
	if err == nil {
		err = s.restore(doc)
	}
	if s.loadFailed(err) {
		s.clear()
		return
	}
	s.logLoaded(len(s.byID), int64(s.nextID))
}

func (s *UserStore) restore(doc snapshot.Document[domain.User]) error {
	s.clear()
	sort.Slice(doc.Records, func(i, j int) bool { return doc.Records[i].ID < doc.Records[j].ID })
	for _, u := range doc.Records {
		if u.ID < 1 || int64(u.ID) >= doc.NextID {
			return fmt.Errorf("user id %d outside [1, %d)", u.ID, doc.NextID)
		}
		if _, dup := s.byID[u.ID]; dup {
			return fmt.Errorf("duplicate user id %d", u.ID)
		}
		if _, dup := s.byEmail[u.Email]; dup {
			return fmt.Errorf("duplicate email %q", u.Email)
		}
		if u.Kind != domain.UserKindCustomer && u.Kind != domain.UserKindOwner {
			return fmt.Errorf("user %d has unknown kind %q", u.ID, u.Kind)
		}
		s.byID[u.ID] = u
		s.byEmail[u.Email] = u.ID
	}
	s.nextID = domain.UserID(doc.NextID)
	return nil
}
