package service

import (
	"context"
	"errors"

	"myfood/internal/domain"
	"myfood/internal/repository"
)

const (
	BusinessAttrName    = "nome"
	BusinessAttrAddress = "endereco"
	BusinessAttrCuisine = "tipoCozinha"
	BusinessAttrOwner   = "dono"
)

// BusinessService registers businesses for owners
type BusinessService struct {
	repo  repository.BusinessRepository
	users UserLookup
}

func NewBusinessService(repo repository.BusinessRepository, users UserLookup) *BusinessService {
	return &BusinessService{repo: repo, users: users}
}

var _ BusinessLookup = (*BusinessService)(nil)

// Create registers a business. An owner may reuse a name at a different
// address; a name already used by another owner is rejected.
func (s *BusinessService) Create(ctx context.Context, kind string, ownerID domain.UserID, name, address, cuisine string) (domain.BusinessID, error) {
	if !s.isOwner(ctx, ownerID) {
		return 0, domain.Validation("user cannot create a business")
	}

	b := domain.Business{Kind: kind, OwnerID: ownerID, Name: name, Address: address, Cuisine: cuisine}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		mine, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		for _, other := range mine {
			if other.SameNameAndAddress(name, address) {
				return domain.Conflict("two businesses with the same name and address are not allowed")
			}
		}

		holder, err := s.repo.GetByName(ctx, name)
		switch {
		case err == nil && holder.OwnerID != ownerID:
			return domain.Conflict("a business with this name already exists")
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return s.repo.Create(ctx, &b)
	})
	if err != nil {
		return 0, err
	}
	return b.ID, nil
}

func (s *BusinessService) isOwner(ctx context.Context, id domain.UserID) bool {
	u, ok := s.users.Lookup(ctx, id)
	return ok && u.IsOwner()
}

// ListForOwner renders the owner's businesses as {[[name, address], ...]}.
func (s *BusinessService) ListForOwner(ctx context.Context, ownerID domain.UserID) (string, error) {
	if !s.isOwner(ctx, ownerID) {
		return "", domain.Validation("user cannot own a business")
	}
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return "", err
	}
	items := make([]string, 0, len(list))
	for _, b := range list {
		items = append(items, "["+b.Name+", "+b.Address+"]")
	}
	return formatList(items), nil
}

func (s *BusinessService) Attribute(ctx context.Context, id domain.BusinessID, attr string) (string, error) {
	b, ok := s.Lookup(ctx, id)
	if !ok {
		return "", domain.NotFound("business not registered")
	}
	switch attr {
	case BusinessAttrName:
		return b.Name, nil
	case BusinessAttrAddress:
		return b.Address, nil
	case BusinessAttrCuisine:
		return b.Cuisine, nil
	case BusinessAttrOwner:
		owner, ok := s.users.Lookup(ctx, b.OwnerID)
		if !ok {
			return "", domain.NotFound("owner not registered")
		}
		return owner.Name, nil
	default:
		return "", domain.Validation("invalid attribute")
	}
}

// ResolveIndex picks the index-th business of the owner named name, in
// creation order. A missing name and an index past the matches fail with
// different kinds.
func (s *BusinessService) ResolveIndex(ctx context.Context, ownerID domain.UserID, name string, index int) (domain.BusinessID, error) {
	if blank(name) {
		return 0, domain.Validation("invalid name")
	}
	if index < 0 {
		return 0, domain.Index("invalid index")
	}
	list, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	var matches []domain.BusinessID
	for _, b := range list {
		if b.Name == name {
			matches = append(matches, b.ID)
		}
	}
	if len(matches) == 0 {
		return 0, domain.NotFound("no business with this name")
	}
	if index >= len(matches) {
		return 0, domain.Index("index larger than expected")
	}
	return matches[index], nil
}

func (s *BusinessService) Lookup(ctx context.Context, id domain.BusinessID) (domain.Business, bool) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Business{}, false
	}
	return *b, true
}

func (s *BusinessService) Reset(ctx context.Context) { s.repo.Reset(ctx) }
func (s *BusinessService) Save(ctx context.Context)  { s.repo.Save(ctx) }
