package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"myfood/internal/domain"
	"myfood/internal/repository"
)

// User attribute names. The Portuguese spellings are accepted as aliases.
const (
	UserAttrName     = "name"
	UserAttrEmail    = "email"
	UserAttrPassword = "password"
	UserAttrAddress  = "address"
	UserAttrTaxID    = "cpf"
)

var userAttrAliases = map[string]string{
	"nome":     UserAttrName,
	"senha":    UserAttrPassword,
	"endereco": UserAttrAddress,
}

// UserService registers customers and owners and authenticates them
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

var _ UserLookup = (*UserService)(nil)

func (s *UserService) RegisterCustomer(ctx context.Context, name, email, password, address string) (domain.UserID, error) {
	if err := validateCommon(name, email, password, address); err != nil {
		return 0, err
	}
	return s.register(ctx, domain.User{
		Kind:     domain.UserKindCustomer,
		Name:     name,
		Email:    email,
		Password: password,
		Address:  address,
	})
}

// RegisterOwner checks the tax id before email uniqueness, so a duplicate
// email with a bad cpf reports the cpf.
func (s *UserService) RegisterOwner(ctx context.Context, name, email, password, address, taxID string) (domain.UserID, error) {
	if err := validateCommon(name, email, password, address); err != nil {
		return 0, err
	}
	if blank(taxID) || utf8.RuneCountInString(taxID) != domain.TaxIDLength {
		return 0, domain.Validation("invalid cpf")
	}
	return s.register(ctx, domain.User{
		Kind:     domain.UserKindOwner,
		Name:     name,
		Email:    email,
		Password: password,
		Address:  address,
		TaxID:    taxID,
	})
}

func (s *UserService) register(ctx context.Context, u domain.User) (domain.UserID, error) {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.repo.GetByEmail(ctx, u.Email)
		switch {
		case err == nil:
			return domain.Conflict("an account with this email already exists")
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return s.repo.Create(ctx, &u)
	})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func validateCommon(name, email, password, address string) error {
	switch {
	case blank(name):
		return domain.Validation("invalid name")
	case blank(email):
		return domain.Validation("invalid email")
	case blank(password):
		return domain.Validation("invalid password")
	case blank(address):
		return domain.Validation("invalid address")
	case !strings.Contains(email, "@"):
		return domain.Validation("invalid email")
	}
	return nil
}

// Login returns the same error whatever part of the credentials is wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.UserID, error) {
	if blank(email) || blank(password) {
		return 0, domain.ErrInvalidLogin
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, domain.ErrInvalidLogin
		}
		return 0, err
	}
	if u.Password != password {
		return 0, domain.ErrInvalidLogin
	}
	return u.ID, nil
}

func (s *UserService) Attribute(ctx context.Context, id domain.UserID, attr string) (string, error) {
	u, ok := s.Lookup(ctx, id)
	if !ok {
		return "", domain.NotFound("user not registered")
	}
	if alias, ok := userAttrAliases[attr]; ok {
		attr = alias
	}
	switch attr {
	case UserAttrName:
		return u.Name, nil
	case UserAttrEmail:
		return u.Email, nil
	case UserAttrPassword:
		return u.Password, nil
	case UserAttrAddress:
		return u.Address, nil
	case UserAttrTaxID:
		switch u.Kind {
		case domain.UserKindOwner:
			return u.TaxID, nil
		default:
			return "", domain.Attribute("attribute 'cpf' does not exist for this user")
		}
	default:
		return "", domain.Attribute("invalid attribute")
	}
}

// Lookup is the helper other registries use to resolve a user.
func (s *UserService) Lookup(ctx context.Context, id domain.UserID) (domain.User, bool) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, false
	}
	return *u, true
}

func (s *UserService) Reset(ctx context.Context) { s.repo.Reset(ctx) }
func (s *UserService) Save(ctx context.Context)  { s.repo.Save(ctx) }
