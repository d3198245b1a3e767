package repository

import (
	"context"
	"errors"

	"myfood/internal/domain"
)

// ErrNotFound is returned when an entity does not exist
var ErrNotFound = errors.New("not found")

// UserRepository stores users indexed by id and email
type UserRepository interface {
	TxManager
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Snapshotter
}

// BusinessRepository stores businesses indexed by id, owner and claimed name
type BusinessRepository interface {
	TxManager
	Create(ctx context.Context, b *domain.Business) error
	GetByID(ctx context.Context, id domain.BusinessID) (*domain.Business, error)
	// GetByName returns the business that first claimed name.
	GetByName(ctx context.Context, name string) (*domain.Business, error)
	// ListByOwner returns the owner's businesses in creation order.
	ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.Business, error)
	Snapshotter
}

// ProductRepository stores products indexed by id and business
type ProductRepository interface {
	TxManager
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	// ListByBusiness returns the business's products in creation order.
	ListByBusiness(ctx context.Context, business domain.BusinessID) ([]domain.Product, error)
	Snapshotter
}

// OrderRepository stores orders indexed by number and customer
type OrderRepository interface {
	TxManager
	Create(ctx context.Context, o *domain.Order) error
	GetByNumber(ctx context.Context, n domain.OrderNumber) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	// ListByCustomer returns the customer's orders in creation order.
	ListByCustomer(ctx context.Context, customer domain.UserID) ([]domain.Order, error)
	Snapshotter
}

// TxManager runs fn with the store's write lock held.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Snapshotter persists a store. Failures are logged, never returned.
type Snapshotter interface {
	Save(ctx context.Context)
	Reset(ctx context.Context)
}
