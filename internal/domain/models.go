package domain

import (
	"github.com/shopspring/decimal"
)

// Identifier types. Registries refer to each other's entities only through these.
type (
	UserID      int64
	BusinessID  int64
	ProductID   int64
	OrderNumber int64
)

// UserKind tags the user variant
type UserKind string

const (
	UserKindCustomer UserKind = "customer"
	UserKindOwner    UserKind = "owner"
)

// TaxIDLength is the fixed length of an owner's cpf, punctuation included.
const TaxIDLength = 14

// User is a customer or a business owner. TaxID is set for owners only.
type User struct {
	ID       UserID   `json:"id" yaml:"id"`
	Kind     UserKind `json:"kind" yaml:"kind"`
	Name     string   `json:"name" yaml:"name"`
	Email    string   `json:"email" yaml:"email"`
	Password string   `json:"-" yaml:"password"`
	Address  string   `json:"address" yaml:"address"`
	TaxID    string   `json:"cpf,omitempty" yaml:"cpf,omitempty"`
}

func (u User) IsOwner() bool    { return u.Kind == UserKindOwner }
func (u User) IsCustomer() bool { return u.Kind == UserKindCustomer }

// Business is a restaurant (or any other kind of shop) run by an owner
type Business struct {
	ID      BusinessID `json:"id" yaml:"id"`
	Kind    string     `json:"kind" yaml:"kind"`
	OwnerID UserID     `json:"owner_id" yaml:"owner_id"`
	Name    string     `json:"name" yaml:"name"`
	Address string     `json:"address" yaml:"address"`
	Cuisine string     `json:"cuisine" yaml:"cuisine"`
}

// SameNameAndAddress reports whether b is registered under name at address.
func (b Business) SameNameAndAddress(name, address string) bool {
	return b.Name == name && b.Address == address
}

// Product is an item on a business menu
type Product struct {
	ID         ProductID       `json:"id"`
	BusinessID BusinessID      `json:"business_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Category   string          `json:"category"`
}

// OrderState is the order lifecycle state
type OrderState string

const (
	OrderStateOpen      OrderState = "aberto"
	OrderStatePreparing OrderState = "preparando"
)

// Order holds product references in insertion order. Duplicates are allowed.
type Order struct {
	Number     OrderNumber `json:"number" yaml:"number"`
	CustomerID UserID      `json:"customer_id" yaml:"customer_id"`
	BusinessID BusinessID  `json:"business_id" yaml:"business_id"`
	State      OrderState  `json:"state" yaml:"state"`
	Products   []ProductID `json:"products" yaml:"products"`
}

func (o Order) IsOpen() bool { return o.State == OrderStateOpen }
