package service

import (
	"context"

	"github.com/shopspring/decimal"

	"myfood/internal/domain"
	"myfood/internal/repository"
)

const (
	ProductAttrPrice    = "valor"
	ProductAttrCategory = "categoria"
	ProductAttrBusiness = "empresa"
)

// ProductService manages business menus
type ProductService struct {
	repo       repository.ProductRepository
	businesses BusinessLookup
}

func NewProductService(repo repository.ProductRepository, businesses BusinessLookup) *ProductService {
	return &ProductService{repo: repo, businesses: businesses}
}

var _ ProductLookup = (*ProductService)(nil)

func validateProduct(name string, price decimal.Decimal, category string) error {
	switch {
	case blank(name):
		return domain.Validation("invalid name")
	case blank(category):
		return domain.Validation("invalid category")
	case price.IsNegative():
		return domain.Validation("invalid price")
	}
	return nil
}

// Create adds a product to a business menu. The business id is taken as
// given; only List requires the business to exist.
func (s *ProductService) Create(ctx context.Context, businessID domain.BusinessID, name string, price decimal.Decimal, category string) (domain.ProductID, error) {
	if err := validateProduct(name, price, category); err != nil {
		return 0, err
	}
	p := domain.Product{BusinessID: businessID, Name: name, Price: price, Category: category}
	err := s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		if _, found, err := s.findByName(ctx, businessID, name); err != nil {
			return err
		} else if found {
			return domain.Conflict("a product with this name already exists for this business")
		}
		return s.repo.Create(ctx, &p)
	})
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// Edit overwrites name, price and category. Nothing changes on failure.
func (s *ProductService) Edit(ctx context.Context, id domain.ProductID, name string, price decimal.Decimal, category string) error {
	return s.repo.WithTransaction(ctx, func(ctx context.Context) error {
		cur, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return domain.NotFound("product not registered")
		}
		if err := validateProduct(name, price, category); err != nil {
			return err
		}
		if other, found, err := s.findByName(ctx, cur.BusinessID, name); err != nil {
			return err
		} else if found && other.ID != id {
			return domain.Conflict("a product with this name already exists for this business")
		}
		cur.Name = name
		cur.Price = price
		cur.Category = category
		return s.repo.Update(ctx, cur)
	})
}

func (s *ProductService) findByName(ctx context.Context, businessID domain.BusinessID, name string) (domain.Product, bool, error) {
	list, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		return domain.Product{}, false, err
	}
	for _, p := range list {
		if p.Name == name {
			return p, true, nil
		}
	}
	return domain.Product{}, false, nil
}

// Attribute reads an attribute of the product called name on the business menu.
func (s *ProductService) Attribute(ctx context.Context, name string, businessID domain.BusinessID, attr string) (string, error) {
	p, found, err := s.findByName(ctx, businessID, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.NotFound("product not found")
	}
	switch attr {
	case ProductAttrPrice:
		return formatMoney(p.Price), nil
	case ProductAttrCategory:
		return p.Category, nil
	case ProductAttrBusiness:
		b, ok := s.businesses.Lookup(ctx, p.BusinessID)
		if !ok {
			return "", domain.NotFound("business not found")
		}
		return b.Name, nil
	default:
		return "", domain.Validation("attribute does not exist")
	}
}

// List renders the business menu as {[name1, name2]} in creation order.
func (s *ProductService) List(ctx context.Context, businessID domain.BusinessID) (string, error) {
	if _, ok := s.businesses.Lookup(ctx, businessID); !ok {
		return "", domain.NotFound("business not found")
	}
	list, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	return formatList(names), nil
}

func (s *ProductService) Lookup(ctx context.Context, id domain.ProductID) (domain.Product, bool) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, false
	}
	return *p, true
}

func (s *ProductService) Reset(ctx context.Context) { s.repo.Reset(ctx) }
func (s *ProductService) Save(ctx context.Context)  { s.repo.Save(ctx) }
