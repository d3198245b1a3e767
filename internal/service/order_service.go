package service

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"myfood/internal/domain"
	"myfood/internal/repository"
)

const (
	OrderAttrCustomer = "cliente"
	OrderAttrBusiness = "empresa"
	OrderAttrState    = "estado"
	OrderAttrProducts = "produtos"
	OrderAttrTotal    = "valor"
)

// OrderService handles customer orders. Orders reference products by id and
// read their current name and price whenever the order is inspected.
type OrderService struct {
	orders     repository.OrderRepository
	users      UserLookup
	businesses BusinessLookup
	products   ProductLookup
}

func NewOrderService(orders repository.OrderRepository, users UserLookup, businesses BusinessLookup, products ProductLookup) *OrderService {
	return &OrderService{orders: orders, users: users, businesses: businesses, products: products}
}

// Create opens an order. A customer may hold one open order per business.
func (s *OrderService) Create(ctx context.Context, customerID domain.UserID, businessID domain.BusinessID) (domain.OrderNumber, error) {
	if u, ok := s.users.Lookup(ctx, customerID); ok && u.IsOwner() {
		return 0, domain.Validation("business owner cannot place an order")
	}

	o := domain.Order{CustomerID: customerID, BusinessID: businessID, State: domain.OrderStateOpen}
	err := s.orders.WithTransaction(ctx, func(ctx context.Context) error {
		mine, err := s.orders.ListByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		for _, other := range mine {
			if other.BusinessID == businessID && other.IsOpen() {
				return domain.Conflict("two open orders for the same business are not allowed")
			}
		}
		return s.orders.Create(ctx, &o)
	})
	if err != nil {
		return 0, err
	}
	return o.Number, nil
}

func (s *OrderService) AddProduct(ctx context.Context, number domain.OrderNumber, productID domain.ProductID) error {
	return s.orders.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByNumber(ctx, number)
		if err != nil {
			return domain.NotFound("no open order")
		}
		if !o.IsOpen() {
			return domain.State("cannot add products to a closed order")
		}
		p, ok := s.products.Lookup(ctx, productID)
		if !ok {
			return domain.NotFound("product not found")
		}
		if p.BusinessID != o.BusinessID {
			return domain.Validation("product does not belong to this business")
		}
		o.Products = append(o.Products, p.ID)
		return s.orders.Update(ctx, o)
	})
}

func (s *OrderService) Attribute(ctx context.Context, number domain.OrderNumber, attr string) (string, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return "", domain.NotFound("order not found")
	}
	if blank(attr) {
		return "", domain.Validation("invalid attribute")
	}

	switch attr {
	case OrderAttrCustomer:
		u, ok := s.users.Lookup(ctx, o.CustomerID)
		if !ok {
			return "", domain.NotFound("customer not registered")
		}
		return u.Name, nil
	case OrderAttrBusiness:
		b, ok := s.businesses.Lookup(ctx, o.BusinessID)
		if !ok {
			return "", domain.NotFound("business not registered")
		}
		return b.Name, nil
	case OrderAttrState:
		return string(o.State), nil
	case OrderAttrProducts:
		products, err := s.resolve(ctx, o.Products)
		if err != nil {
			return "", err
		}
		names := make([]string, 0, len(products))
		for _, p := range products {
			names = append(names, p.Name)
		}
		return formatList(names), nil
	case OrderAttrTotal:
		products, err := s.resolve(ctx, o.Products)
		if err != nil {
			return "", err
		}
		total := decimal.Zero
		for _, p := range products {
			total = total.Add(p.Price)
		}
		return formatMoney(total), nil
	default:
		return "", domain.Validation("attribute does not exist")
	}
}

// resolve reads the current state of every referenced product.
func (s *OrderService) resolve(ctx context.Context, ids []domain.ProductID) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := s.products.Lookup(ctx, id)
		if !ok {
			return nil, domain.NotFound("product %d not found", id)
		}
		out = append(out, p)
	}
	return out, nil
}

// Close moves the order to preparing. Closing twice is allowed.
func (s *OrderService) Close(ctx context.Context, number domain.OrderNumber) error {
	return s.orders.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByNumber(ctx, number)
		if err != nil {
			return domain.NotFound("order not found")
		}
		o.State = domain.OrderStatePreparing
		return s.orders.Update(ctx, o)
	})
}

// RemoveProduct drops the first product called name, leaving later duplicates.
func (s *OrderService) RemoveProduct(ctx context.Context, number domain.OrderNumber, name string) error {
	return s.orders.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByNumber(ctx, number)
		if err != nil {
			return domain.NotFound("order not found")
		}
		if blank(name) {
			return domain.Validation("invalid product")
		}
		if !o.IsOpen() {
			return domain.State("cannot remove products from a closed order")
		}
		i := slices.IndexFunc(o.Products, func(id domain.ProductID) bool {
			p, ok := s.products.Lookup(ctx, id)
			return ok && p.Name == name
		})
		if i < 0 {
			return domain.NotFound("product not found")
		}
		o.Products = slices.Delete(o.Products, i, i+1)
		return s.orders.Update(ctx, o)
	})
}

// ResolveIndex picks the index-th order of the customer at the business,
// in creation order.
func (s *OrderService) ResolveIndex(ctx context.Context, customerID domain.UserID, businessID domain.BusinessID, index int) (domain.OrderNumber, error) {
	mine, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}
	var matches []domain.OrderNumber
	for _, o := range mine {
		if o.BusinessID == businessID {
			matches = append(matches, o.Number)
		}
	}
	if index < 0 || index >= len(matches) {
		return 0, domain.Validation("invalid index or order does not exist")
	}
	return matches[index], nil
}

func (s *OrderService) Reset(ctx context.Context) { s.orders.Reset(ctx) }
func (s *OrderService) Save(ctx context.Context)  { s.orders.Save(ctx) }
