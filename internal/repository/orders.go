package repository

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"myfood/internal/domain"
	"myfood/internal/snapshot"
)

const ordersKind = "orders"

// OrderStore keeps orders by number and each customer's orders in creation order
type OrderStore struct {
	store
	nextNumber domain.OrderNumber
	byNumber   map[domain.OrderNumber]domain.Order
	byCustomer map[domain.UserID][]domain.OrderNumber
}

var _ OrderRepository = (*OrderStore)(nil)

func NewOrderStore(path string, log *slog.Logger) *OrderStore {
	s := &OrderStore{}
	s.init(ordersKind, path, log)
	s.clear()
	s.load()
	return s
}

func (s *OrderStore) clear() {
	s.nextNumber = 1
	s.byNumber = make(map[domain.OrderNumber]domain.Order)
	s.byCustomer = make(map[domain.UserID][]domain.OrderNumber)
}

func copyOrder(o domain.Order) domain.Order {
	o.Products = slices.Clone(o.Products)
	if o.Products == nil {
		o.Products = []domain.ProductID{}
	}
	return o
}

func (s *OrderStore) Create(ctx context.Context, o *domain.Order) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	o.Number = s.nextNumber
	s.nextNumber++
	s.byNumber[o.Number] = copyOrder(*o)
	s.byCustomer[o.CustomerID] = append(s.byCustomer[o.CustomerID], o.Number)
	return nil
}

func (s *OrderStore) GetByNumber(ctx context.Context, n domain.OrderNumber) (*domain.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	o, ok := s.byNumber[n]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

// Update replaces state and products. Customer and business are fixed at creation.
func (s *OrderStore) Update(ctx context.Context, o *domain.Order) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	cur, ok := s.byNumber[o.Number]
	if !ok {
		return ErrNotFound
	}
	cur.State = o.State
	cur.Products = o.Products
	s.byNumber[o.Number] = copyOrder(cur)
	return nil
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customer domain.UserID) ([]domain.Order, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	numbers := s.byCustomer[customer]
	out := make([]domain.Order, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, copyOrder(s.byNumber[n]))
	}
	return out, nil
}

func (s *OrderStore) Save(ctx context.Context) {
	if !s.persistent() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.rlock(ctx)
	records := make([]domain.Order, 0, len(s.byNumber))
	for _, o := range s.byNumber {
		records = append(records, copyOrder(o))
	}
	next := int64(s.nextNumber)
	s.runlock(ctx)

	sort.Slice(records, func(i, j int) bool { return records[i].Number < records[j].Number })
	if err := snapshot.Write(s.path, ordersKind, next, records); err != nil {
		s.logSaveFailed(err)
		return
	}
	s.logSaved(len(records))
}

func (s *OrderStore) Reset(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.clear()
	s.removeSnapshot()
}

func (s *OrderStore) load() {
	if !s.persistent() {
		return
	}
	doc, err := snapshot.Read[domain.Order](s.path, ordersKind)
	if err == nil {
		err = s.restore(doc)
	}
	if s.loadFailed(err) {
		s.clear()
		return
	}
	s.logLoaded(len(s.byNumber), int64(s.nextNumber))
}

func (s *OrderStore) restore(doc snapshot.Document[domain.Order]) error {
	s.clear()
	sort.Slice(doc.Records, func(i, j int) bool { return doc.Records[i].Number < doc.Records[j].Number })
	for _, o := range doc.Records {
		if o.Number < 1 || int64(o.Number) >= doc.NextID {
			return fmt.Errorf("order number %d outside [1, %d)", o.Number, doc.NextID)
		}
		if _, dup := s.byNumber[o.Number]; dup {
			return fmt.Errorf("duplicate order number %d", o.Number)
		}
		if o.State != domain.OrderStateOpen && o.State != domain.OrderStatePreparing {
			return fmt.Errorf("order %d has unknown state %q", o.Number, o.State)
		}
		s.byNumber[o.Number] = copyOrder(o)
		s.byCustomer[o.CustomerID] = append(s.byCustomer[o.CustomerID], o.Number)
	}
	s.nextNumber = domain.OrderNumber(doc.NextID)
	return nil
}
