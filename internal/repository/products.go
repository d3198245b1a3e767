package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"myfood/internal/domain"
	"myfood/internal/snapshot"
)

const productsKind = "products"

// ProductStore keeps products by id plus each business's menu in creation order
type ProductStore struct {
	store
	nextID     domain.ProductID
	byID       map[domain.ProductID]domain.Product
	byBusiness map[domain.BusinessID][]domain.ProductID
}

var _ ProductRepository = (*ProductStore)(nil)

// productRecord is the snapshot form of a product; prices are kept as
// decimal strings so they survive the round trip exactly.
type productRecord struct {
	ID         domain.ProductID  `yaml:"id"`
	BusinessID domain.BusinessID `yaml:"business_id"`
	Name       string            `yaml:"name"`
	Price      string            `yaml:"price"`
	Category   string            `yaml:"category"`
}

func NewProductStore(path string, log *slog.Logger) *ProductStore {
	s := &ProductStore{}
	s.init(productsKind, path, log)
	s.clear()
	s.load()
	return s
}

func (s *ProductStore) clear() {
	s.nextID = 1
	s.byID = make(map[domain.ProductID]domain.Product)
	s.byBusiness = make(map[domain.BusinessID][]domain.ProductID)
}

func (s *ProductStore) Create(ctx context.Context, p *domain.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	p.ID = s.nextID
	s.nextID++
	s.byID[p.ID] = *p
	s.byBusiness[p.BusinessID] = append(s.byBusiness[p.BusinessID], p.ID)
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Update overwrites the mutable fields. The business a product belongs to never changes.
func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	cur, ok := s.byID[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = p.Name
	cur.Price = p.Price
	cur.Category = p.Category
	s.byID[p.ID] = cur
	*p = cur
	return nil
}

func (s *ProductStore) ListByBusiness(ctx context.Context, business domain.BusinessID) ([]domain.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	ids := s.byBusiness[business]
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *ProductStore) Save(ctx context.Context) {
	if !s.persistent() {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.rlock(ctx)
	records := make([]productRecord, 0, len(s.byID))
	for _, p := range s.byID {
		records = append(records, productRecord{
			ID:         p.ID,
			BusinessID: p.BusinessID,
			Name:       p.Name,
			Price:      p.Price.String(),
			Category:   p.Category,
		})
	}
	next := int64(s.nextID)
	s.runlock(ctx)

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	if err := snapshot.Write(s.path, productsKind, next, records); err != nil {
		s.logSaveFailed(err)
		return
	}
	s.logSaved(len(records))
}

func (s *ProductStore) Reset(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.wlock(ctx)
	defer s.wunlock(ctx)
	s.clear()
	s.removeSnapshot()
}

func (s *ProductStore) load() {
	if !s.persistent() {
		return
	}
	doc, err := snapshot.Read[productRecord](s.path, productsKind)
	if err == nil {
		err = s.restore(doc)
	}
	if s.loadFailed(err) {
		s.clear()
		return
	}
	s.logLoaded(len(s.byID), int64(s.nextID))
}

func (s *ProductStore) restore(doc snapshot.Document[productRecord]) error {
	s.clear()
	sort.Slice(doc.Records, func(i, j int) bool { return doc.Records[i].ID < doc.Records[j].ID })
	for _, r := range doc.Records {
		if r.ID < 1 || int64(r.ID) >= doc.NextID {
			return fmt.Errorf("product id %d outside [1, %d)", r.ID, doc.NextID)
		}
		if _, dup := s.byID[r.ID]; dup {
			return fmt.Errorf("duplicate product id %d", r.ID)
		}
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return fmt.Errorf("product %d price: %w", r.ID, err)
		}
		s.byID[r.ID] = domain.Product{
			ID:         r.ID,
			BusinessID: r.BusinessID,
			Name:       r.Name,
			Price:      price,
			Category:   r.Category,
		}
		s.byBusiness[r.BusinessID] = append(s.byBusiness[r.BusinessID], r.ID)
	}
	s.nextID = domain.ProductID(doc.NextID)
	return nil
}
