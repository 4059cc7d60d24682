package firestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/domain/catalog"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

type productDoc struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Category    string    `firestore:"category"`
	Price       string    `firestore:"price"`
	Discount    string    `firestore:"discount"`
	Stock       int       `firestore:"stock"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	SellerID    string    `firestore:"sellerId,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// ProductRepository implements catalog.ProductRepository. Firestore has no
// substring queries, so Search is matched after the category query.
type ProductRepository struct {
	handle *ClientHandle
}

func NewProductRepository(handle *ClientHandle) *ProductRepository {
	return &ProductRepository{handle: handle}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := client.Collection(ProductsCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return decodeProduct(snap)
}

func (r *ProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	all, err := r.matching(ctx, filter)
	if err != nil {
		return nil, err
	}

	size := filter.PageSize
	if size <= 0 {
		size = shared.DefaultFilter().PageSize
	}
	offset := filter.Offset()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *ProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	all, err := r.matching(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// Save creates or replaces the product document
func (r *ProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(ProductsCollection).Doc(p.ID.String()).Set(ctx, toProductDoc(p))
	return translateError(err)
}

func (r *ProductRepository) matching(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}

	q := client.Collection(ProductsCollection).OrderBy("createdAt", firestore.Desc)
	if category, _ := filter.Filters["category"].(string); category != "" {
		q = client.Collection(ProductsCollection).Where("category", "==", category).OrderBy("createdAt", firestore.Desc)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	products := []catalog.Product{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := decodeProduct(snap)
		if err != nil {
			return nil, err
		}
		if matchesSearch(p, search) {
			products = append(products, *p)
		}
	}
	return products, nil
}

func matchesSearch(p *catalog.Product, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

func decodeProduct(snap *firestore.DocumentSnapshot) (*catalog.Product, error) {
	var d productDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return fromProductDoc(snap.Ref.ID, d)
}

func fromProductDoc(id string, d productDoc) (*catalog.Product, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	price, err := parseDecimal(d.Price)
	if err != nil {
		return nil, err
	}
	discount, err := parseDecimal(d.Discount)
	if err != nil {
		return nil, err
	}
	return &catalog.Product{
		BaseEntity:  shared.BaseEntity{ID: pid, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       price,
		Discount:    discount,
		Stock:       d.Stock,
		ImageURL:    d.ImageURL,
		SellerID:    d.SellerID,
	}, nil
}

func toProductDoc(p *catalog.Product) productDoc {
	return productDoc{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.String(),
		Discount:    p.Discount.String(),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		SellerID:    p.SellerID,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}
