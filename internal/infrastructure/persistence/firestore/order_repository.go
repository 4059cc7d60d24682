package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

type orderItemDoc struct {
	ProductID string `firestore:"productId,omitempty"`
	Name      string `firestore:"name"`
	Quantity  int    `firestore:"quantity"`
	Price     string `firestore:"price"`
	Discount  string `firestore:"discount"`
}

type orderDoc struct {
	OwnerID    string         `firestore:"ownerId"`
	Items      []orderItemDoc `firestore:"items"`
	Status     string         `firestore:"status"`
	Total      string         `firestore:"total"`
	PaymentRef string         `firestore:"paymentRef,omitempty"`
	CreatedAt  time.Time      `firestore:"createdAt"`
	UpdatedAt  time.Time      `firestore:"updatedAt"`
}

// OrderRepository implements order.Repository on the orders collection.
// Amounts are stored as decimal strings.
type OrderRepository struct {
	handle *ClientHandle
}

func NewOrderRepository(handle *ClientHandle) *OrderRepository {
	return &OrderRepository{handle: handle}
}

func (r *OrderRepository) col(ctx context.Context) (*firestore.CollectionRef, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(OrdersCollection), nil
}

// Create writes the order document; an existing id is rejected
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	_, err = col.Doc(o.ID.String()).Create(ctx, toOrderDoc(o))
	return translateError(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := col.Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return fromOrderDoc(snap.Ref.ID, d)
}

// List returns orders newest first
func (r *OrderRepository) List(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}

	q := col.Query
	if owner, _ := filter.Filters["owner_id"].(string); owner != "" {
		q = q.Where("ownerId", "==", owner)
	}
	if st, _ := filter.Filters["status"].(string); st != "" {
		q = q.Where("status", "==", st)
	}
	q = paginate(q.OrderBy("createdAt", firestore.Desc), filter)

	it := q.Documents(ctx)
	defer it.Stop()

	orders := []order.Order{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d orderDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		o, err := fromOrderDoc(snap.Ref.ID, d)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	_, err = col.Doc(id.String()).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	return translateError(err)
}

func toOrderDoc(o *order.Order) orderDoc {
	items := make([]orderItemDoc, len(o.Items))
	for i, item := range o.Items {
		d := orderItemDoc{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.String(),
			Discount: item.Discount.String(),
		}
		if item.ProductID != nil {
			d.ProductID = item.ProductID.String()
		}
		items[i] = d
	}
	return orderDoc{
		OwnerID:    o.OwnerID,
		Items:      items,
		Status:     string(o.Status),
		Total:      o.Total.String(),
		PaymentRef: o.PaymentRef,
		CreatedAt:  o.CreatedAt.UTC(),
		UpdatedAt:  o.UpdatedAt.UTC(),
	}
}

func fromOrderDoc(id string, d orderDoc) (*order.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	total, err := parseDecimal(d.Total)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, len(d.Items))
	for i, di := range d.Items {
		price, err := parseDecimal(di.Price)
		if err != nil {
			return nil, err
		}
		discount, err := parseDecimal(di.Discount)
		if err != nil {
			return nil, err
		}
		item := order.Item{Name: di.Name, Quantity: di.Quantity, Price: price, Discount: discount}
		if di.ProductID != "" {
			pid, err := uuid.Parse(di.ProductID)
			if err != nil {
				return nil, err
			}
			item.ProductID = &pid
		}
		items[i] = item
	}

	return &order.Order{
		BaseEntity: shared.BaseEntity{ID: orderID, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		OwnerID:    d.OwnerID,
		Items:      items,
		Status:     order.Status(d.Status),
		Total:      total,
		PaymentRef: d.PaymentRef,
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func paginate(q firestore.Query, filter shared.Filter) firestore.Query {
	size := filter.PageSize
	if size <= 0 {
		size = shared.DefaultFilter().PageSize
	}
	if size > 200 {
		size = 200
	}
	if offset := filter.Offset(); offset > 0 {
		q = q.Offset(offset)
	}
	return q.Limit(size)
}
