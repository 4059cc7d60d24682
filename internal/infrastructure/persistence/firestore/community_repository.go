package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/domain/community"
	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

type postDoc struct {
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	Category  string    `firestore:"category"`
	Author    string    `firestore:"author"`
	AuthorID  string    `firestore:"authorId,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// PostRepository implements community.PostRepository on the posts collection
type PostRepository struct {
	handle *ClientHandle
}

func NewPostRepository(handle *ClientHandle) *PostRepository {
	return &PostRepository{handle: handle}
}

func (r *PostRepository) Create(ctx context.Context, post *community.Post) error {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return err
	}
	d := postDoc{
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Author:    post.Author,
		CreatedAt: post.CreatedAt.UTC(),
		UpdatedAt: post.UpdatedAt.UTC(),
	}
	if post.AuthorID != nil {
		d.AuthorID = post.AuthorID.String()
	}
	_, err = client.Collection(PostsCollection).Doc(post.ID.String()).Create(ctx, d)
	return translateError(err)
}

// List returns posts newest first
func (r *PostRepository) List(ctx context.Context, filter shared.Filter) ([]community.Post, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}

	q := client.Collection(PostsCollection).Query
	if category, _ := filter.Filters["category"].(string); category != "" {
		q = q.Where("category", "==", category)
	}
	it := paginate(q.OrderBy("createdAt", firestore.Desc), filter).Documents(ctx)
	defer it.Stop()

	posts := []community.Post{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d postDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		p, err := fromPostDoc(snap.Ref.ID, d)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

func fromPostDoc(id string, d postDoc) (*community.Post, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	post := &community.Post{
		BaseEntity: shared.BaseEntity{ID: pid, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Title:      d.Title,
		Content:    d.Content,
		Category:   d.Category,
		Author:     d.Author,
	}
	if d.AuthorID != "" {
		if aid, err := uuid.Parse(d.AuthorID); err == nil {
			post.AuthorID = &aid
		}
	}
	return post, nil
}

type addressDoc struct {
	UserID     string    `firestore:"userId"`
	FullName   string    `firestore:"fullName"`
	Line1      string    `firestore:"line1"`
	Line2      string    `firestore:"line2,omitempty"`
	City       string    `firestore:"city"`
	State      string    `firestore:"state,omitempty"`
	PostalCode string    `firestore:"postalCode"`
	Country    string    `firestore:"country"`
	Phone      string    `firestore:"phone,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt"`
}

// AddressRepository implements customer.AddressRepository on its own
// addresses collection.
type AddressRepository struct {
	handle *ClientHandle
}

func NewAddressRepository(handle *ClientHandle) *AddressRepository {
	return &AddressRepository{handle: handle}
}

func (r *AddressRepository) Insert(ctx context.Context, a *customer.Address) (string, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return "", err
	}
	ref := client.Collection(AddressesCollection).Doc(a.ID.String())
	if _, err := ref.Create(ctx, toAddressDoc(a)); err != nil {
		return "", translateError(err)
	}
	return ref.ID, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]customer.Address, error) {
	client, err := r.handle.Client(ctx)
	if err != nil {
		return nil, err
	}

	it := client.Collection(AddressesCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer it.Stop()

	addresses := []customer.Address{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d addressDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		a, err := fromAddressDoc(snap.Ref.ID, d)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	return addresses, nil
}

func toAddressDoc(a *customer.Address) addressDoc {
	return addressDoc{
		UserID:     a.UserID,
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		CreatedAt:  a.CreatedAt.UTC(),
	}
}

func fromAddressDoc(id string, d addressDoc) (*customer.Address, error) {
	aid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &customer.Address{
		BaseEntity: shared.BaseEntity{ID: aid, CreatedAt: d.CreatedAt, UpdatedAt: d.CreatedAt},
		UserID:     d.UserID,
		FullName:   d.FullName,
		Line1:      d.Line1,
		Line2:      d.Line2,
		City:       d.City,
		State:      d.State,
		PostalCode: d.PostalCode,
		Country:    d.Country,
		Phone:      d.Phone,
	}, nil
}
