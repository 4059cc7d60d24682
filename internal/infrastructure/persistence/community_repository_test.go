package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/agromart/backend/internal/domain/community"
	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPostRepository(t *testing.T) {
	repo := NewGormPostRepository(newTestHandle(t))
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, category := range []string{"crops", "livestock", "crops"} {
		post, err := community.NewPost("Post", "Some content", category, "farmer")
		require.NoError(t, err)
		post.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		post.Title = category
		require.NoError(t, repo.Create(ctx, post))
	}

	posts, err := repo.List(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt))
	assert.True(t, posts[1].CreatedAt.After(posts[2].CreatedAt))

	filter := shared.DefaultFilter()
	filter.Filters["category"] = "crops"
	posts, err = repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestGormAddressRepository(t *testing.T) {
	repo := NewGormAddressRepository(newTestHandle(t))
	ctx := context.Background()

	addr, err := customer.NewAddress("user-1", customer.Address{
		FullName:   "Ravi Kumar",
		Line1:      "12 Mill Road",
		City:       "Pune",
		PostalCode: "411001",
		Country:    "IN",
	})
	require.NoError(t, err)

	id, err := repo.Insert(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, addr.ID.String(), id)

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Pune", list[0].City)

	list, err = repo.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}
