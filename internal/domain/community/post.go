// Package community contains the discussion forum posts.
package community

import (
	"context"
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Post is a discussion forum entry
type Post struct {
	shared.BaseEntity
	Title    string
	Content  string
	Category string
	Author   string
	AuthorID *uuid.UUID
}

// NewPost creates a post. Title, content, category and author are required.
func NewPost(title, content, category, author string) (*Post, error) {
	p := &Post{
		BaseEntity: shared.NewBaseEntity(),
		Title:      strings.TrimSpace(title),
		Content:    strings.TrimSpace(content),
		Category:   strings.TrimSpace(category),
		Author:     strings.TrimSpace(author),
	}
	switch {
	case p.Title == "":
		return nil, shared.NewDomainError("INVALID_TITLE", "Title is required")
	case len(p.Title) > 200:
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	case p.Content == "":
		return nil, shared.NewDomainError("INVALID_CONTENT", "Content is required")
	case p.Category == "":
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	case p.Author == "":
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Author is required")
	}
	return p, nil
}

// PostRepository persists posts
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	// List returns posts newest first
	List(ctx context.Context, filter shared.Filter) ([]Post, error)
}
