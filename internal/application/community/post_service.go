// Package community serves the discussion forum and the newsletter sign-up.
package community

import (
	"context"
	"time"

	"github.com/agromart/backend/internal/domain/community"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePostRequest represents a request to publish a post
type CreatePostRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category" binding:"required,max=50"`
	Author   string `json:"author"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Category  string     `json:"category"`
	Author    string     `json:"author"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToPostResponse converts a domain post to a response
func ToPostResponse(p *community.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		Author:    p.Author,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
}

// PostService lists and publishes forum posts
type PostService struct {
	repo   community.PostRepository
	logger *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(repo community.PostRepository, logger *zap.Logger) *PostService {
	return &PostService{repo: repo, logger: logger}
}

// List returns posts newest first
func (s *PostService) List(ctx context.Context, filter shared.Filter) ([]PostResponse, error) {
	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load posts", err)
	}
	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = ToPostResponse(&posts[i])
	}
	return out, nil
}

// Create publishes a post. A signed-in author's display name is used when
// the request leaves author empty.
func (s *PostService) Create(ctx context.Context, author *AuthorRef, req CreatePostRequest) (*PostResponse, error) {
	name := req.Author
	if name == "" && author != nil {
		name = author.Name
	}
	post, err := community.NewPost(req.Title, req.Content, req.Category, name)
	if err != nil {
		return nil, err
	}
	if author != nil && author.ID != uuid.Nil {
		id := author.ID
		post.AuthorID = &id
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("Failed to create post", zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to save post", err)
	}
	s.logger.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("category", post.Category))

	response := ToPostResponse(post)
	return &response, nil
}

// AuthorRef identifies the signed-in author of a post
type AuthorRef struct {
	ID   uuid.UUID
	Name string
}
