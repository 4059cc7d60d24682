package handler

import (
	"github.com/agromart/backend/internal/application/community"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CommunityHandler serves the discussion board and the newsletter signup
type CommunityHandler struct {
	BaseHandler
	posts      *community.PostService
	newsletter *community.NewsletterService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(posts *community.PostService, newsletter *community.NewsletterService) *CommunityHandler {
	return &CommunityHandler{posts: posts, newsletter: newsletter}
}

// ListPosts handles GET /posts, newest first
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	posts, err := h.posts.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posts)
}

// CreatePost handles POST /posts. Anonymous posts must name an author;
// signed-in users default to their account name.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	var req community.CreatePostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	var author *community.AuthorRef
	if s := middleware.GetSession(c); s.Authenticated() {
		author = &community.AuthorRef{ID: s.UserID, Name: s.Name}
	}

	post, err := h.posts.Create(c.Request.Context(), author, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, post)
}

// Subscribe handles POST /newsletter
func (h *CommunityHandler) Subscribe(c *gin.Context) {
	var req dto.NewsletterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.newsletter.Subscribe(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageResponse{Message: "Subscribed"})
}
