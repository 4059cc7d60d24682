package models

import (
	"github.com/agromart/backend/internal/domain/community"
	"github.com/google/uuid"
)

// PostModel is the persistence model for discussion posts
type PostModel struct {
	BaseModel
	Title    string     `gorm:"type:varchar(200);not null"`
	Content  string     `gorm:"type:text;not null"`
	Category string     `gorm:"type:varchar(50);not null;index"`
	Author   string     `gorm:"type:varchar(100);not null"`
	AuthorID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts the persistence model to a domain Post
func (m *PostModel) ToDomain() *community.Post {
	return &community.Post{
		BaseEntity: m.BaseModel.ToDomain(),
		Title:      m.Title,
		Content:    m.Content,
		Category:   m.Category,
		Author:     m.Author,
		AuthorID:   m.AuthorID,
	}
}

// FromDomain populates the persistence model from a domain Post
func (m *PostModel) FromDomain(p *community.Post) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Title = p.Title
	m.Content = p.Content
	m.Category = p.Category
	m.Author = p.Author
	m.AuthorID = p.AuthorID
}
