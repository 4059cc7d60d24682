package models

import (
	"time"

	"github.com/agromart/backend/internal/domain/identity"
)

// UserModel is the persistence model for users
type UserModel struct {
	BaseModel
	Name                string     `gorm:"type:varchar(100);not null"`
	Email               string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash        string     `gorm:"type:varchar(255);not null"`
	ResetTokenHash      string     `gorm:"type:varchar(64);index"`
	ResetTokenExpiresAt *time.Time
	LastLoginAt         *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:          m.BaseModel.ToDomain(),
		Name:                m.Name,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		ResetTokenHash:      m.ResetTokenHash,
		ResetTokenExpiresAt: m.ResetTokenExpiresAt,
		LastLoginAt:         m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.ResetTokenHash = u.ResetTokenHash
	m.ResetTokenExpiresAt = u.ResetTokenExpiresAt
	m.LastLoginAt = u.LastLoginAt
}
