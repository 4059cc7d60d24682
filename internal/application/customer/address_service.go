// Package customer manages buyer records such as saved addresses.
package customer

import (
	"context"
	"time"

	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveAddressRequest represents a request to save a shipping address
type SaveAddressRequest struct {
	FullName   string `json:"full_name" binding:"required,max=100"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"max=30"`
}

// AddressResponse represents a saved address
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddressService saves and lists the caller's addresses
type AddressService struct {
	repo   customer.AddressRepository
	logger *zap.Logger
}

// NewAddressService creates a new AddressService
func NewAddressService(repo customer.AddressRepository, logger *zap.Logger) *AddressService {
	return &AddressService{repo: repo, logger: logger}
}

// Save validates and stores an address, returning the inserted id
func (s *AddressService) Save(ctx context.Context, userID string, req SaveAddressRequest) (string, error) {
	addr, err := customer.NewAddress(userID, customer.Address{
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	})
	if err != nil {
		return "", err
	}

	id, err := s.repo.Insert(ctx, addr)
	if err != nil {
		s.logger.Error("Failed to insert address", zap.String("user_id", userID), zap.Error(err))
		return "", shared.WrapDomainError("INTERNAL_ERROR", "Failed to save address", err)
	}
	s.logger.Info("Address saved", zap.String("address_id", id), zap.String("user_id", userID))
	return id, nil
}

// List returns the user's addresses
func (s *AddressService) List(ctx context.Context, userID string) ([]AddressResponse, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to load addresses", err)
	}
	out := make([]AddressResponse, len(addrs))
	for i, a := range addrs {
		out[i] = AddressResponse{
			ID:         a.ID,
			FullName:   a.FullName,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			Phone:      a.Phone,
			CreatedAt:  a.CreatedAt,
		}
	}
	return out, nil
}
