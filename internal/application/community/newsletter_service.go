package community

import (
	"context"
	"errors"

	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// NewsletterService subscribes e-mail addresses to the marketing list
type NewsletterService struct {
	contacts mail.ContactList
	logger   *zap.Logger
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(contacts mail.ContactList, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{contacts: contacts, logger: logger}
}

// Subscribe adds email to the newsletter list
func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = identity.NormalizeEmail(email)
	if err := identity.ValidateEmail(email); err != nil {
		return err
	}
	if err := s.contacts.AddContact(ctx, email); err != nil {
		if errors.Is(err, mail.ErrNotConfigured) {
			s.logger.Error("Newsletter subscription without e-mail provider configured")
			return err
		}
		s.logger.Error("Failed to add newsletter contact", zap.Error(err))
		return shared.WrapDomainError("INTERNAL_ERROR", "Failed to subscribe", err)
	}
	s.logger.Info("Newsletter subscription added")
	return nil
}
