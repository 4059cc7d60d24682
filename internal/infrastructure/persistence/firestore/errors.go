package firestore

import (
	"github.com/agromart/backend/internal/domain/shared"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// translateError maps gRPC status codes onto domain errors
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return shared.ErrNotFound
	case codes.AlreadyExists:
		return shared.ErrAlreadyExists
	default:
		return err
	}
}
