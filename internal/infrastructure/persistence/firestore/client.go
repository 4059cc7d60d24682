// Package firestore stores the marketplace entities as Cloud Firestore
// documents. It is selected with database.driver = "firestore".
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/agromart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Collection names
const (
	OrdersCollection    = "orders"
	UsersCollection     = "users"
	ProductsCollection  = "products"
	PostsCollection     = "posts"
	AddressesCollection = "addresses"
)

var (
	// ErrClientClosed is returned after Close
	ErrClientClosed = errors.New("firestore client is closed")
	// ErrClientNil is returned by repositories built without a handle
	ErrClientNil = errors.New("firestore client is nil")
)

// Dialer creates a firestore client
type Dialer func(ctx context.Context) (*firestore.Client, error)

// ClientHandle lazily creates one shared firestore client. A failed dial is
// retried by the next caller.
type ClientHandle struct {
	mu     sync.Mutex
	dial   Dialer
	client *firestore.Client
	closed bool
}

// NewClientHandle creates a handle for the configured project. When
// credentials_file is empty, Application Default Credentials are used.
func NewClientHandle(cfg config.FirestoreConfig, zapLogger *zap.Logger) *ClientHandle {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return NewClientHandleWithDialer(func(ctx context.Context) (*firestore.Client, error) {
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		zapLogger.Info("Firestore connected", zap.String("project_id", cfg.ProjectID))
		return client, nil
	})
}

// NewClientHandleWithDialer creates a handle that uses dial to connect
func NewClientHandleWithDialer(dial Dialer) *ClientHandle {
	return &ClientHandle{dial: dial}
}

// Client returns the shared client, creating it if absent
func (h *ClientHandle) Client(ctx context.Context) (*firestore.Client, error) {
	if h == nil {
		return nil, ErrClientNil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClientClosed
	}
	if h.client != nil {
		return h.client, nil
	}

	client, err := h.dial(ctx)
	if err != nil {
		return nil, err
	}
	h.client = client
	return client, nil
}

// Ping performs a cheap read to check connectivity
func (h *ClientHandle) Ping(ctx context.Context) error {
	client, err := h.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(OrdersCollection).Limit(1).Documents(ctx).GetAll(); err != nil {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

// Close closes the client if it was created
func (h *ClientHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.client == nil {
		return nil
	}
	err := h.client.Close()
	h.client = nil
	return err
}
