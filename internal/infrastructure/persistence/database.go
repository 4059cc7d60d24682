package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/agromart/backend/internal/infrastructure/logger"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrHandleClosed is returned by a Handle after Close
var ErrHandleClosed = errors.New("database handle is closed")

// Opener establishes a new database connection
type Opener func(ctx context.Context) (*gorm.DB, error)

// Handle is a process-wide, lazily established database connection.
//
// The first caller of DB opens the connection; later callers reuse it. A
// failed attempt is not cached, so the next call retries. Handle is safe for
// concurrent use and at most one open is in flight at any time.
type Handle struct {
	mu     sync.Mutex
	open   Opener
	db     *gorm.DB
	closed bool
}

// NewHandle creates a Handle for the configured SQL driver. Nothing is
// dialed until the first call to DB.
func NewHandle(cfg *config.DatabaseConfig, zapLogger *zap.Logger) *Handle {
	return NewHandleWithOpener(func(ctx context.Context) (*gorm.DB, error) {
		return Open(ctx, cfg, zapLogger)
	})
}

// NewHandleWithOpener creates a Handle that uses open to connect
func NewHandleWithOpener(open Opener) *Handle {
	return &Handle{open: open}
}

// NewHandleFromDB wraps an already open connection
func NewHandleFromDB(db *gorm.DB) *Handle {
	return &Handle{db: db}
}

// DB returns the shared connection, opening it if absent
func (h *Handle) DB(ctx context.Context) (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHandleClosed
	}
	if h.db != nil {
		return h.db.WithContext(ctx), nil
	}
	if h.open == nil {
		return nil, errors.New("database handle has no opener")
	}

	db, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.db = db
	return db.WithContext(ctx), nil
}

// Connected reports whether a connection is currently established
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db != nil
}

// Ping opens the connection if needed and checks it is alive
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Transaction executes fn within a database transaction
func (h *Handle) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(fn)
}

// AutoMigrate creates or updates the schema for every model
func (h *Handle) AutoMigrate(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	return db.AutoMigrate(models.All()...)
}

// Stats returns connection pool statistics. It does not open a connection.
func (h *Handle) Stats() (ConnectionStats, error) {
	h.mu.Lock()
	db := h.db
	h.mu.Unlock()
	if db == nil {
		return ConnectionStats{}, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Close closes the connection. Further calls to DB fail.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.db == nil {
		return nil
	}
	sqlDB, err := h.db.DB()
	h.db = nil
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Open creates a new database connection for the configured driver
func Open(ctx context.Context, cfg *config.DatabaseConfig, zapLogger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	gormLogger := logger.NewGormLogger(zapLogger, logger.MapGormLogLevel(cfg.LogLevel), 200*time.Millisecond)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == config.DriverPostgres,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	zapLogger.Info("Database connection established",
		zap.String("driver", cfg.Driver),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)
	return db, nil
}
