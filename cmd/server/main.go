// Command server runs the AgroMart marketplace API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/agromart/backend/internal/application/catalog"
	communityapp "github.com/agromart/backend/internal/application/community"
	customerapp "github.com/agromart/backend/internal/application/customer"
	identityapp "github.com/agromart/backend/internal/application/identity"
	plantapp "github.com/agromart/backend/internal/application/plant"
	tradeapp "github.com/agromart/backend/internal/application/trade"
	"github.com/agromart/backend/internal/domain/catalog"
	"github.com/agromart/backend/internal/domain/community"
	"github.com/agromart/backend/internal/domain/customer"
	"github.com/agromart/backend/internal/domain/identity"
	"github.com/agromart/backend/internal/domain/order"
	"github.com/agromart/backend/internal/domain/routing"
	"github.com/agromart/backend/internal/infrastructure/auth"
	"github.com/agromart/backend/internal/infrastructure/cache"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/agromart/backend/internal/infrastructure/logger"
	"github.com/agromart/backend/internal/infrastructure/mail"
	"github.com/agromart/backend/internal/infrastructure/migration"
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/agromart/backend/internal/infrastructure/persistence"
	"github.com/agromart/backend/internal/infrastructure/persistence/firestore"
	"github.com/agromart/backend/internal/infrastructure/plantid"
	"github.com/agromart/backend/internal/infrastructure/storage"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"github.com/agromart/backend/internal/interfaces/http/handler"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/agromart/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// repositories groups the persistence ports for the selected driver
type repositories struct {
	users     identity.UserRepository
	products  catalog.ProductRepository
	orders    order.Repository
	posts     community.PostRepository
	addresses customer.AddressRepository
	database  handler.Pinger
	close     func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env, cfg.Log.Level)
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AgroMart backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	kv, err := cache.NewKVFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		_ = kv.Close()
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisKV, ok := kv.(*cache.RedisKV); ok {
		blacklist = auth.NewRedisTokenBlacklist(redisKV.Client())
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	sessions := auth.NewSessionResolver(jwtService, blacklist)

	gateway, err := payment.NewProvider(cfg.Payment, log)
	switch {
	case errors.Is(err, payment.ErrNotConfigured):
		log.Warn("Payment provider has no credentials; payments will fail until configured",
			zap.String("provider", cfg.Payment.Provider))
		gateway = payment.Unconfigured{}
	case err != nil:
		log.Fatal("Failed to initialize payment provider", zap.Error(err))
	}

	sendgrid := mail.NewSendGridClient(cfg.SendGrid, log)
	if !sendgrid.Configured() {
		log.Warn("SendGrid API key missing; password reset and newsletter calls will fail")
	}

	objects, err := openObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var metrics *telemetry.Metrics
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics()
		metricsPath = cfg.Metrics.Path
	}

	carts := cache.NewCartStore(kv, 0)
	orders := tradeapp.NewOrderService(repos.orders, cache.NewIdempotencyStore(kv), cfg.Idempotency.TTL, metrics, log)
	checkout := tradeapp.NewCheckoutService(cache.NewCheckoutSessionStore(kv, 0), carts, gateway, orders, metrics, log)
	authService := identityapp.NewAuthService(repos.users, jwtService, sessions, sendgrid,
		identityapp.AuthServiceConfig{BaseURL: cfg.App.BaseURL}, log)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.Cookie),
		Cart:      handler.NewCartHandler(tradeapp.NewCartService(carts, repos.products, log)),
		Checkout:  handler.NewCheckoutHandler(checkout),
		Orders:    handler.NewOrderHandler(orders),
		Payments:  handler.NewPaymentHandler(gateway, log),
		Products:  handler.NewProductHandler(catalogapp.NewProductService(repos.products, log)),
		Community: handler.NewCommunityHandler(communityapp.NewPostService(repos.posts, log), communityapp.NewNewsletterService(sendgrid, log)),
		Address:   handler.NewAddressHandler(customerapp.NewAddressService(repos.addresses, log)),
		Plants:    handler.NewPlantHandler(plantapp.NewPlantService(plantid.NewClient(cfg.PlantID, log), objects, log)),
		System:    handler.NewSystemHandler(cfg.App.Name, repos.database, log),
	}

	engine := router.NewEngine(ctx, router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		HTTP:           cfg.HTTP,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		TracingEnabled: tracer.IsEnabled(),
		MetricsPath:    metricsPath,
		Session:        middleware.SessionConfig{Resolver: sessions, CookieName: cfg.Cookie.Name, Logger: log},
		Guard: routing.NewGuard(routing.WithTransitionObserver(func(from, to routing.GuardState) {
			log.Debug("Route guard transition", zap.String("from", string(from)), zap.String("to", string(to)))
		})),
		Metrics: metrics,
		Logger:  log,
	}, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openRepositories connects the configured store. SQL stores are migrated
// before the server accepts traffic.
func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == config.DriverFirestore {
		client := firestore.NewClientHandle(cfg.Firestore, log)
		return &repositories{
			users:     firestore.NewUserRepository(client),
			products:  firestore.NewProductRepository(client),
			orders:    firestore.NewOrderRepository(client),
			posts:     firestore.NewPostRepository(client),
			addresses: firestore.NewAddressRepository(client),
			database:  client,
			close:     client.Close,
		}, nil
	}

	handle := persistence.NewHandle(&cfg.Database, log)
	if err := migrateSchema(ctx, handle, cfg, log); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return &repositories{
		users:     persistence.NewGormUserRepository(handle),
		products:  persistence.NewGormProductRepository(handle),
		orders:    persistence.NewGormOrderRepository(handle),
		posts:     persistence.NewGormPostRepository(handle),
		addresses: persistence.NewGormAddressRepository(handle),
		database:  handle,
		close:     handle.Close,
	}, nil
}

// migrateSchema runs the embedded SQL migrations on postgres. Sqlite, and
// postgres with database.auto_migrate set, get a gorm AutoMigrate instead.
func migrateSchema(ctx context.Context, handle *persistence.Handle, cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres || cfg.Database.AutoMigrate {
		log.Info("Auto-migrating schema", zap.String("driver", cfg.Database.Driver))
		return handle.AutoMigrate(ctx)
	}

	db, err := handle.DB(ctx)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	// The migrator is not closed: closing it would close the shared pool.
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	return m.Up()
}

func openObjectStorage(cfg *config.Config, log *zap.Logger) (storage.ObjectStorage, error) {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, keeping plant photos in memory")
		return storage.NewMemoryObjectStorage(""), nil
	}
	return storage.NewS3ObjectStorage(cfg.Storage, storage.WithLogger(log))
}
