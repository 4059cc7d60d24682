package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agromart/backend/internal/application/catalog"
	"github.com/agromart/backend/internal/application/community"
	"github.com/agromart/backend/internal/application/customer"
	"github.com/agromart/backend/internal/application/identity"
	"github.com/agromart/backend/internal/application/plant"
	"github.com/agromart/backend/internal/application/trade"
	"github.com/agromart/backend/internal/infrastructure/auth"
	"github.com/agromart/backend/internal/infrastructure/cache"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/agromart/backend/internal/infrastructure/mail"
	"github.com/agromart/backend/internal/infrastructure/payment"
	"github.com/agromart/backend/internal/infrastructure/persistence"
	"github.com/agromart/backend/internal/infrastructure/persistence/models"
	"github.com/agromart/backend/internal/infrastructure/plantid"
	"github.com/agromart/backend/internal/infrastructure/storage"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"github.com/agromart/backend/internal/interfaces/http/dto"
	"github.com/agromart/backend/internal/interfaces/http/handler"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sessionCookie = "agromart_session"

type outbox struct {
	mu       sync.Mutex
	sent     []mail.Message
	contacts []string
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) AddContact(_ context.Context, email string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.contacts = append(o.contacts, email)
	return nil
}

type fixedIdentifier struct{}

func (fixedIdentifier) Identify(_ context.Context, images [][]byte) ([]plantid.Suggestion, error) {
	return []plantid.Suggestion{{Name: "Triticum aestivum", Probability: 0.93}}, nil
}

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	mail    *outbox
	metrics *telemetry.Metrics
	objects *storage.MemoryObjectStorage
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zap.NewNop()
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	handle := persistence.NewHandleFromDB(db)
	t.Cleanup(func() { _ = handle.Close() })

	kv := cache.NewMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "api-test-secret-that-is-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "agromart-test",
	})
	resolver := auth.NewSessionResolver(jwtService, auth.NewInMemoryTokenBlacklist())
	box := &outbox{}
	metrics := telemetry.NewMetrics()
	objects := storage.NewMemoryObjectStorage("http://objects.test")

	products := persistence.NewGormProductRepository(handle)
	carts := cache.NewCartStore(kv, 0)
	orders := trade.NewOrderService(persistence.NewGormOrderRepository(handle), cache.NewIdempotencyStore(kv), 0, metrics, log)
	authService := identity.NewAuthService(persistence.NewGormUserRepository(handle), jwtService, resolver, box,
		identity.AuthServiceConfig{BaseURL: "http://shop.test"}, log)

	h := Handlers{
		Auth:      handler.NewAuthHandler(authService, config.CookieConfig{Name: sessionCookie, SameSite: "lax"}),
		Cart:      handler.NewCartHandler(trade.NewCartService(carts, products, log)),
		Checkout:  handler.NewCheckoutHandler(trade.NewCheckoutService(cache.NewCheckoutSessionStore(kv, 0), carts, payment.NewMockGateway("usd"), orders, metrics, log)),
		Orders:    handler.NewOrderHandler(orders),
		Payments:  handler.NewPaymentHandler(payment.NewMockGateway("usd"), log),
		Products:  handler.NewProductHandler(catalog.NewProductService(products, log)),
		Community: handler.NewCommunityHandler(community.NewPostService(persistence.NewGormPostRepository(handle), log), community.NewNewsletterService(box, log)),
		Address:   handler.NewAddressHandler(customer.NewAddressService(persistence.NewGormAddressRepository(handle), log)),
		Plants:    handler.NewPlantHandler(plant.NewPlantService(fixedIdentifier{}, objects, log)),
		System:    handler.NewSystemHandler("agromart", handle, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	engine := NewEngine(ctx, EngineConfig{
		ServiceName: "agromart",
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		MetricsPath: "/metrics",
		Session:     middleware.SessionConfig{Resolver: resolver, CookieName: sessionCookie, Logger: log},
		Metrics:     metrics,
		Logger:      log,
	}, h)

	return &testAPI{t: t, engine: engine, mail: box, metrics: metrics, objects: objects}
}

func (a *testAPI) do(method, target, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) signup(email string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Asha Farmer", "email": email, "password": "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var session handler.SessionResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &session))
	return session.AccessToken
}

func TestAPI_Auth(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)

	token := api.signup("asha@example.com")

	w, env = api.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "asha@example.com", me.Email)

	w, env = api.do(http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"name": "Again", "email": "ASHA@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyExists, env.Error.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "asha@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionCookie+"=")

	w, env = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "asha@example.com", "password": "correct-horse", "redirect": "/checkout?step=card",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var loggedIn handler.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &loggedIn))
	assert.Equal(t, "/checkout?step=card", loggedIn.RedirectTo)

	for _, hostile := range []string{"//evil.example", "/\t/evil.example", "https://evil.example/x", "/%5Cevil.example"} {
		w, env = api.do(http.MethodPost, "/api/v1/auth/login?redirect="+url.QueryEscape(hostile), "", gin.H{
			"email": "asha@example.com", "password": "correct-horse",
		})
		require.Equal(t, http.StatusOK, w.Code, hostile)
		require.NoError(t, json.Unmarshal(env.Data, &loggedIn))
		assert.Equal(t, "/", loggedIn.RedirectTo, hostile)
	}

	w, env = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "asha@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, env.Error.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token")
}

func TestAPI_PasswordReset(t *testing.T) {
	api := newTestAPI(t)
	api.signup("reset@example.com")

	w, _ := api.do(http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, api.mail.sent)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/forgot-password", "", gin.H{"email": "reset@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, api.mail.sent, 1)

	text := api.mail.sent[0].Text
	i := strings.Index(text, "token=")
	require.GreaterOrEqual(t, i, 0)
	token := strings.Fields(text[i+len("token="):])[0]

	w, _ = api.do(http.MethodPost, "/api/v1/auth/reset-password", "", gin.H{"token": token, "new_password": "new-password-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "reset@example.com", "password": "new-password-1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_PageGuard(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/checkout?step=card", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fcheckout%3Fstep%3Dcard", w.Header().Get("Location"))

	w, _ = api.do(http.MethodGet, "/products/seeds", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<div id="root">`)

	token := api.signup("pages@example.com")
	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w, env := api.do(http.MethodGet, "/api/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeRouteNotFound, env.Error.Code)
}

func TestAPI_CheckoutWheatSeed(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("buyer@example.com")

	w, env := api.do(http.MethodPost, "/api/v1/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_CART", env.Error.Reason)

	w, env = api.do(http.MethodPut, "/api/v1/cart", token, gin.H{
		"items": []gin.H{{"name": "Wheat Seed", "quantity": 2, "price": "100", "discount": "0"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cartView handler.CartResponse
	require.NoError(t, json.Unmarshal(env.Data, &cartView))
	assert.Equal(t, "200", cartView.Total.String())

	w, _ = api.do(http.MethodPost, "/api/v1/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = api.do(http.MethodPut, "/api/v1/checkout/method", token, gin.H{"method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPut, "/api/v1/checkout/method", token, gin.H{"method": "credit"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodPut, "/api/v1/checkout/card", token, gin.H{"number": "4242424242424242", "expiry": "", "cvv": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CARD_DETAILS_REQUIRED", env.Error.Reason)

	w, _ = api.do(http.MethodPut, "/api/v1/checkout/card", token, gin.H{"number": "4242424242424242", "expiry": "12/30", "cvv": "123"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = api.do(http.MethodPost, "/api/v1/checkout/submit", token, nil, middleware.IdempotencyKeyHeader, "submit-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submitted handler.SubmitResponse
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	assert.Equal(t, "CONFIRMED", string(submitted.Session.State))
	assert.False(t, submitted.Session.CardCaptured)
	assert.Equal(t, "SUCCESS", string(submitted.Order.Status))
	assert.Equal(t, "200", submitted.Order.Total.String())
	require.Len(t, submitted.Order.Items, 1)
	assert.Equal(t, "Wheat Seed", submitted.Order.Items[0].Name)

	w, env = api.do(http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cartView))
	assert.Empty(t, cartView.Items)

	w, env = api.do(http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []handler.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, submitted.Order.ID, orders[0].ID)

	w, _ = api.do(http.MethodPost, "/api/v1/checkout/submit", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "confirmed checkout is terminal")
}

func TestAPI_Orders(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("orders@example.com")
	other := api.signup("other@example.com")

	w, env := api.do(http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = api.do(http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(http.MethodPost, "/api/v1/orders", token, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/orders", token, gin.H{
		"owner": "someone-else",
		"items": []gin.H{{"name": "Maize", "quantity": 1, "price": "10"}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := gin.H{"items": []gin.H{{"name": "Maize", "quantity": 3, "price": "10", "discount": "0.5"}}}
	w, env = api.do(http.MethodPost, "/api/v1/orders", token, body, middleware.IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created handler.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", string(created.Status))
	assert.Equal(t, "15", created.Total.String())

	w, env = api.do(http.MethodPost, "/api/v1/orders", token, body, middleware.IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.IdempotentReplayedHeader))
	var replayed handler.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &replayed))
	assert.Equal(t, created.ID, replayed.ID)

	w, env = api.do(http.MethodPost, "/api/v1/orders", token, gin.H{
		"status": "delivered",
		"items":  []gin.H{{"name": "Maize", "quantity": 1, "price": "10"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var forced handler.OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &forced))
	assert.Equal(t, "PENDING", string(forced.Status), "clients cannot pick the initial status")

	var first, second []handler.OrderResponse
	w, env = api.do(http.MethodGet, "/api/v1/orders?page_size=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &first))
	w, env = api.do(http.MethodGet, "/api/v1/orders?page=2&page_size=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &second))
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	w, _ = api.do(http.MethodGet, "/api/v1/orders?page_size=101", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/v1/orders/" + created.ID.String()
	w, _ = api.do(http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "orders are private to their owner")

	w, _ = api.do(http.MethodPut, path+"/status", token, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = api.do(http.MethodPut, path+"/status", token, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, env.Error.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/orders/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_CommunityAndNewsletter(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.do(http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = api.do(http.MethodPost, "/api/v1/posts", "", gin.H{"title": "Rust on wheat", "content": "Orange spots", "category": "disease"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "anonymous posts need an author")

	w, _ = api.do(http.MethodPost, "/api/v1/posts", "", gin.H{"title": "Rust on wheat", "content": "Orange spots", "category": "disease", "author": "Ravi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	token := api.signup("poster@example.com")
	w, env = api.do(http.MethodPost, "/api/v1/posts", token, gin.H{"title": "Drip lines", "content": "Which brand?", "category": "irrigation"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post community.PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.Equal(t, "Asha Farmer", post.Author)

	w, env = api.do(http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []community.PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	assert.Len(t, posts, 2)

	w, env = api.do(http.MethodDelete, "/api/v1/posts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, dto.ErrCodeMethodNotAllowed, env.Error.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/newsletter", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(http.MethodPost, "/api/v1/newsletter", "", gin.H{"email": "News@Example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"news@example.com"}, api.mail.contacts)
}

func TestAPI_Addresses(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("ship@example.com")

	w, env := api.do(http.MethodPost, "/api/v1/addresses", token, gin.H{
		"full_name": "Asha Farmer", "line1": "12 Field Rd", "city": "Nashik",
		"postal_code": "422001", "country": "IN",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ack handler.AddressAck
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.True(t, ack.Acknowledged)
	assert.NotEmpty(t, ack.InsertedID)

	w, _ = api.do(http.MethodPost, "/api/v1/addresses", token, gin.H{"full_name": "Asha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.do(http.MethodGet, "/api/v1/addresses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []customer.AddressResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, ack.InsertedID, list[0].ID.String())
}

func TestAPI_ProductsPaymentsPlants(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("seller@example.com")

	w, _ := api.do(http.MethodPost, "/api/v1/products", "", gin.H{"name": "Wheat Seed", "price": "100"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := api.do(http.MethodPost, "/api/v1/products", token, gin.H{"name": "Wheat Seed", "category": "Seeds", "price": "100", "stock": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product catalog.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Equal(t, "seeds", product.Category)

	w, env = api.do(http.MethodGet, "/api/v1/products?category=seeds&search=wheat", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []catalog.ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 1)

	w, env = api.do(http.MethodPost, "/api/v1/cart/items", token, gin.H{"product_id": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cartView handler.CartResponse
	require.NoError(t, json.Unmarshal(env.Data, &cartView))
	assert.Equal(t, "200", cartView.Total.String(), "price filled from the catalog")

	w, _ = api.do(http.MethodPost, "/api/v1/payments/intent", "", gin.H{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = api.do(http.MethodPost, "/api/v1/payments/intent", "", gin.H{"amount": 2500})
	require.Equal(t, http.StatusOK, w.Code)
	var intent payment.Intent
	require.NoError(t, json.Unmarshal(env.Data, &intent))
	assert.Equal(t, int64(2500), intent.Amount)
	assert.NotEmpty(t, intent.ClientSecret)

	w, _ = api.do(http.MethodPost, "/api/v1/plants/identify", "", gin.H{"images": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env = api.do(http.MethodPost, "/api/v1/plants/identify", token, gin.H{"images": []string{"data:image/png;base64,iVBORw0KGgo="}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var identified plant.IdentifyResult
	require.NoError(t, json.Unmarshal(env.Data, &identified))
	require.Len(t, identified.Suggestions, 1)
	assert.Equal(t, "Triticum aestivum", identified.Suggestions[0].Name)
	require.Len(t, identified.ImageKeys, 1)
	_, stored := api.objects.Object(identified.ImageKeys[0])
	assert.True(t, stored)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"connected"}`, w.Body.String())

	api.do(http.MethodGet, "/cart", "", nil)
	api.do(http.MethodGet, "/api/v1/posts", "", nil)
	w, _ = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `route_guard_decisions_total{state="REDIRECTING"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",route="/api/v1/posts",status="200"} 1`)
	assert.NotContains(t, out, `route="/health"`)
}
