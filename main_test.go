package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/session"
	"storefront/pkg/backend"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:    "storefront-test",
		JWTSecret:      "test_jwt_secret",
		TokenTTL:       time.Hour,
		Location:       time.UTC,
		EventsDriver:   "none",
		SweepInterval:  time.Minute,
		StatusCacheTTL: time.Minute,
	}
}

func TestNewApp(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:main_test?mode=memory&cache=shared", nil)
	require.NoError(t, err)

	app := newApp(testConfig(), db, events.Nop{}, cache.Nop{}, zap.NewNop())
	require.NotNil(t, app.sweeper)

	resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "up", health["database"])
	assert.Equal(t, "none", health["events"])

	body, _ := json.Marshal(map[string]string{"username": "asha", "email": "asha@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.fiber.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, _ = io.Copy(io.Discard, resp.Body)
}

func TestSessionAgainstServer(t *testing.T) {
	db, err := database.Open(database.DriverSQLite, "file:main_session_test?mode=memory&cache=shared", nil)
	require.NoError(t, err)
	app := newApp(testConfig(), db, events.Nop{}, cache.Nop{}, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.fiber.Listener(ln) }()
	t.Cleanup(func() { _ = app.fiber.Shutdown() })

	tea := &models.Product{Title: "Masala Tea", Price: decimal.RequireFromString("4.50"), Stock: 3}
	require.NoError(t, repositories.NewGORMProductRepository(db).Create(tea))

	body, _ := json.Marshal(map[string]string{"username": "asha", "email": "asha@example.com", "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.fiber.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	client := backend.NewClient(backend.Config{BaseURL: "http://" + ln.Addr().String() + "/api/v1", Timeout: 5 * time.Second})
	s := session.New(session.ClientBackend{Client: client}, nil)

	err = s.Login("asha", "wrong")
	require.Error(t, err)
	assert.True(t, backend.IsStatus(err, http.StatusUnauthorized), err.Error())
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.Login("asha", "password123"))
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "asha", user.Username)
	assert.NotEmpty(t, s.Token())

	require.NoError(t, s.AddToCart(tea.ID))
	require.NoError(t, s.UpdateCartQuantity(tea.ID, 2))
	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, "Masala Tea", cart[0].Product.Title)

	require.NoError(t, s.AddToWishlist(*tea))
	assert.True(t, s.InWishlist(tea.ID))

	err = s.AddToWishlist(models.Product{ID: "missing", Title: "Ghost"})
	assert.True(t, backend.IsStatus(err, http.StatusNotFound), "%v", err)
	assert.False(t, s.InWishlist("missing"))

	// a fresh session sees what the server stored
	other := session.New(session.ClientBackend{Client: client}, nil)
	require.NoError(t, other.Login("asha", "password123"))
	assert.Len(t, other.Cart(), 1)
	assert.True(t, other.InWishlist(tea.ID))

	require.NoError(t, s.RemoveFromWishlist(tea.ID))
	require.NoError(t, s.ClearCart())
	assert.False(t, s.InWishlist(tea.ID))
	assert.Empty(t, s.Cart())
}

func TestOrderEventLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handle := orderEventLogger(zap.New(core))

	env, err := events.NewEnvelope(events.OrderStatusChanged, "storefront", "o-1", events.OrderPayload{
		OrderID:    "o-1",
		UserID:     "u-1",
		Status:     lifecycle.StatusShipped,
		PrevStatus: lifecycle.StatusOrdered,
	})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, handle(amqp.Delivery{Body: raw}))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "o-1", fields["order_id"])
	assert.Equal(t, string(lifecycle.StatusShipped), fields["status"])

	assert.Error(t, handle(amqp.Delivery{Body: []byte("not json")}))
}

func TestFakeProductIsValid(t *testing.T) {
	for range 10 {
		p := fakeProduct()
		assert.NotEmpty(t, p.Title)
		assert.True(t, p.Price.IsPositive(), p.Price.String())
		assert.LessOrEqual(t, p.Rating, 5.0)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
