package session_test

import (
	"errors"
	"testing"
	"time"

	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/pkg/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GetCart(userID string) ([]models.CartItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockAPI) AddToCart(userID, productID string) error {
	return m.Called(userID, productID).Error(0)
}

func (m *MockAPI) UpdateCartItem(userID, productID string, quantity int) error {
	return m.Called(userID, productID, quantity).Error(0)
}

func (m *MockAPI) RemoveFromCart(userID, productID string) error {
	return m.Called(userID, productID).Error(0)
}

func (m *MockAPI) ClearCart(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockAPI) GetWishlist(userID string) ([]models.WishlistItem, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockAPI) AddToWishlist(userID, productID string) error {
	return m.Called(userID, productID).Error(0)
}

func (m *MockAPI) RemoveFromWishlist(userID, productID string) error {
	return m.Called(userID, productID).Error(0)
}

func (m *MockAPI) CancelOrder(orderID string) (*models.Order, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockAPI) Reorder(orderID string) (*models.ReorderResult, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReorderResult), args.Error(1)
}

type fakeBackend struct {
	api      *MockAPI
	loginErr error
	user     models.User
}

func (b *fakeBackend) Login(username, password string) (*backend.LoginResponse, error) {
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return &backend.LoginResponse{Token: "tok-" + username, User: b.user}, nil
}

func (b *fakeBackend) Authorized(string) session.API {
	return b.api
}

func signedIn(t *testing.T, wishlist []models.WishlistItem) (*session.Session, *MockAPI) {
	t.Helper()
	api := new(MockAPI)
	b := &fakeBackend{api: api, user: models.User{
		ID:       "u-1",
		Username: "asha",
		Orders:   []models.Order{{ID: "o-1", Status: lifecycle.StatusOrdered}},
	}}
	api.On("GetCart", "u-1").Return([]models.CartItem{}, nil).Once()
	api.On("GetWishlist", "u-1").Return(wishlist, nil).Once()

	s := session.New(b, nil)
	require.NoError(t, s.Login("asha", "secret"))
	return s, api
}

func productIDs(items []models.WishlistItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func TestSession_LoginLogout(t *testing.T) {
	s, _ := signedIn(t, []models.WishlistItem{{ProductID: "p-1"}})

	assert.True(t, s.LoggedIn())
	assert.Equal(t, "tok-asha", s.Token())
	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, s.InWishlist("p-1"))

	s.Logout()
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
	assert.Empty(t, s.Wishlist())
	assert.ErrorIs(t, s.AddToCart("p-1"), session.ErrNotLoggedIn)
	assert.ErrorIs(t, s.AddToWishlist(models.Product{ID: "p-2"}), session.ErrNotLoggedIn)
}

func TestSession_FailedLoginKeepsState(t *testing.T) {
	s := session.New(&fakeBackend{loginErr: errors.New("401")}, nil)
	assert.Error(t, s.Login("asha", "wrong"))
	assert.False(t, s.LoggedIn())
}

func TestSession_AddToWishlist_Commits(t *testing.T) {
	s, api := signedIn(t, nil)

	release := make(chan struct{})
	observed := make(chan []string, 1)
	api.On("AddToWishlist", "u-1", "p-9").
		Run(func(mock.Arguments) {
			observed <- productIDs(s.Wishlist())
			<-release
		}).
		Return(nil).Once()

	done := make(chan error, 1)
	go func() { done <- s.AddToWishlist(models.Product{ID: "p-9", Title: "Tea"}) }()

	// the entry is visible while the backend call is in flight
	assert.Equal(t, []string{"p-9"}, <-observed)
	assert.Equal(t, session.Pending, s.Mutations()[0].State)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, []string{"p-9"}, productIDs(s.Wishlist()))
	assert.Equal(t, session.Committed, s.Mutations()[0].State)
	api.AssertExpectations(t)
}

func TestSession_AddToWishlist_RollsBack(t *testing.T) {
	s, api := signedIn(t, []models.WishlistItem{{ProductID: "p-1"}})
	boom := errors.New("503 service unavailable")
	api.On("AddToWishlist", "u-1", "p-2").Return(boom).Once()

	err := s.AddToWishlist(models.Product{ID: "p-2"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"p-1"}, productIDs(s.Wishlist()))

	m := s.Mutations()
	require.Len(t, m, 1)
	assert.Equal(t, session.RolledBack, m[0].State)
	assert.ErrorIs(t, m[0].Err, boom)
}

func TestSession_AddToWishlist_ConcurrentAddsShareOutcome(t *testing.T) {
	s, api := signedIn(t, nil)
	boom := errors.New("503 service unavailable")
	release := make(chan struct{})
	api.On("AddToWishlist", "u-1", "p-4").
		Run(func(mock.Arguments) { <-release }).
		Return(boom).Once()

	first := make(chan error, 1)
	go func() { first <- s.AddToWishlist(models.Product{ID: "p-4"}) }()
	require.Eventually(t, func() bool { return s.InWishlist("p-4") }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- s.AddToWishlist(models.Product{ID: "p-4"}) }()
	require.Eventually(t, func() bool { return len(s.Mutations()) == 2 }, time.Second, time.Millisecond)
	close(release)

	assert.ErrorIs(t, <-first, boom)
	assert.ErrorIs(t, <-second, boom)
	assert.False(t, s.InWishlist("p-4"))

	m := s.Mutations()
	require.Len(t, m, 2)
	assert.Equal(t, m[0].ID, m[1].JoinedTo)
	for _, mut := range m {
		assert.Equal(t, session.RolledBack, mut.State)
	}
	api.AssertNumberOfCalls(t, "AddToWishlist", 1)
}

func TestSession_RemoveFromWishlist_RollsBackInPlace(t *testing.T) {
	s, api := signedIn(t, []models.WishlistItem{{ProductID: "p-1"}, {ProductID: "p-2"}, {ProductID: "p-3"}})
	api.On("RemoveFromWishlist", "u-1", "p-2").Return(errors.New("timeout")).Once()

	assert.Error(t, s.RemoveFromWishlist("p-2"))
	assert.Equal(t, []string{"p-1", "p-2", "p-3"}, productIDs(s.Wishlist()))
}

func TestSession_ToggleWishlist(t *testing.T) {
	s, api := signedIn(t, []models.WishlistItem{{ProductID: "p-1"}})
	api.On("RemoveFromWishlist", "u-1", "p-1").Return(nil).Once()
	api.On("AddToWishlist", "u-1", "p-1").Return(nil).Once()

	require.NoError(t, s.ToggleWishlist(models.Product{ID: "p-1"}))
	assert.False(t, s.InWishlist("p-1"))
	require.NoError(t, s.ToggleWishlist(models.Product{ID: "p-1"}))
	assert.True(t, s.InWishlist("p-1"))

	// already listed: no backend call
	require.NoError(t, s.AddToWishlist(models.Product{ID: "p-1"}))
	api.AssertNumberOfCalls(t, "AddToWishlist", 1)
}

func TestSession_LogoutDuringWishlistCall(t *testing.T) {
	s, api := signedIn(t, nil)
	api.On("AddToWishlist", "u-1", "p-1").
		Run(func(mock.Arguments) { s.Logout() }).
		Return(errors.New("boom")).Once()

	assert.Error(t, s.AddToWishlist(models.Product{ID: "p-1"}))
	assert.Empty(t, s.Wishlist())
	assert.Empty(t, s.Mutations())
}

func TestSession_Cart(t *testing.T) {
	s, api := signedIn(t, nil)

	cart := []models.CartItem{{ProductID: "p-1", Quantity: 1}}
	api.On("AddToCart", "u-1", "p-1").Return(nil).Once()
	api.On("GetCart", "u-1").Return(cart, nil).Once()
	require.NoError(t, s.AddToCart("p-1"))
	assert.Equal(t, cart, s.Cart())

	// a failed call leaves the cart alone
	api.On("UpdateCartItem", "u-1", "p-1", 3).Return(errors.New("500")).Once()
	assert.Error(t, s.UpdateCartQuantity("p-1", 3))
	assert.Equal(t, cart, s.Cart())

	api.On("RemoveFromCart", "u-1", "p-1").Return(nil).Once()
	api.On("GetCart", "u-1").Return([]models.CartItem{}, nil).Once()
	require.NoError(t, s.UpdateCartQuantity("p-1", 0))
	assert.Empty(t, s.Cart())
	api.AssertExpectations(t)
}

func TestSession_CancelAndReorder(t *testing.T) {
	s, api := signedIn(t, nil)

	api.On("CancelOrder", "o-1").Return(&models.Order{ID: "o-1", Status: lifecycle.StatusCancelled}, nil).Once()
	_, err := s.CancelOrder("o-1")
	require.NoError(t, err)
	u, _ := s.User()
	assert.Equal(t, lifecycle.StatusCancelled, u.Orders[0].Status)

	res := &models.ReorderResult{Cart: []models.CartItem{{ProductID: "p-7", Quantity: 2}}, Skipped: []string{}}
	api.On("Reorder", "o-1").Return(res, nil).Once()
	got, err := s.Reorder("o-1")
	require.NoError(t, err)
	assert.Equal(t, res, got)
	assert.Equal(t, res.Cart, s.Cart())
}
