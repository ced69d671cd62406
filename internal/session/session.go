// Package session holds the client-side state of a signed-in shopper: the
// user with their orders, the auth token, the cart and the wishlist.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/pkg/backend"

	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned by every operation that needs a signed-in user.
var ErrNotLoggedIn = errors.New("not logged in")

// API is the authenticated part of the storefront backend.
type API interface {
	GetCart(userID string) ([]models.CartItem, error)
	AddToCart(userID, productID string) error
	UpdateCartItem(userID, productID string, quantity int) error
	RemoveFromCart(userID, productID string) error
	ClearCart(userID string) error
	GetWishlist(userID string) ([]models.WishlistItem, error)
	AddToWishlist(userID, productID string) error
	RemoveFromWishlist(userID, productID string) error
	CancelOrder(orderID string) (*models.Order, error)
	Reorder(orderID string) (*models.ReorderResult, error)
}

// Backend signs users in and hands out an API bound to their token.
type Backend interface {
	Login(username, password string) (*backend.LoginResponse, error)
	Authorized(token string) API
}

// ClientBackend adapts a backend.Client.
type ClientBackend struct {
	*backend.Client
}

func (b ClientBackend) Authorized(token string) API {
	return b.Client.WithToken(token)
}

// Session is safe for concurrent use. Backend calls are made without holding
// the lock, so readers see optimistic changes while a call is in flight.
type Session struct {
	backend Backend
	logger  *zap.Logger

	mu         sync.Mutex
	generation uint64 // bumped on every login and logout
	api        API
	token      string
	user       *models.User
	cart       []models.CartItem
	wishlist   []models.WishlistItem
	mutations  []Mutation
	inflight   map[string]*flight // by product id
	nextID     uint64
}

// New creates a signed-out session.
func New(b Backend, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{backend: b, logger: logger}
}

// Login signs in and loads the cart and wishlist. A failed login leaves the
// previous state untouched.
func (s *Session) Login(username, password string) error {
	resp, err := s.backend.Login(username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	api := s.backend.Authorized(resp.Token)
	user := resp.User

	cart, err := api.GetCart(user.ID)
	if err != nil {
		s.logger.Warn("Could not load cart", zap.String("user_id", user.ID), zap.Error(err))
	}
	wishlist, err := api.GetWishlist(user.ID)
	if err != nil {
		s.logger.Warn("Could not load wishlist", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.api = api
	s.token = resp.Token
	s.user = &user
	s.cart = cart
	s.wishlist = wishlist
	s.mutations = nil
	s.inflight = nil
	s.logger.Info("Signed in", zap.String("user_id", user.ID))
	return nil
}

// Logout drops every piece of user state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.api = nil
	s.token = ""
	s.user = nil
	s.cart = nil
	s.wishlist = nil
	s.mutations = nil
	s.inflight = nil
}

// LoggedIn reports whether a user is signed in.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Token returns the auth token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	u := *s.user
	u.Orders = slices.Clone(s.user.Orders)
	return u, true
}

// Cart returns a copy of the cart.
func (s *Session) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// Wishlist returns a copy of the wishlist.
func (s *Session) Wishlist() []models.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

// InWishlist reports whether productID is on the wishlist.
func (s *Session) InWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistIndex(productID) >= 0
}

// snapshot returns what a backend call needs, or ErrNotLoggedIn.
func (s *Session) snapshot() (API, string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, "", 0, ErrNotLoggedIn
	}
	return s.api, s.user.ID, s.generation, nil
}

// AddToCart adds one unit of a product and reloads the cart.
func (s *Session) AddToCart(productID string) error {
	return s.cartCall(func(api API, userID string) error { return api.AddToCart(userID, productID) })
}

// UpdateCartQuantity sets the quantity of a cart line and reloads the cart.
func (s *Session) UpdateCartQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveFromCart(productID)
	}
	return s.cartCall(func(api API, userID string) error { return api.UpdateCartItem(userID, productID, quantity) })
}

// RemoveFromCart drops a cart line and reloads the cart.
func (s *Session) RemoveFromCart(productID string) error {
	return s.cartCall(func(api API, userID string) error { return api.RemoveFromCart(userID, productID) })
}

// ClearCart empties the cart.
func (s *Session) ClearCart() error {
	return s.cartCall(func(api API, userID string) error { return api.ClearCart(userID) })
}

// cartCall runs a cart mutation and then reloads the cart. On failure the
// local cart is left as it was.
func (s *Session) cartCall(call func(API, string) error) error {
	api, userID, gen, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := call(api, userID); err != nil {
		return err
	}
	cart, err := api.GetCart(userID)
	if err != nil {
		return fmt.Errorf("reload cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.cart = cart
	}
	return nil
}

// CancelOrder cancels an order and updates it in the local order history.
func (s *Session) CancelOrder(orderID string) (*models.Order, error) {
	api, _, gen, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	order, err := api.CancelOrder(orderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		for i := range s.user.Orders {
			if s.user.Orders[i].ID == orderID {
				s.user.Orders[i].Status = lifecycle.StatusCancelled
			}
		}
	}
	return order, nil
}

// Reorder copies the items of a past order into the cart.
func (s *Session) Reorder(orderID string) (*models.ReorderResult, error) {
	api, _, gen, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	res, err := api.Reorder(orderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.cart = res.Cart
	}
	return res, nil
}
