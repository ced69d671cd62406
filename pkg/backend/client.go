// Package backend is an HTTP/JSON client for the storefront REST API.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Config holds backend connection details.
type Config struct {
	BaseURL string // e.g. http://localhost:8080/api/v1
	Token   string
	Timeout time.Duration
}

// Client talks to the storefront REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// NewClient creates a new backend client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: timeout,
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.do(fiber.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every user with embedded orders.
func (c *Client) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := c.do(fiber.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one user with embedded orders.
func (c *Client) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := c.do(fiber.MethodGet, path("users", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PatchUserOrders writes back the order list of a user.
func (c *Client) PatchUserOrders(userID string, orders []models.Order) error {
	body := map[string]any{"orders": orders}
	return c.do(fiber.MethodPatch, path("users", userID), body, nil)
}

// CancelOrder cancels an order that has not shipped yet.
func (c *Client) CancelOrder(orderID string) (*models.Order, error) {
	var order models.Order
	if err := c.do(fiber.MethodPatch, path("orders", orderID, "cancel"), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Reorder puts the items of a past order back in the cart.
func (c *Client) Reorder(orderID string) (*models.ReorderResult, error) {
	var out models.ReorderResult
	if err := c.do(fiber.MethodPost, path("orders", orderID, "reorder"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCart returns the cart of a user.
func (c *Client) GetCart(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := c.do(fiber.MethodGet, path("users", userID, "cart"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart adds one unit of a product to the cart.
func (c *Client) AddToCart(userID, productID string) error {
	return c.do(fiber.MethodPost, path("users", userID, "cart", productID), nil, nil)
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(userID, productID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(fiber.MethodPatch, path("users", userID, "cart", productID), body, nil)
}

// RemoveFromCart deletes a cart line.
func (c *Client) RemoveFromCart(userID, productID string) error {
	return c.do(fiber.MethodDelete, path("users", userID, "cart", productID), nil, nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(userID string) error {
	return c.do(fiber.MethodDelete, path("users", userID, "cart"), nil, nil)
}

// GetWishlist returns the wishlist of a user.
func (c *Client) GetWishlist(userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := c.do(fiber.MethodGet, path("users", userID, "wishlist"), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist puts a product on the wishlist.
func (c *Client) AddToWishlist(userID, productID string) error {
	return c.do(fiber.MethodPost, path("users", userID, "wishlist", productID), nil, nil)
}

// RemoveFromWishlist takes a product off the wishlist.
func (c *Client) RemoveFromWishlist(userID, productID string) error {
	return c.do(fiber.MethodDelete, path("users", userID, "wishlist", productID), nil, nil)
}

func (c *Client) do(method, p string, body, out any) error {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + p)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(c.timeout)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%s %s: %w", method, p, err)
	}

	// Bytes releases the agent
	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, p, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return &StatusError{Method: method, Path: p, Code: code, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, p, err)
	}
	return nil
}

func path(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
