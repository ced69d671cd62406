package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler serves a user's cart and wishlist.
type CartHandler struct {
	carts     *services.CartService
	wishlists *services.WishlistService
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartService, wishlists *services.WishlistService, validate *validator.Validate, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:     carts,
		wishlists: wishlists,
		validate:  validate,
		logger:    orNop(logger),
	}
}

// RegisterRoutes registers the cart and wishlist routes under /users/:id.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	self := middleware.SelfOrAdmin("id")

	cart := router.Group("/users/:id/cart", auth, self)
	cart.Get("/", h.HandleGetCart)
	cart.Delete("/", h.HandleClearCart)
	cart.Post("/:productId", h.HandleAddToCart)
	cart.Patch("/:productId", h.HandleSetQuantity)
	cart.Delete("/:productId", h.HandleRemoveFromCart)

	wishlist := router.Group("/users/:id/wishlist", auth, self)
	wishlist.Get("/", h.HandleGetWishlist)
	wishlist.Post("/:productId", h.HandleAddToWishlist)
	wishlist.Delete("/:productId", h.HandleRemoveFromWishlist)
}

// QuantityRequest sets the quantity of a cart line.
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// HandleGetCart returns the cart with product details and subtotal.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	items, err := h.carts.GetCart(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve cart", err)
	}
	return c.JSON(items)
}

// HandleAddToCart adds one unit of a product.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	if err := h.carts.AddItem(c.Params("id"), c.Params("productId"), 1); err != nil {
		return fail(c, h.logger, "Could not add to cart", err)
	}
	return h.HandleGetCart(c)
}

// HandleSetQuantity sets the quantity of a cart line.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req QuantityRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	if err := h.carts.SetQuantity(c.Params("id"), c.Params("productId"), req.Quantity); err != nil {
		return fail(c, h.logger, "Could not update cart", err)
	}
	return h.HandleGetCart(c)
}

// HandleRemoveFromCart deletes a cart line.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	if err := h.carts.RemoveItem(c.Params("id"), c.Params("productId")); err != nil {
		return fail(c, h.logger, "Could not remove from cart", err)
	}
	return h.HandleGetCart(c)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.Params("id")); err != nil {
		return fail(c, h.logger, "Could not clear cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetWishlist returns the wishlist with product details.
func (h *CartHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.wishlists.GetWishlist(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve wishlist", err)
	}
	return c.JSON(items)
}

// HandleAddToWishlist puts a product on the wishlist. Adding twice is not an error.
func (h *CartHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	if err := h.wishlists.Add(c.Params("id"), c.Params("productId")); err != nil {
		return fail(c, h.logger, "Could not add to wishlist", err)
	}
	return h.HandleGetWishlist(c)
}

// HandleRemoveFromWishlist takes a product off the wishlist.
func (h *CartHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	if err := h.wishlists.Remove(c.Params("id"), c.Params("productId")); err != nil {
		return fail(c, h.logger, "Could not remove from wishlist", err)
	}
	return h.HandleGetWishlist(c)
}
