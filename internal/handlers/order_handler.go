package handlers

import (
	"storefront/internal/lifecycle"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders and checkout.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, validate *validator.Validate, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validate,
		logger:   orNop(logger),
	}
}

// RegisterRoutes registers the order routes. auth must populate the caller.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/checkout/delivery-dates", auth, h.HandleDeliveryDates)

	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/track", h.HandleTrackOrder)
	orderRoutes.Patch("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/reorder", h.HandleReorder)
}

func actor(c *fiber.Ctx) services.Actor {
	return services.Actor{UserID: middleware.UserID(c), Admin: middleware.IsAdmin(c)}
}

// HandleDeliveryDates lists the delivery dates a checkout may choose.
func (h *OrderHandler) HandleDeliveryDates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"dates": h.service.DeliveryOptions()})
}

// HandleGetOrders lists the caller's orders, optionally filtered by ?status=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	status := lifecycle.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown order status",
			"error":   string(status),
		})
	}
	orders, err := h.service.ListOrders(middleware.UserID(c), status)
	if err != nil {
		return fail(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.PlaceOrder(middleware.UserID(c), req)
	if err != nil {
		return fail(c, h.logger, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(actor(c), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleTrackOrder returns an order with its live status and stage timeline.
func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	order, err := h.service.Track(actor(c), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not track order", err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order that has not shipped.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(actor(c), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not cancel order", err)
	}
	return c.JSON(order)
}

// HandleReorder puts the items of a past order back in the caller's cart.
func (h *OrderHandler) HandleReorder(c *fiber.Ctx) error {
	res, err := h.service.Reorder(actor(c), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not reorder", err)
	}
	return c.JSON(res)
}
