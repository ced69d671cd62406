package handlers

import (
	"storefront/internal/lifecycle"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler serves the back-office views.
type AdminHandler struct {
	service *services.AdminService
	sweeper *services.StatusSweeper
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler. sweeper may be nil, which disables POST /admin/sweep.
func NewAdminHandler(service *services.AdminService, sweeper *services.StatusSweeper, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, sweeper: sweeper, logger: orNop(logger)}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	adminRoutes := router.Group("/admin", auth, middleware.AdminOnly())
	adminRoutes.Get("/dashboard", h.HandleDashboard)
	adminRoutes.Get("/orders", h.HandleOrders)
	adminRoutes.Get("/customers", h.HandleCustomers)
	if h.sweeper != nil {
		adminRoutes.Post("/sweep", h.HandleSweep)
	}
}

// HandleDashboard returns the store summary.
func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard()
	if err != nil {
		return fail(c, h.logger, "Could not build dashboard", err)
	}
	return c.JSON(dashboard)
}

// HandleOrders lists orders of all users. Query parameters: status, user, q.
func (h *AdminHandler) HandleOrders(c *fiber.Ctx) error {
	filter := models.OrderFilter{
		UserID: c.Query("user"),
		Status: lifecycle.Status(c.Query("status")),
		Search: c.Query("q"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown order status",
			"error":   string(filter.Status),
		})
	}
	orders, err := h.service.Orders(filter)
	if err != nil {
		return fail(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleCustomers lists customers with their order totals.
func (h *AdminHandler) HandleCustomers(c *fiber.Ctx) error {
	customers, err := h.service.Customers()
	if err != nil {
		return fail(c, h.logger, "Could not retrieve customers", err)
	}
	return c.JSON(customers)
}

// HandleSweep runs one order status sweep now and reports its counts.
func (h *AdminHandler) HandleSweep(c *fiber.Ctx) error {
	res := h.sweeper.Sweep()
	h.logger.Info("Manual sweep", zap.String("by", middleware.UserID(c)), zap.Int("changed", res.Changed))
	return c.JSON(res)
}
