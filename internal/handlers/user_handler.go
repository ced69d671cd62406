package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler exposes user records with their embedded orders.
type UserHandler struct {
	service *services.UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: orNop(logger)}
}

// RegisterRoutes registers the user routes. Listing and order write-back are admin only.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users", auth)
	userRoutes.Get("/", middleware.AdminOnly(), h.HandleListUsers)
	userRoutes.Get("/:id", middleware.SelfOrAdmin("id"), h.HandleGetUser)
	userRoutes.Patch("/:id", middleware.AdminOnly(), h.HandlePatchOrders)
}

// HandleListUsers returns every user with orders.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers()
	if err != nil {
		return fail(c, h.logger, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

// HandleGetUser returns one user with orders.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve user", err)
	}
	return c.JSON(user)
}

// PatchOrdersRequest replaces the order list of a user.
type PatchOrdersRequest struct {
	Orders []models.Order `json:"orders"`
}

// HandlePatchOrders writes back the full order list of a user.
func (h *UserHandler) HandlePatchOrders(c *fiber.Ctx) error {
	var req PatchOrdersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	user, err := h.service.UpdateOrders(c.Params("id"), req.Orders)
	if err != nil {
		return fail(c, h.logger, "Could not update orders", err)
	}
	return c.JSON(user)
}
