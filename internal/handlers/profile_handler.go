package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProfileHandler serves the account page, the address book and saved cards.
type ProfileHandler struct {
	service  *services.ProfileService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService, validate *validator.Validate, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:  service,
		validate: validate,
		logger:   orNop(logger),
	}
}

// RegisterRoutes registers /profile for the caller and the address book and
// card routes under /users/:id.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	profile := router.Group("/profile", auth)
	profile.Get("/", h.HandleGetProfile)
	profile.Patch("/", h.HandleUpdateProfile)

	self := middleware.SelfOrAdmin("id")

	addresses := router.Group("/users/:id/addresses", auth, self)
	addresses.Get("/", h.HandleListAddresses)
	addresses.Post("/", h.HandleAddAddress)
	addresses.Delete("/:addressId", h.HandleDeleteAddress)

	cards := router.Group("/users/:id/cards", auth, self)
	cards.Get("/", h.HandleListCards)
	cards.Post("/", h.HandleSaveCard)
	cards.Put("/:cardId", h.HandleUpdateCard)
	cards.Delete("/:cardId", h.HandleDeleteCard)
}

// HandleGetProfile returns the caller's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(middleware.UserID(c))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve profile", err)
	}
	return c.JSON(profile)
}

// HandleUpdateProfile changes the caller's account details.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	profile, err := h.service.UpdateProfile(middleware.UserID(c), req)
	if err != nil {
		return fail(c, h.logger, "Could not update profile", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// HandleListAddresses returns the address book.
func (h *ProfileHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.Addresses(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve addresses", err)
	}
	return c.JSON(addresses)
}

// HandleAddAddress saves an address to the book.
func (h *ProfileHandler) HandleAddAddress(c *fiber.Ctx) error {
	var req models.Address
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	saved, err := h.service.AddAddress(c.Params("id"), req)
	if err != nil {
		return fail(c, h.logger, "Could not save address", err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// HandleDeleteAddress removes an address from the book.
func (h *ProfileHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(c.Params("id"), c.Params("addressId")); err != nil {
		return fail(c, h.logger, "Could not delete address", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListCards returns the saved cards.
func (h *ProfileHandler) HandleListCards(c *fiber.Ctx) error {
	cards, err := h.service.Cards(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve cards", err)
	}
	return c.JSON(cards)
}

// HandleSaveCard keeps a card on file and returns every saved card.
func (h *ProfileHandler) HandleSaveCard(c *fiber.Ctx) error {
	var req services.CardRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	cards, err := h.service.SaveCard(c.Params("id"), req)
	if err != nil {
		return fail(c, h.logger, "Could not save card", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cards)
}

// HandleUpdateCard replaces a saved card and returns every saved card.
func (h *ProfileHandler) HandleUpdateCard(c *fiber.Ctx) error {
	var req services.CardRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	cards, err := h.service.UpdateCard(c.Params("id"), c.Params("cardId"), req)
	if err != nil {
		return fail(c, h.logger, "Could not update card", err)
	}
	return c.JSON(cards)
}

// HandleDeleteCard removes a saved card and returns the remaining ones.
func (h *ProfileHandler) HandleDeleteCard(c *fiber.Ctx) error {
	cards, err := h.service.DeleteCard(c.Params("id"), c.Params("cardId"))
	if err != nil {
		return fail(c, h.logger, "Could not delete card", err)
	}
	return c.JSON(cards)
}
