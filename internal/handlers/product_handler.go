package handlers

import (
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, validate *validator.Validate, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validate,
		logger:   orNop(logger),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public, writes need an admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/deals", h.HandleDeals)
	productRoutes.Get("/:id", h.HandleGetProduct)

	admin := middleware.AdminOnly()
	productRoutes.Post("/", auth, admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, admin, h.HandleDeleteProduct)
	productRoutes.Patch("/:id/decrement", auth, admin, h.HandleDecrementStock)
}

// HandleListProducts lists the catalog. Supported query parameters: q, brand,
// category (both comma separated), minPrice, maxPrice, minRating, sort, page, limit.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query",
			"error":   err.Error(),
		})
	}
	page, err := h.service.ListProducts(filter)
	if err != nil {
		return fail(c, h.logger, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

// HandleDeals lists discounted products with the same filters as the catalog.
func (h *ProductHandler) HandleDeals(c *fiber.Ctx) error {
	filter, err := productFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query",
			"error":   err.Error(),
		})
	}
	page, err := h.service.Deals(filter)
	if err != nil {
		return fail(c, h.logger, "Could not retrieve deals", err)
	}
	return c.JSON(page)
}

// HandleGetProduct retrieves a single product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return fail(c, h.logger, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct adds a product to the catalog.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if ok, err := parseAndValidate(c, h.validate, &product); !ok {
		return err
	}
	if err := h.service.CreateProduct(&product); err != nil {
		return fail(c, h.logger, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces a product. The path id wins over any id in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if ok, err := parseAndValidate(c, h.validate, &product); !ok {
		return err
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(&product); err != nil {
		return fail(c, h.logger, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return fail(c, h.logger, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DecrementRequest takes units out of stock.
type DecrementRequest struct {
	DecrementBy int `json:"decrementBy" validate:"required,min=1"`
}

// HandleDecrementStock lowers the stock of a product, stopping at zero.
func (h *ProductHandler) HandleDecrementStock(c *fiber.Ctx) error {
	var req DecrementRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	product, err := h.service.DecrementStock(c.Params("id"), req.DecrementBy)
	if err != nil {
		return fail(c, h.logger, "Could not decrement stock", err)
	}
	return c.JSON(product)
}

func productFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Search:     strings.TrimSpace(c.Query("q")),
		Brands:     csv(c.Query("brand")),
		Categories: csv(c.Query("category")),
		Sort:       c.Query("sort"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 0),
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &filter.PriceMin, "maxPrice": &filter.PriceMax} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, err
		}
		*dst = &d
	}
	if raw := c.Query("minRating"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, err
		}
		filter.RatingMin = r
	}
	return filter, nil
}

func csv(raw string) []string {
	return lo.FilterMap(strings.Split(raw, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}
