package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"shoplite/internal/repositories"
	"shoplite/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for the product catalog.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleQueryProducts)
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

type productQuery struct {
	Q         string   `query:"q"`
	Category  []string `query:"category"`
	MinRating float64  `query:"min_rating" validate:"gte=0,lte=5"`
	Sort      string   `query:"sort"`
	Page      int      `query:"page" validate:"gte=0"`
	PerPage   int      `query:"per_page" validate:"omitempty,oneof=6 9 12 15 18 24"`
}

// HandleQueryProducts searches, filters, sorts and paginates the catalog.
func (h *CatalogHandler) HandleQueryProducts(c *fiber.Ctx) error {
	var q productQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters", err)
	}
	if err := h.validate.Struct(q); err != nil {
		return validationFailed(c, err)
	}

	sortKey, err := services.ParseSortKey(q.Sort)
	if err != nil {
		return badRequest(c, "Invalid sort key", err)
	}
	priceRange, err := parsePriceRange(c)
	if err != nil {
		return badRequest(c, "Invalid price range", err)
	}

	page, err := h.service.Query(services.CatalogQuery{
		Filter: services.Filter{
			Query:      q.Q,
			Categories: splitCategories(q.Category),
			Price:      priceRange,
			MinRating:  q.MinRating,
		},
		Sort:     sortKey,
		PageSize: q.PerPage,
		Page:     q.Page,
	})
	if err != nil {
		h.logger.Error("catalog query failed", zap.Error(err))
		return internalError(c, "Could not query products", err)
	}
	return c.JSON(page)
}

// HandleGetCategories lists the catalog categories and price bounds.
func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		h.logger.Error("listing categories failed", zap.Error(err))
		return internalError(c, "Could not retrieve categories", err)
	}
	lo, hi, err := h.service.PriceBounds()
	if err != nil {
		return internalError(c, "Could not retrieve price bounds", err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
		"min_price":  lo,
		"max_price":  hi,
		"page_sizes": services.PageSizes,
	})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *CatalogHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	product, err := h.service.GetProduct(id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %d not found", id),
			})
		}
		h.logger.Error("getting product failed", zap.Int64("product_id", id), zap.Error(err))
		return internalError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// parsePriceRange reads min_price/max_price. Without either, the price is
// unconstrained.
func parsePriceRange(c *fiber.Ctx) (*services.PriceRange, error) {
	rawMin, rawMax := c.Query("min_price"), c.Query("max_price")
	if rawMin == "" && rawMax == "" {
		return nil, nil
	}
	r := &services.PriceRange{Min: 0, Max: math.MaxFloat64}
	if rawMin != "" {
		v, err := strconv.ParseFloat(rawMin, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("min_price must be a non-negative number, got %q", rawMin)
		}
		r.Min = v
	}
	if rawMax != "" {
		v, err := strconv.ParseFloat(rawMax, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("max_price must be a non-negative number, got %q", rawMax)
		}
		r.Max = v
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("min_price %.2f exceeds max_price %.2f", r.Min, r.Max)
	}
	return r, nil
}

// splitCategories accepts both repeated and comma-separated category params.
func splitCategories(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
