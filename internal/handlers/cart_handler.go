package handlers

import (
	"errors"
	"fmt"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"
	"shoplite/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	catalog  *services.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(catalog *services.CatalogService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Get("/totals", h.HandleGetTotals)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:id", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Get("/export", h.HandleExport)
	cartRoutes.Post("/import", h.HandleImport)
}

var errNotInCart = errors.New("product not in cart")

type cartView struct {
	Items  []models.CartLine `json:"items"`
	Totals models.Totals     `json:"totals"`
}

func viewOf(cart *models.Cart) cartView {
	return cartView{Items: cart.Lines(), Totals: services.ComputeTotals(cart)}
}

// withCart runs an action on the session cart and answers with the new cart view.
func (h *CartHandler) withCart(c *fiber.Ctx, status int, action func(cart *models.Cart) error) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}
	var view cartView
	err = sess.Do(func(st *session.State) error {
		if err := action(st.Cart); err != nil {
			return err
		}
		view = viewOf(st.Cart)
		return nil
	})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(view)
}

// HandleGetCart returns the cart lines with their totals.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return h.withCart(c, fiber.StatusOK, func(*models.Cart) error { return nil })
}

// HandleGetTotals returns the pricing breakdown only.
func (h *CartHandler) HandleGetTotals(c *fiber.Ctx) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}
	var totals models.Totals
	err = sess.Do(func(st *session.State) error {
		totals = services.ComputeTotals(st.Cart)
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(totals)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	return h.withCart(c, fiber.StatusOK, func(cart *models.Cart) error {
		services.ClearCart(cart)
		return nil
	})
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Qty       *int  `json:"qty" validate:"omitempty,lte=999"`
}

// HandleAddItem adds a catalog product to the cart. A missing qty adds one
// unit; a qty of zero or less leaves the cart as it is.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	product, err := h.catalog.GetProduct(req.ProductID)
	if err != nil {
		return h.productLookupFailed(c, req.ProductID, err)
	}
	if qty <= 0 {
		return h.HandleGetCart(c)
	}
	if !product.InStock() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("%s is out of stock", product.Title),
		})
	}
	if qty > product.Stock {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("Only %d units of %s available", product.Stock, product.Title),
		})
	}

	return h.withCart(c, fiber.StatusOK, func(cart *models.Cart) error {
		services.AddToCart(cart, *product, qty)
		h.logger.Debug("added to cart", zap.Int64("product_id", product.ID), zap.Int("qty", qty))
		return nil
	})
}

type updateItemRequest struct {
	Qty *int `json:"qty" validate:"required,lte=999"`
}

// HandleUpdateItem sets the quantity of a line; zero or less removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	qty := *req.Qty

	// Lines imported from a file may reference ids outside the catalog;
	// only catalog products carry a stock limit.
	if product, err := h.catalog.GetProduct(id); err == nil && qty > product.Stock {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("Only %d units of %s available", product.Stock, product.Title),
		})
	}

	err = h.withCart(c, fiber.StatusOK, func(cart *models.Cart) error {
		if !services.UpdateQuantity(cart, id, qty) {
			return errNotInCart
		}
		return nil
	})
	if errors.Is(err, errNotInCart) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d is not in the cart", id),
		})
	}
	return err
}

// HandleRemoveItem removes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}
	return h.withCart(c, fiber.StatusOK, func(cart *models.Cart) error {
		services.RemoveFromCart(cart, id)
		return nil
	})
}

// HandleExport downloads the cart as CSV or JSON. An empty cart answers 204.
func (h *CartHandler) HandleExport(c *fiber.Ctx) error {
	format, err := services.ParseExportFormat(c.Query("format", string(services.FormatJSON)))
	if err != nil {
		return badRequest(c, "Unsupported export format", err)
	}
	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}

	var (
		data []byte
		ok   bool
	)
	err = sess.Do(func(st *session.State) error {
		data, ok, err = services.Export(st.Cart, format)
		return err
	})
	if err != nil {
		h.logger.Error("cart export failed", zap.String("session_id", sess.ID), zap.Error(err))
		return internalError(c, "Could not export cart", err)
	}
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="cart.%s"`, format))
	return c.Send(data)
}

// HandleImport replaces the cart with the JSON lines in the request body.
func (h *CartHandler) HandleImport(c *fiber.Ctx) error {
	body := c.Body()
	var (
		formatErr     *services.FormatError
		validationErr *services.ValidationError
	)
	err := h.withCart(c, fiber.StatusOK, func(cart *models.Cart) error {
		return services.Import(cart, body)
	})
	switch {
	case errors.As(err, &formatErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "Invalid cart import",
			"error_type": "format_error",
			"error":      formatErr.Error(),
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":    "Invalid cart import",
			"error_type": "validation_error",
			"error":      validationErr.Error(),
			"index":      validationErr.Index,
			"field":      validationErr.Field,
		})
	}
	return err
}

func (h *CartHandler) productLookupFailed(c *fiber.Ctx, id int64, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %d not found", id),
		})
	}
	h.logger.Error("getting product failed", zap.Int64("product_id", id), zap.Error(err))
	return internalError(c, "Could not retrieve product", err)
}
