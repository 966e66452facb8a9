package handlers

import (
	"errors"
	"fmt"
	"strings"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"
	"shoplite/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for checkout and order history.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout and order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

type checkoutRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Address    string `json:"address"`
	AgreeTerms bool   `json:"agree_terms"`
}

// HandleCheckout confirms the session cart as an order.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}

	customer := models.Customer{Name: req.Name, Email: req.Email, Address: req.Address}
	var order *models.Order
	err = sess.Do(func(st *session.State) error {
		order, err = h.service.Checkout(st.Cart, st.Orders, customer, req.AgreeTerms)
		return err
	})
	if err != nil {
		if errors.Is(err, services.ErrCheckoutNotAllowed) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Checkout is not possible yet",
				"error":   err.Error(),
			})
		}
		h.logger.Error("checkout failed", zap.String("session_id", sess.ID), zap.Error(err))
		return internalError(c, "Could not complete checkout", err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders lists the session's orders, most recent first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}
	var orders []models.Order
	err = sess.Do(func(st *session.State) error {
		orders, err = h.service.ListOrders(st.Orders)
		return err
	})
	if err != nil {
		h.logger.Error("listing orders failed", zap.String("session_id", sess.ID), zap.Error(err))
		return internalError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	sess, err := sessionFrom(c)
	if err != nil {
		return internalError(c, "Session unavailable", err)
	}
	var order *models.Order
	err = sess.Do(func(st *session.State) error {
		order, err = h.service.GetOrder(st.Orders, orderID)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return internalError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}
