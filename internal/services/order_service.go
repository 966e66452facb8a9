package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const orderIDLayout = "20060102-150405"

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(orderData map[string]interface{}) error
}

// OrderService handles checkout and the order ledger of a session.
type OrderService struct {
	publisher OrderEventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(publisher OrderEventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for order ids and timestamps.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CanCheckout reports why a checkout would be refused, or nil if it is allowed.
func (s *OrderService) CanCheckout(cart *models.Cart, customer models.Customer, agreedToTerms bool) error {
	if cart.IsEmpty() {
		return fmt.Errorf("%w: cart is empty", ErrCheckoutNotAllowed)
	}
	customer = normalizeCustomer(customer)
	if err := s.validate.Struct(customer); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("%w: missing %s", ErrCheckoutNotAllowed, strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: %v", ErrCheckoutNotAllowed, err)
	}
	if !agreedToTerms {
		return fmt.Errorf("%w: terms not accepted", ErrCheckoutNotAllowed)
	}
	return nil
}

// Checkout turns the cart into an order appended to the ledger and empties
// the cart. When a precondition fails nothing is changed and the returned
// error wraps ErrCheckoutNotAllowed.
func (s *OrderService) Checkout(cart *models.Cart, ledger repositories.OrderRepository, customer models.Customer, agreedToTerms bool) (*models.Order, error) {
	if err := s.CanCheckout(cart, customer, agreedToTerms); err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	order := &models.Order{
		ID:        nextOrderID(ledger, createdAt),
		CreatedAt: createdAt,
		Customer:  normalizeCustomer(customer),
		Items:     cart.Lines(),
		Totals:    ComputeTotals(cart),
	}

	if err := ledger.Append(order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	ClearCart(cart)

	s.logger.Info("order confirmed",
		zap.String("order_id", order.ID),
		zap.Int("items", order.Totals.Items),
		zap.Float64("total", order.Totals.Grand))
	s.publishCreated(order)

	return order, nil
}

// ListOrders returns the ledger most recent first. The ledger itself keeps
// insertion order.
func (s *OrderService) ListOrders(ledger repositories.OrderRepository) ([]models.Order, error) {
	orders, err := ledger.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	return orders, nil
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(ledger repositories.OrderRepository, id string) (*models.Order, error) {
	return ledger.GetByID(id)
}

func (s *OrderService) publishCreated(order *models.Order) {
	if s.publisher == nil {
		s.logger.Debug("no event publisher configured, skipping order.created", zap.String("order_id", order.ID))
		return
	}

	productIDs := make([]int64, 0, len(order.Items))
	for _, it := range order.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	msg := map[string]interface{}{
		"orderID":    order.ID,
		"createdAt":  order.CreatedAt.Format(time.RFC3339),
		"email":      order.Customer.Email,
		"items":      order.Totals.Items,
		"productIDs": productIDs,
		"total":      order.Totals.Grand,
	}
	if err := s.publisher.PublishOrderCreated(msg); err != nil {
		s.logger.Warn("failed to publish order created event", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// nextOrderID derives ORD-YYYYMMDD-HHMMSS from t and appends -2, -3, ...
// when the ledger already holds an order created in the same second.
func nextOrderID(ledger repositories.OrderRepository, t time.Time) string {
	base := "ORD-" + t.UTC().Format(orderIDLayout)
	id := base
	for n := 2; ; n++ {
		if _, err := ledger.GetByID(id); err != nil {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func normalizeCustomer(c models.Customer) models.Customer {
	return models.Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
}
