package services_test

import (
	"fmt"
	"testing"
	"time"

	"shoplite/internal/models"
	"shoplite/internal/repositories"
	"shoplite/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderEventPublisher is a mock implementation of services.OrderEventPublisher
type MockOrderEventPublisher struct {
	mock.Mock
}

func (m *MockOrderEventPublisher) PublishOrderCreated(orderData map[string]interface{}) error {
	args := m.Called(orderData)
	return args.Error(0)
}

var validCustomer = models.Customer{Name: "Ada Lovelace", Email: "ada@example.com", Address: "12 rue de la Paix, Paris"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestOrderService_Checkout(t *testing.T) {
	publisher := new(MockOrderEventPublisher)
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	service := services.NewOrderService(publisher, zap.NewNop()).WithClock(fixedClock(at))

	publisher.On("PublishOrderCreated", mock.MatchedBy(func(msg map[string]interface{}) bool {
		return msg["orderID"] == "ORD-20250314-092653" && msg["total"] == 28.99
	})).Return(nil).Once()

	cart := cartWith(t, models.CartLine{ProductID: 1, Title: "Widget", Price: 10.00, Qty: 2})
	ledger := repositories.NewInMemoryOrderRepository()

	order, err := service.Checkout(cart, ledger, validCustomer, true)
	require.NoError(t, err)

	assert.Equal(t, "ORD-20250314-092653", order.ID)
	assert.Equal(t, at, order.CreatedAt)
	assert.Equal(t, validCustomer, order.Customer)
	assert.Equal(t, []models.CartLine{{ProductID: 1, Title: "Widget", Price: 10.00, Qty: 2}}, order.Items)
	assert.Equal(t, models.Totals{Items: 2, Subtotal: 20.00, Shipping: 4.99, Tax: 4.00, Grand: 28.99}, order.Totals)

	assert.True(t, cart.IsEmpty(), "checkout must clear the cart")
	assert.Equal(t, 1, ledger.Len())
	publisher.AssertExpectations(t)
}

func TestOrderService_CheckoutPreconditions(t *testing.T) {
	service := services.NewOrderService(nil, zap.NewNop())

	tests := []struct {
		name     string
		lines    []models.CartLine
		customer models.Customer
		agreed   bool
		reason   string
	}{
		{"empty cart", nil, validCustomer, true, "cart is empty"},
		{"missing name", []models.CartLine{{ProductID: 1, Title: "W", Price: 1, Qty: 1}}, models.Customer{Email: "a@b.c", Address: "x"}, true, "missing name"},
		{"blank email", []models.CartLine{{ProductID: 1, Title: "W", Price: 1, Qty: 1}}, models.Customer{Name: "A", Email: "   ", Address: "x"}, true, "missing email"},
		{"missing address", []models.CartLine{{ProductID: 1, Title: "W", Price: 1, Qty: 1}}, models.Customer{Name: "A", Email: "a@b.c"}, true, "missing address"},
		{"terms not accepted", []models.CartLine{{ProductID: 1, Title: "W", Price: 1, Qty: 1}}, validCustomer, false, "terms not accepted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := cartWith(t, tt.lines...)
			before := cart.Lines()
			ledger := repositories.NewInMemoryOrderRepository()

			order, err := service.Checkout(cart, ledger, tt.customer, tt.agreed)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, services.ErrCheckoutNotAllowed)
			assert.Contains(t, err.Error(), tt.reason)

			assert.Equal(t, before, cart.Lines())
			assert.Zero(t, ledger.Len())
		})
	}
}

func TestOrderService_SameSecondCheckoutsGetDistinctIDs(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 500, time.UTC)
	service := services.NewOrderService(nil, zap.NewNop()).WithClock(fixedClock(at))
	ledger := repositories.NewInMemoryOrderRepository()

	var got []string
	for i := 0; i < 3; i++ {
		cart := cartWith(t, models.CartLine{ProductID: 1, Title: "Widget", Price: 10, Qty: 1})
		order, err := service.Checkout(cart, ledger, validCustomer, true)
		require.NoError(t, err)
		got = append(got, order.ID)
	}
	assert.Equal(t, []string{"ORD-20250314-092653", "ORD-20250314-092653-2", "ORD-20250314-092653-3"}, got)
}

func TestOrderService_ListOrdersNewestFirst(t *testing.T) {
	clock := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	service := services.NewOrderService(nil, zap.NewNop()).WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	ledger := repositories.NewInMemoryOrderRepository()

	for i := 1; i <= 3; i++ {
		cart := cartWith(t, models.CartLine{ProductID: int64(i), Title: fmt.Sprintf("P%d", i), Price: 1, Qty: i})
		_, err := service.Checkout(cart, ledger, validCustomer, true)
		require.NoError(t, err)
	}

	orders, err := service.ListOrders(ledger)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-20250101-100300", orders[0].ID)
	assert.Equal(t, "ORD-20250101-100100", orders[2].ID)

	stored, err := ledger.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250101-100100", stored[0].ID, "ledger keeps insertion order")

	order, err := service.GetOrder(ledger, "ORD-20250101-100200")
	require.NoError(t, err)
	assert.Equal(t, 2, order.Totals.Items)
}

func TestOrderService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	publisher := new(MockOrderEventPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(fmt.Errorf("broker down")).Once()
	service := services.NewOrderService(publisher, zap.NewNop())

	cart := cartWith(t, models.CartLine{ProductID: 1, Title: "Widget", Price: 10, Qty: 1})
	ledger := repositories.NewInMemoryOrderRepository()

	order, err := service.Checkout(cart, ledger, validCustomer, true)
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 1, ledger.Len())
	publisher.AssertExpectations(t)
}

func TestOrderService_CustomerFieldsAreTrimmed(t *testing.T) {
	service := services.NewOrderService(nil, zap.NewNop())
	cart := cartWith(t, models.CartLine{ProductID: 1, Title: "Widget", Price: 10, Qty: 1})

	order, err := service.Checkout(cart, repositories.NewInMemoryOrderRepository(),
		models.Customer{Name: "  Ada ", Email: " ada@example.com", Address: "Paris  "}, true)
	require.NoError(t, err)
	assert.Equal(t, models.Customer{Name: "Ada", Email: "ada@example.com", Address: "Paris"}, order.Customer)
}
