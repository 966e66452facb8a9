package handlers

import (
	"encoding/json"
	"fmt"

	"shoplite/internal/money"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type orderCreatedEvent struct {
	OrderID    string  `json:"orderID"`
	CreatedAt  string  `json:"createdAt"`
	Email      string  `json:"email"`
	Items      int     `json:"items"`
	ProductIDs []int64 `json:"productIDs"`
	Total      float64 `json:"total"`
}

// NewOrderEventHandler returns a consumer callback that records a receipt
// line for every order.created message.
func NewOrderEventHandler(logger *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event orderCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode order event %d: %w", msg.DeliveryTag, err)
		}
		if event.OrderID == "" {
			return fmt.Errorf("order event %d has no order id", msg.DeliveryTag)
		}
		logger.Info("receipt",
			zap.String("order_id", event.OrderID),
			zap.String("created_at", event.CreatedAt),
			zap.String("email", event.Email),
			zap.Int("items", event.Items),
			zap.Int64s("product_ids", event.ProductIDs),
			zap.String("total", money.Format(event.Total)))
		return nil
	}
}
