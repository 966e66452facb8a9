package repositories

import (
	"errors"

	"shoplite/internal/models"
)

var (
	// ErrOrderNotFound is returned when an order id is not in the ledger.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when appending an order whose id is taken.
	ErrDuplicateOrder = errors.New("order already exists")
)

// OrderRepository is an append-only order ledger. GetAll returns orders in
// the order they were appended.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Append(order *models.Order) error
	Len() int
}
