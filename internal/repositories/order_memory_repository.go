package repositories

import (
	"fmt"
	"sync"

	"shoplite/internal/models"
)

// InMemoryOrderRepository is an in-memory, append-only OrderRepository.
type InMemoryOrderRepository struct {
	orders []models.Order
	byID   map[string]int
	mu     sync.RWMutex
}

// NewInMemoryOrderRepository creates a new instance of InMemoryOrderRepository.
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		byID: make(map[string]int),
	}
}

// GetAll returns all orders in insertion order.
func (r *InMemoryOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, len(r.orders))
	copy(orderList, r.orders)
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *InMemoryOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	order := r.orders[i]
	return &order, nil
}

// Append adds an order at the end of the ledger.
func (r *InMemoryOrderRepository) Append(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[order.ID]; ok {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrDuplicateOrder)
	}
	stored := *order
	stored.Items = append([]models.CartLine(nil), order.Items...)
	r.byID[order.ID] = len(r.orders)
	r.orders = append(r.orders, stored)
	return nil
}

// Len returns the number of orders in the ledger.
func (r *InMemoryOrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
