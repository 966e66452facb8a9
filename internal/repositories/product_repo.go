package repositories

import (
	"errors"

	"shoplite/internal/models"
)

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access.
// GetAll returns products ordered by id.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id int64) (*models.Product, error)
	CreateBatch(products []models.Product) error
	Count() (int64, error)
}
