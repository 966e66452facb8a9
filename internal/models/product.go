package models

// Categories is the fixed set of catalog categories, in generation order.
var Categories = []string{"Maison", "Sport", "Tech", "Mode", "Beauté"}

// Product represents a catalog entry. Products are generated once per
// process and never mutated afterwards.
type Product struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string  `json:"title" gorm:"type:varchar(100)"`
	Description string  `json:"description" gorm:"type:varchar(500)"`
	Price       float64 `json:"price"`
	Category    string  `json:"category" gorm:"index;type:varchar(32)"`
	Rating      float64 `json:"rating"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image,omitempty" gorm:"type:varchar(255)"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}
