package services

import "shoplite/internal/models"

// MaxLineQty is the largest quantity a single cart line can hold.
const MaxLineQty = 999

// AddToCart adds qty units of product. A non-positive qty is ignored. When
// the product is already in the cart only its quantity grows; the title and
// price captured on first add are kept. The line is capped at MaxLineQty.
func AddToCart(cart *models.Cart, product models.Product, qty int) {
	if qty <= 0 {
		return
	}
	line, ok := cart.Get(product.ID)
	if !ok {
		line = models.CartLine{ProductID: product.ID, Title: product.Title, Price: product.Price}
	}
	line.Qty = capQty(line.Qty, qty)
	cart.Put(line)
}

// capQty adds qty to current without exceeding MaxLineQty.
func capQty(current, qty int) int {
	if qty >= MaxLineQty-current {
		return MaxLineQty
	}
	return current + qty
}

// UpdateQuantity sets the quantity of a line. A non-positive qty removes the
// line and quantities above MaxLineQty are capped. It reports false, leaving
// the cart unchanged, when qty is positive and the product is not in the cart.
func UpdateQuantity(cart *models.Cart, id int64, qty int) bool {
	if qty <= 0 {
		RemoveFromCart(cart, id)
		return true
	}
	line, ok := cart.Get(id)
	if !ok {
		return false
	}
	line.Qty = min(qty, MaxLineQty)
	cart.Put(line)
	return true
}

// RemoveFromCart deletes a line if present.
func RemoveFromCart(cart *models.Cart, id int64) {
	cart.Delete(id)
}

// ClearCart removes every line.
func ClearCart(cart *models.Cart) {
	cart.Reset()
}
