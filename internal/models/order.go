package models

import "time"

// Customer holds the checkout form fields.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// Order is a receipt created by a successful checkout. It is never
// modified after it has been appended to a ledger.
type Order struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Customer  Customer   `json:"customer"`
	Items     []CartLine `json:"items"`
	Totals    Totals     `json:"totals"`
}
