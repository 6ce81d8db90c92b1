package models

import "time"

type CartItem struct {
	ItemID    string    `json:"itemId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}

// CartItemInput keeps quantity and price optional so the service can tell a
// missing value from zero.
type CartItemInput struct {
	ItemID   string   `json:"itemId"`
	Name     string   `json:"name"`
	Quantity *int     `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

type CartTotal struct {
	Items int     `json:"items"`
	Total float64 `json:"total"`
}
