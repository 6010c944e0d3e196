package models

import "time"

// Product event types published on the broker.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductLowStock = "product.low_stock"
)

// ProductEvent describes a change to the catalog.
type ProductEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ProductID  uint      `json:"productId"`
	Name       string    `json:"name"`
	Stock      int       `json:"stock"`
	OccurredAt time.Time `json:"occurredAt"`
}
