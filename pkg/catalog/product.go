// Package catalog holds the client-side product model shared by the API
// client, the store and the CLI.
package catalog

import (
	"strings"
	"time"
)

// LowStockThreshold is the stock level below which a product counts as low stock.
const LowStockThreshold = 5

// Product is the canonical client shape of a product. CreatedAt always equals
// UpdatedAt because the server keeps a single last-update timestamp.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"sku"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LowStock reports whether the product is below LowStockThreshold.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// ProductInput carries the fields of a create or update. A nil field was not
// supplied. Stock is a float so that fractional form input can be rejected
// instead of silently truncated.
type ProductInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *float64 `json:"stock,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
}

// Filter returns the products matching query (case-insensitive substring of
// name, description or SKU) and, when lowStockOnly is set, only those below
// the low-stock threshold. An all-blank query matches everything.
func Filter(products []Product, query string, lowStockOnly bool) []Product {
	filtered := make([]Product, 0, len(products))

	var q string
	if strings.TrimSpace(query) != "" {
		q = strings.ToLower(query)
	}

	for _, p := range products {
		if q != "" && !matches(p, q) {
			continue
		}
		if lowStockOnly && !p.LowStock() {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func matches(p Product, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery) ||
		strings.Contains(strings.ToLower(p.SKU), lowerQuery)
}
