package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventory/pkg/catalog"
)

// wireProduct is a product row as the server sends it. Price and stock may
// arrive as numbers or numeric strings.
type wireProduct struct {
	ID          json.RawMessage `json:"id"`
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Stock       json.RawMessage `json:"stock"`
	ProductCode *string         `json:"productCode"`
	Image       *string         `json:"image"`
	LastUpdate  *string         `json:"lastUpdate"`
}

func (c *Client) toProduct(w wireProduct) (catalog.Product, error) {
	id := rawString(w.ID)

	price, err := c.number(w.Price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s: price: %w", id, err)
	}
	stock, err := c.number(w.Stock)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s: stock: %w", id, err)
	}

	updated := time.Now().UTC()
	if w.LastUpdate != nil {
		if t, err := time.Parse(time.RFC3339Nano, *w.LastUpdate); err == nil {
			updated = t
		}
	}

	f, _ := price.Float64()
	return catalog.Product{
		ID:          id,
		Name:        valueOr(w.Name, ""),
		Description: valueOr(w.Description, ""),
		Price:       f,
		Stock:       int(stock.IntPart()),
		SKU:         valueOr(w.ProductCode, ""),
		ImageURL:    c.ResolveImageURL(valueOr(w.Image, "")),
		CreatedAt:   updated,
		UpdatedAt:   updated,
	}, nil
}

// number reads a JSON number or numeric string. Absent and null values are
// zero; malformed values are zero unless strict numbers are enabled.
func (c *Client) number(raw json.RawMessage) (decimal.Decimal, error) {
	s := rawString(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		if c.strictNumbers {
			return decimal.Zero, fmt.Errorf("not a number: %q", s)
		}
		c.log.Debug().Str("value", s).Msg("non-numeric value read as 0")
		return decimal.Zero, nil
	}
	return d, nil
}

// rawString returns the text of a JSON scalar with string quotes removed.
// null and absent values give "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(raw)
}
