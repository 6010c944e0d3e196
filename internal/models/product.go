package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStatus is stored when a product is written without a status.
const DefaultStatus = "Active"

// LowStockThreshold is the stock level below which a product counts as low stock.
const LowStockThreshold = 5

// Product represents a row of the products table. JSON keys match the column
// names, which is the wire format the API clients consume. Price serializes as
// a decimal string.
//
// There is no creation timestamp: lastUpdate is the only time column.
type Product struct {
	ID                uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name              string          `json:"name" gorm:"size:255;not null"`
	Description       *string         `json:"description"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Stock             int             `json:"stock" gorm:"not null;default:0"`
	Category          *string         `json:"category" gorm:"size:255"`
	Location          *string         `json:"location" gorm:"size:255"`
	Image             *string         `json:"image" gorm:"size:1024"`
	Status            string          `json:"status" gorm:"size:32;not null;default:Active"`
	Brand             *string         `json:"brand" gorm:"size:255"`
	Sizes             *string         `json:"sizes" gorm:"size:255"`
	ProductCode       *string         `json:"productCode" gorm:"column:productCode;size:100"`
	OrderName         *string         `json:"orderName" gorm:"column:orderName;size:255"`
	StoreAvailability *string         `json:"storeAvailability" gorm:"column:storeAvailability;size:255"`
	FileType          *string         `json:"file_type" gorm:"column:file_type;size:255"`
	FileName          *string         `json:"file_name" gorm:"column:file_name;size:255"`
	FileSize          *int64          `json:"file_size" gorm:"column:file_size"`
	LastUpdate        time.Time       `json:"lastUpdate" gorm:"column:lastUpdate;index"`
}

// TableName pins the table name used by the original schema.
func (Product) TableName() string {
	return "products"
}

// LowStock reports whether the product is below the low-stock threshold.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// ProductInput is the body of POST and PUT /api/products. Every field is
// optional on the wire; a nil pointer means the client did not send it.
type ProductInput struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	Stock             *int             `json:"stock" validate:"omitempty,gte=0"`
	Category          *string          `json:"category"`
	Location          *string          `json:"location"`
	Image             *string          `json:"image"`
	Status            *string          `json:"status" validate:"omitempty,max=32"`
	Brand             *string          `json:"brand"`
	Sizes             *string          `json:"sizes"`
	ProductCode       *string          `json:"productCode" validate:"omitempty,max=100"`
	OrderName         *string          `json:"orderName"`
	StoreAvailability *string          `json:"storeAvailability"`
	FileType          *string          `json:"file_type"`
	FileName          *string          `json:"file_name"`
	FileSize          *int64           `json:"file_size" validate:"omitempty,gte=0"`
}
