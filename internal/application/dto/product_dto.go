package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. CompanyID vacío = empresa del administrador.
type CreateProductRequest struct {
	CompanyID string          `json:"company_id" validate:"omitempty,uuid"`
	SKU       string          `json:"sku" validate:"required,min=1,max=100"`
	Name      string          `json:"name" validate:"required,min=1,max=200"`
	Price     decimal.Decimal `json:"price"`
}

// SetAvailabilityRequest fija el stock de un producto en una sede.
type SetAvailabilityRequest struct {
	DepotID  string          `json:"depot_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
}

// StockEntryResponse stock de un producto en una sede.
type StockEntryResponse struct {
	DepotID   string          `json:"depot_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string               `json:"id"`
	CompanyID    string               `json:"company_id"`
	SKU          string               `json:"sku"`
	Name         string               `json:"name"`
	Price        decimal.Decimal      `json:"price"`
	Availability []StockEntryResponse `json:"availability"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
