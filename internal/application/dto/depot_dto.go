package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDepotRequest entrada para crear una sede junto con su responsable.
// CompanyID vacío = empresa del administrador.
type CreateDepotRequest struct {
	CompanyID   string    `json:"company_id" validate:"omitempty,uuid"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Capacity    int       `json:"capacity" validate:"min=0"`
	Address     string    `json:"address"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Responsable UserInput `json:"responsable" validate:"required"`
}

// UpdateDepotRequest entrada para actualizar una sede. La empresa no se puede cambiar.
type UpdateDepotRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Capacity  *int     `json:"capacity" validate:"omitempty,min=0"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// DepotResponse salida de una sede.
type DepotResponse struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	ResponsableID string    `json:"responsable_id"`
	Name          string    `json:"name"`
	Capacity      int       `json:"capacity"`
	Address       string    `json:"address"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DepotCreatedResponse sede recién creada y su responsable.
type DepotCreatedResponse struct {
	Depot       DepotResponse `json:"depot"`
	Responsable UserResponse  `json:"responsable"`
}

// DepotListResponse lista paginada de sedes.
type DepotListResponse struct {
	Items []DepotResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// DepotStockItem disponibilidad de un producto en la sede.
type DepotStockItem struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// DepotAvailabilityResponse stock registrado en una sede.
type DepotAvailabilityResponse struct {
	DepotID string           `json:"depot_id"`
	Items   []DepotStockItem `json:"items"`
}
