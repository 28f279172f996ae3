package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo de una empresa. Availability lleva el stock por sede.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // único por empresa
	Name         string
	Price        decimal.Decimal
	Availability []StockEntry
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StockEntry disponibilidad de un producto en una sede.
// DepotID es una referencia por identificador, no una clave foránea.
type StockEntry struct {
	DepotID   string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// StockAt devuelve la cantidad disponible en la sede (cero si no hay registro).
func (p *Product) StockAt(depotID string) decimal.Decimal {
	for _, s := range p.Availability {
		if s.DepotID == depotID {
			return s.Quantity
		}
	}
	return decimal.Zero
}
