package entity

import "time"

// Depot sede/almacén de una empresa. CompanyID es obligatorio e inmutable tras la creación.
type Depot struct {
	ID            string
	CompanyID     string
	ResponsableID string // usuario con rol responsable_depot creado junto con la sede
	Name          string
	Capacity      int
	Address       string
	Latitude      float64
	Longitude     float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
