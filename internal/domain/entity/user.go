package entity

import (
	"fmt"
	"time"
)

// Estados de un usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema.
// Super admin: sin empresa ni sede. Admin: con empresa. Responsable y miembros: empresa y sede.
// CompanyID está desnormalizado desde la sede para acotar consultas sin recorrer la jerarquía.
type User struct {
	ID           string
	CompanyID    *string
	DepotID      *string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Company devuelve el ID de empresa o "" si no tiene.
func (u *User) Company() string {
	if u.CompanyID == nil {
		return ""
	}
	return *u.CompanyID
}

// Depot devuelve el ID de sede o "" si no tiene.
func (u *User) Depot() string {
	if u.DepotID == nil {
		return ""
	}
	return *u.DepotID
}

// AssignCompany fija la empresa de un usuario sin sede (admin).
func (u *User) AssignCompany(companyID string) {
	id := companyID
	u.CompanyID = &id
}

// AttachTo es el único camino que fija DepotID: asigna sede y empresa juntas.
// Un usuario con empresa no puede moverse a una sede de otra empresa.
func (u *User) AttachTo(d *Depot) error {
	if d == nil || d.ID == "" || d.CompanyID == "" {
		return fmt.Errorf("sede inválida")
	}
	if u.CompanyID != nil && *u.CompanyID != d.CompanyID {
		return fmt.Errorf("usuario %s de empresa %s no puede unirse a sede %s de empresa %s",
			u.ID, *u.CompanyID, d.ID, d.CompanyID)
	}
	companyID, depotID := d.CompanyID, d.ID
	u.CompanyID = &companyID
	u.DepotID = &depotID
	return nil
}

// Detach quita la sede conservando la empresa.
func (u *User) Detach() {
	u.DepotID = nil
}

// IsActive informa si el usuario puede autenticarse.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
