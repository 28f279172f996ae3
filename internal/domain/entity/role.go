package entity

import (
	"fmt"
	"strings"
)

// Role rol cerrado de un usuario. Solo se construye con ParseRole o con las constantes.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleAdmin            Role = "admin"
	RoleResponsableDepot Role = "responsable_depot"
	// Puestos de trabajo de los miembros de una sede.
	RoleDelivery  Role = "delivery"
	RolePreSales  Role = "pre_sales"
	RoleWarehouse Role = "warehouse"
)

var allRoles = []Role{
	RoleSuperAdmin, RoleAdmin, RoleResponsableDepot,
	RoleDelivery, RolePreSales, RoleWarehouse,
}

// ParseRole valida un rol recibido como texto (token, DTO, fila de BD).
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range allRoles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("rol desconocido %q", s)
}

// IsJobTitle informa si el rol es un puesto de miembro de sede (delivery, pre_sales, warehouse).
func (r Role) IsJobTitle() bool {
	switch r {
	case RoleDelivery, RolePreSales, RoleWarehouse:
		return true
	}
	return false
}

// IsDepotScoped informa si el rol exige referencia a una sede.
func (r Role) IsDepotScoped() bool {
	return r == RoleResponsableDepot || r.IsJobTitle()
}

func (r Role) String() string { return string(r) }
