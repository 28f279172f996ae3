// Package access contiene los tipos del control de acceso jerárquico:
// quién actúa (Principal), sobre qué (Target) y con qué resultado (Decision).
package access

import (
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Principal identidad autenticada de una petición. Se pasa explícitamente a cada llamada;
// CompanyID y DepotID son los del momento de emisión del token.
type Principal struct {
	UserID    string
	Role      entity.Role
	CompanyID string
	DepotID   string
	TokenID   string
	ExpiresAt time.Time
}

// Operation operación solicitada sobre un recurso.
type Operation string

const (
	OpCreate Operation = "create"
	OpRead   Operation = "read"
	OpList   Operation = "list"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// IsCollection informa si la operación no apunta a un recurso concreto.
func (o Operation) IsCollection() bool {
	return o == OpCreate || o == OpList
}

// ResourceKind tipo de recurso de la jerarquía.
type ResourceKind string

const (
	KindCompany ResourceKind = "company"
	KindDepot   ResourceKind = "depot"
	KindMember  ResourceKind = "member"
	KindClient  ResourceKind = "client"
	KindProduct ResourceKind = "product"
)

// Target recurso objetivo. ID para operaciones sobre un recurso; CompanyID/DepotID como padre
// en create/list (DepotID solo aplica a miembros).
type Target struct {
	Kind      ResourceKind
	ID        string
	CompanyID string
	DepotID   string
}

// Chain cadena de propiedad vigente de un recurso.
type Chain struct {
	CompanyID string
	DepotID   string
}

// ScopeFilter predicado que acota un listado. Campos vacíos no filtran;
// un ScopeFilter cero equivale a "todo" y solo lo recibe el super admin.
type ScopeFilter struct {
	CompanyID string
	DepotID   string
}

// DenyReason motivo interno de una denegación. Nunca se devuelve al cliente.
type DenyReason string

const (
	DenyNotOwned         DenyReason = "not_owned"
	DenyNotFound         DenyReason = "not_found"
	DenyRoleNotPermitted DenyReason = "role_not_permitted"
)

// Decision resultado del guard.
type Decision struct {
	Allowed bool
	Reason  DenyReason   // solo si !Allowed
	Scope   *ScopeFilter // solo en listados permitidos; nil = sin filtro
}

// Allow construye una decisión positiva con filtro opcional.
func Allow(scope *ScopeFilter) Decision {
	return Decision{Allowed: true, Scope: scope}
}

// Deny construye una denegación.
func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Outcome etiqueta corta para logs y métricas.
func (d Decision) Outcome() string {
	if d.Allowed {
		return "allow"
	}
	return "deny_" + string(d.Reason)
}
