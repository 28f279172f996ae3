package authz

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// ChainResolver resuelve la cadena de propiedad vigente de un recurso leyendo el almacén.
// Cada recurso guarda su empresa (y el usuario también su sede), así que basta una lectura.
type ChainResolver struct {
	repos repository.Repositories
}

// NewChainResolver construye el resolvedor sobre los repositorios (pool, no tx).
func NewChainResolver(repos repository.Repositories) *ChainResolver {
	return &ChainResolver{repos: repos}
}

// ResolveChain devuelve {CompanyID, DepotID} del recurso o domain.ErrNotFound.
// Para miembros la cadena sale directamente del usuario (empresa desnormalizada), sin pasar por la sede.
func (r *ChainResolver) ResolveChain(ctx context.Context, kind access.ResourceKind, id string) (access.Chain, error) {
	if id == "" {
		return access.Chain{}, domain.ErrNotFound
	}
	switch kind {
	case access.KindCompany:
		c, err := r.repos.Companies.GetByID(ctx, id)
		if err != nil {
			return access.Chain{}, fmt.Errorf("resolver empresa: %w", err)
		}
		if c == nil {
			return access.Chain{}, domain.ErrNotFound
		}
		return access.Chain{CompanyID: c.ID}, nil
	case access.KindDepot:
		d, err := r.repos.Depots.GetByID(ctx, id)
		if err != nil {
			return access.Chain{}, fmt.Errorf("resolver sede: %w", err)
		}
		if d == nil {
			return access.Chain{}, domain.ErrNotFound
		}
		return access.Chain{CompanyID: d.CompanyID, DepotID: d.ID}, nil
	case access.KindMember:
		u, err := r.repos.Users.GetByID(ctx, id)
		if err != nil {
			return access.Chain{}, fmt.Errorf("resolver miembro: %w", err)
		}
		if u == nil {
			return access.Chain{}, domain.ErrNotFound
		}
		return access.Chain{CompanyID: u.Company(), DepotID: u.Depot()}, nil
	case access.KindClient:
		c, err := r.repos.Clients.GetByID(ctx, id)
		if err != nil {
			return access.Chain{}, fmt.Errorf("resolver cliente: %w", err)
		}
		if c == nil {
			return access.Chain{}, domain.ErrNotFound
		}
		return access.Chain{CompanyID: c.CompanyID}, nil
	case access.KindProduct:
		p, err := r.repos.Products.GetByID(ctx, id)
		if err != nil {
			return access.Chain{}, fmt.Errorf("resolver producto: %w", err)
		}
		if p == nil {
			return access.Chain{}, domain.ErrNotFound
		}
		return access.Chain{CompanyID: p.CompanyID}, nil
	default:
		return access.Chain{}, domain.ErrNotFound
	}
}
