package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// Guard motor de políticas: decide si un principal puede operar sobre un recurso según su
// posición en la jerarquía Company → Depot → Member. La cadena del recurso se relee en cada
// llamada; de los claims del token solo se confía en identidad y rol.
type Guard struct {
	chains   *ChainResolver
	users    repository.UserRepository
	depots   repository.DepotRepository
	log      *logger.Logger
	observer ports.DecisionObserver
}

// NewGuard construye el guard. observer puede ser nil.
func NewGuard(repos repository.Repositories, log *logger.Logger, observer ports.DecisionObserver) *Guard {
	return &Guard{
		chains:   NewChainResolver(repos),
		users:    repos.Users,
		depots:   repos.Depots,
		log:      log,
		observer: observer,
	}
}

// Authorize devuelve Allow (con filtro de alcance en create/list) o Deny con motivo.
// El error solo indica fallo del almacén; en ese caso no hay decisión.
func (g *Guard) Authorize(ctx context.Context, p access.Principal, op access.Operation, t access.Target) (access.Decision, error) {
	d, err := g.decide(ctx, p, op, t)
	if err != nil {
		g.log.Error().Err(err).
			Str("user_id", p.UserID).Str("op", string(op)).Str("kind", string(t.Kind)).Str("target_id", t.ID).
			Msg("guard: fallo resolviendo la cadena de propiedad")
		return access.Decision{}, err
	}

	ev := g.log.Debug()
	if !d.Allowed {
		ev = g.log.Info().Str("reason", string(d.Reason))
	}
	ev.Str("user_id", p.UserID).Str("role", p.Role.String()).
		Str("op", string(op)).Str("kind", string(t.Kind)).
		Str("target_id", t.ID).Str("parent_company", t.CompanyID).Str("parent_depot", t.DepotID).
		Str("outcome", d.Outcome()).
		Msg("guard: decisión")

	if g.observer != nil {
		g.observer.ObserveDecision(p.Role, op, t.Kind, d)
	}
	return d, nil
}

func (g *Guard) decide(ctx context.Context, p access.Principal, op access.Operation, t access.Target) (access.Decision, error) {
	if p.UserID == "" {
		return access.Deny(access.DenyRoleNotPermitted), nil
	}
	switch p.Role {
	case entity.RoleSuperAdmin:
		return g.superAdmin(ctx, op, t)
	case entity.RoleAdmin:
		return g.admin(ctx, p, op, t)
	case entity.RoleResponsableDepot:
		return g.responsable(ctx, p, op, t)
	case entity.RoleDelivery, entity.RolePreSales, entity.RoleWarehouse:
		return access.Deny(access.DenyRoleNotPermitted), nil
	default:
		g.log.Warn().Str("user_id", p.UserID).Str("role", p.Role.String()).Msg("guard: rol no contemplado")
		return access.Deny(access.DenyRoleNotPermitted), nil
	}
}

// superAdmin: ámbito global sobre empresas y lectura de sedes de cualquier empresa.
// Escritura de sedes, miembros, clientes y productos no le corresponde.
func (g *Guard) superAdmin(ctx context.Context, op access.Operation, t access.Target) (access.Decision, error) {
	switch t.Kind {
	case access.KindCompany:
		if op.IsCollection() {
			return access.Allow(nil), nil
		}
		if _, err := g.chains.ResolveChain(ctx, access.KindCompany, t.ID); err != nil {
			return denyOnNotFound(err)
		}
		return access.Allow(nil), nil

	case access.KindDepot:
		switch op {
		case access.OpRead:
			if _, err := g.chains.ResolveChain(ctx, access.KindDepot, t.ID); err != nil {
				return denyOnNotFound(err)
			}
			return access.Allow(nil), nil
		case access.OpList:
			if t.CompanyID == "" {
				return access.Allow(nil), nil
			}
			if _, err := g.chains.ResolveChain(ctx, access.KindCompany, t.CompanyID); err != nil {
				return denyOnNotFound(err)
			}
			return access.Allow(&access.ScopeFilter{CompanyID: t.CompanyID}), nil
		}
		return access.Deny(access.DenyRoleNotPermitted), nil

	default:
		return access.Deny(access.DenyRoleNotPermitted), nil
	}
}

// admin: recursos de su empresa vigente (releída del almacén, no del token).
func (g *Guard) admin(ctx context.Context, p access.Principal, op access.Operation, t access.Target) (access.Decision, error) {
	live, err := g.liveUser(ctx, p)
	if err != nil || live == nil {
		return access.Deny(access.DenyNotOwned), err
	}
	companyID := live.Company()
	if companyID == "" {
		return access.Deny(access.DenyNotOwned), nil
	}

	switch t.Kind {
	case access.KindCompany:
		if op != access.OpRead {
			return access.Deny(access.DenyRoleNotPermitted), nil
		}
		return g.ownedBy(ctx, access.KindCompany, t.ID, companyID)

	case access.KindDepot, access.KindClient, access.KindProduct:
		if !op.IsCollection() {
			return g.ownedBy(ctx, t.Kind, t.ID, companyID)
		}
		return g.companyCollection(ctx, t.CompanyID, companyID)

	case access.KindMember:
		if !op.IsCollection() {
			return g.ownedBy(ctx, access.KindMember, t.ID, companyID)
		}
		if t.DepotID == "" {
			return g.companyCollection(ctx, t.CompanyID, companyID)
		}
		chain, err := g.chains.ResolveChain(ctx, access.KindDepot, t.DepotID)
		if err != nil {
			return denyOnNotFound(err)
		}
		if chain.CompanyID != companyID {
			return access.Deny(access.DenyNotOwned), nil
		}
		return access.Allow(&access.ScopeFilter{CompanyID: companyID, DepotID: chain.DepotID}), nil

	default:
		return access.Deny(access.DenyRoleNotPermitted), nil
	}
}

// responsable: solo miembros de la sede cuyo responsable es él. La comparación es por sede,
// no por empresa: otra sede de la misma empresa se deniega.
func (g *Guard) responsable(ctx context.Context, p access.Principal, op access.Operation, t access.Target) (access.Decision, error) {
	if t.Kind != access.KindMember {
		return access.Deny(access.DenyRoleNotPermitted), nil
	}
	live, err := g.liveUser(ctx, p)
	if err != nil || live == nil {
		return access.Deny(access.DenyNotOwned), err
	}

	depotID := t.DepotID
	if !op.IsCollection() {
		chain, err := g.chains.ResolveChain(ctx, access.KindMember, t.ID)
		if err != nil {
			return denyOnNotFound(err)
		}
		depotID = chain.DepotID
	} else if depotID == "" {
		depotID = live.Depot()
	}
	if depotID == "" {
		return access.Deny(access.DenyNotOwned), nil
	}

	depot, err := g.depots.GetByID(ctx, depotID)
	if err != nil {
		return access.Decision{}, fmt.Errorf("leer sede %s: %w", depotID, err)
	}
	if depot == nil {
		return access.Deny(access.DenyNotFound), nil
	}
	if depot.ResponsableID != p.UserID {
		return access.Deny(access.DenyNotOwned), nil
	}
	return access.Allow(&access.ScopeFilter{CompanyID: depot.CompanyID, DepotID: depot.ID}), nil
}

// liveUser relee al principal. Devuelve nil si ya no existe o si su rol cambió desde la emisión del token.
func (g *Guard) liveUser(ctx context.Context, p access.Principal) (*entity.User, error) {
	u, err := g.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("releer principal %s: %w", p.UserID, err)
	}
	if u == nil || u.Role != p.Role || !u.IsActive() {
		return nil, nil
	}
	return u, nil
}

// ownedBy permite si la cadena vigente del recurso pertenece a companyID.
func (g *Guard) ownedBy(ctx context.Context, kind access.ResourceKind, id, companyID string) (access.Decision, error) {
	chain, err := g.chains.ResolveChain(ctx, kind, id)
	if err != nil {
		return denyOnNotFound(err)
	}
	if chain.CompanyID != companyID {
		return access.Deny(access.DenyNotOwned), nil
	}
	return access.Allow(nil), nil
}

// companyCollection create/list bajo una empresa: el padre pedido (o la empresa del admin si
// viene vacío) debe existir y ser la suya. El filtro devuelto indica dónde crear o qué listar.
func (g *Guard) companyCollection(ctx context.Context, requested, companyID string) (access.Decision, error) {
	parent := requested
	if parent == "" {
		parent = companyID
	}
	if _, err := g.chains.ResolveChain(ctx, access.KindCompany, parent); err != nil {
		return denyOnNotFound(err)
	}
	if parent != companyID {
		return access.Deny(access.DenyNotOwned), nil
	}
	return access.Allow(&access.ScopeFilter{CompanyID: companyID}), nil
}

func denyOnNotFound(err error) (access.Decision, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return access.Deny(access.DenyNotFound), nil
	}
	return access.Decision{}, err
}
