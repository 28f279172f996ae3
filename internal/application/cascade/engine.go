package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// Report conteo de filas afectadas por cada paso de una cascada.
type Report struct {
	UsersDeleted    int64
	UsersDetached   int64
	ClientsDeleted  int64
	ProductsDeleted int64
	StockRemoved    int64
	DepotsDeleted   int64
}

// Engine borra un nodo de la jerarquía y todo lo que cuelga de él dentro de una única transacción.
// La autorización ya la decidió el Guard antes de llamar aquí. No reintenta: si la transacción falla
// no queda ningún efecto y el reintento es cosa del llamador.
type Engine struct {
	tx       ports.TxRunner
	log      *logger.Logger
	observer ports.CascadeObserver
}

// NewEngine construye el motor. observer puede ser nil.
func NewEngine(tx ports.TxRunner, log *logger.Logger, observer ports.CascadeObserver) *Engine {
	return &Engine{tx: tx, log: log, observer: observer}
}

// DeleteCompany bloquea la empresa y borra, en este orden: usuarios → clientes → productos
// (con su stock) → sedes → empresa. Si la empresa no existe devuelve domain.ErrNotFound sin
// haber borrado nada. Dos cascadas concurrentes sobre la misma empresa se serializan por el
// bloqueo de fila; la segunda ve ErrNotFound.
func (e *Engine) DeleteCompany(ctx context.Context, companyID string) (Report, error) {
	start := time.Now()
	var rep Report
	err := e.tx.RunInTx(ctx, func(r repository.Repositories) error {
		rep = Report{}
		company, err := r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return fmt.Errorf("bloquear empresa: %w", err)
		}
		if company == nil {
			return domain.ErrNotFound
		}
		if rep.UsersDeleted, err = r.Users.DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("borrar usuarios: %w", err)
		}
		if rep.ClientsDeleted, err = r.Clients.DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("borrar clientes: %w", err)
		}
		if rep.ProductsDeleted, err = r.Products.DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("borrar productos: %w", err)
		}
		if rep.DepotsDeleted, err = r.Depots.DeleteByCompany(ctx, companyID); err != nil {
			return fmt.Errorf("borrar sedes: %w", err)
		}
		if err := r.Companies.Delete(ctx, companyID); err != nil {
			return fmt.Errorf("borrar empresa: %w", err)
		}
		return nil
	})
	e.finish(access.KindCompany, companyID, rep, err, start)
	if err != nil {
		return Report{}, err
	}
	return rep, nil
}

// DeleteDepot bloquea la sede, desvincula a sus usuarios (depot_id = NULL, conservan la empresa),
// elimina el stock registrado en ella y borra la sede.
func (e *Engine) DeleteDepot(ctx context.Context, depotID string) (Report, error) {
	start := time.Now()
	var rep Report
	err := e.tx.RunInTx(ctx, func(r repository.Repositories) error {
		rep = Report{}
		depot, err := r.Depots.GetForUpdate(ctx, depotID)
		if err != nil {
			return fmt.Errorf("bloquear sede: %w", err)
		}
		if depot == nil {
			return domain.ErrNotFound
		}
		if rep.UsersDetached, err = r.Users.DetachFromDepot(ctx, depotID); err != nil {
			return fmt.Errorf("desvincular usuarios: %w", err)
		}
		if rep.StockRemoved, err = r.Products.DeleteStockByDepot(ctx, depotID); err != nil {
			return fmt.Errorf("borrar stock de sede: %w", err)
		}
		if err := r.Depots.Delete(ctx, depotID); err != nil {
			return fmt.Errorf("borrar sede: %w", err)
		}
		rep.DepotsDeleted = 1
		return nil
	})
	e.finish(access.KindDepot, depotID, rep, err, start)
	if err != nil {
		return Report{}, err
	}
	return rep, nil
}

func (e *Engine) finish(kind access.ResourceKind, id string, rep Report, err error, start time.Time) {
	elapsed := time.Since(start)
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
		e.log.Info().Str("kind", string(kind)).Str("id", id).Msg("cascada: recurso inexistente")
	case err != nil:
		outcome = "error"
		e.log.Error().Err(err).Str("kind", string(kind)).Str("id", id).Msg("cascada revertida")
	default:
		e.log.Info().Str("kind", string(kind)).Str("id", id).
			Int64("users_deleted", rep.UsersDeleted).
			Int64("users_detached", rep.UsersDetached).
			Int64("clients_deleted", rep.ClientsDeleted).
			Int64("products_deleted", rep.ProductsDeleted).
			Int64("stock_removed", rep.StockRemoved).
			Int64("depots_deleted", rep.DepotsDeleted).
			Dur("elapsed", elapsed).
			Msg("cascada completada")
	}
	if e.observer != nil {
		e.observer.ObserveCascade(kind, outcome, elapsed)
	}
}
