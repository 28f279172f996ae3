package ports

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y no queda ningún efecto; si no, Commit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos repository.Repositories) error) error
}
