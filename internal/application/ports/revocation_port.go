package ports

import (
	"context"
	"time"
)

// RevocationStore lista de tokens revocados (logout). Las entradas caducan con el token.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
