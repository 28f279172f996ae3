package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
)

var _ ports.RevocationStore = (*Revocations)(nil)

// Revocations lista de tokens revocados del proceso. Se usa cuando no hay Redis configurado;
// no se comparte entre réplicas.
type Revocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewRevocations crea una lista vacía.
func NewRevocations() *Revocations {
	return &Revocations{entries: map[string]time.Time{}, now: time.Now}
}

func (r *Revocations) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	// purga perezosa de entradas caducadas
	for id, exp := range r.entries {
		if !exp.After(now) {
			delete(r.entries, id)
		}
	}
	if until.After(now) {
		r.entries[tokenID] = until
	}
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.entries[tokenID]
	return ok && exp.After(r.now()), nil
}
