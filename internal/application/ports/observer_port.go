package ports

import (
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// DecisionObserver recibe cada decisión del guard (métricas).
type DecisionObserver interface {
	ObserveDecision(role entity.Role, op access.Operation, kind access.ResourceKind, d access.Decision)
}

// CascadeObserver recibe el resultado de cada cascada.
type CascadeObserver interface {
	ObserveCascade(kind access.ResourceKind, outcome string, elapsed time.Duration)
}
