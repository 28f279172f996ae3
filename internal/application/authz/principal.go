package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/pkg/jwt"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// PrincipalResolver convierte un bearer token en Principal. No consulta el almacén:
// la frescura de empresa/sede la verifica el Guard.
type PrincipalResolver struct {
	secret      string
	issuer      string
	revocations ports.RevocationStore
	log         *logger.Logger
}

// NewPrincipalResolver construye el resolvedor. revocations puede ser nil (sin logout).
func NewPrincipalResolver(secret, issuer string, revocations ports.RevocationStore, log *logger.Logger) *PrincipalResolver {
	return &PrincipalResolver{secret: secret, issuer: issuer, revocations: revocations, log: log}
}

// Resolve valida el token. Cualquier fallo (ausente, malformado, expirado, firma, rol, revocado,
// revocaciones inaccesibles) es domain.ErrUnauthenticated; el motivo solo va al log.
func (r *PrincipalResolver) Resolve(ctx context.Context, credential string) (access.Principal, error) {
	p, err := r.resolve(ctx, strings.TrimSpace(credential))
	if err != nil {
		r.log.Debug().Err(err).Msg("credencial rechazada")
		return access.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (r *PrincipalResolver) resolve(ctx context.Context, token string) (access.Principal, error) {
	if token == "" {
		return access.Principal{}, errors.New("token vacío")
	}
	claims, err := jwt.Parse(r.secret, r.issuer, token)
	if err != nil {
		return access.Principal{}, err
	}
	role, err := entity.ParseRole(claims.Role)
	if err != nil {
		return access.Principal{}, err
	}
	if r.revocations != nil {
		revoked, err := r.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return access.Principal{}, err
		}
		if revoked {
			return access.Principal{}, errors.New("token revocado")
		}
	}
	p := access.Principal{
		UserID:    claims.UserID,
		Role:      role,
		CompanyID: claims.CompanyID,
		DepotID:   claims.DepotID,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
