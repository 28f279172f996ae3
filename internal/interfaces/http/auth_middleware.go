package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
)

// LocalPrincipal clave de c.Locals donde queda el principal autenticado.
const LocalPrincipal = "principal"

// principalResolver lo implementa *authz.PrincipalResolver.
type principalResolver interface {
	Resolve(ctx context.Context, credential string) (access.Principal, error)
}

// AuthMiddleware valida el Bearer Token y guarda el Principal en c.Locals.
// Cualquier fallo responde 401 con el mismo cuerpo; el motivo no se expone.
func AuthMiddleware(resolver principalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthenticated(c)
		}
		p, err := resolver.Resolve(c.Context(), parts[1])
		if err != nil {
			return unauthenticated(c)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// GetPrincipal devuelve el principal del contexto (después del middleware de auth).
func GetPrincipal(c *fiber.Ctx) (access.Principal, bool) {
	p, ok := c.Locals(LocalPrincipal).(access.Principal)
	return p, ok
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "no autenticado"})
}
