package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// authorizer lo implementa *authz.Guard.
type authorizer interface {
	Authorize(ctx context.Context, p access.Principal, op access.Operation, t access.Target) (access.Decision, error)
}

// base dependencias comunes de los handlers protegidos.
type base struct {
	guard authorizer
	log   *logger.Logger
}

// authorize consulta al Guard antes de cualquier lógica de negocio. Devuelve el principal y el
// alcance permitido (cero = sin filtro). Una denegación es domain.ErrForbidden.
func (b base) authorize(c *fiber.Ctx, op access.Operation, t access.Target) (access.Principal, access.ScopeFilter, error) {
	p, ok := GetPrincipal(c)
	if !ok {
		return access.Principal{}, access.ScopeFilter{}, domain.ErrUnauthenticated
	}
	d, err := b.guard.Authorize(c.Context(), p, op, t)
	if err != nil {
		return p, access.ScopeFilter{}, err
	}
	if !d.Allowed {
		// el Guard ya registró el motivo
		return p, access.ScopeFilter{}, domain.ErrForbidden
	}
	var scope access.ScopeFilter
	if d.Scope != nil {
		scope = *d.Scope
	}
	return p, scope, nil
}

// fail traduce un error de dominio a respuesta HTTP. Los errores no previstos se registran
// y el cliente solo ve un mensaje genérico.
func (b base) fail(c *fiber.Ctx, err error) error {
	status, body := classify(err)
	if status == fiber.StatusInternalServerError {
		b.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error en petición")
	}
	return c.Status(status).JSON(body)
}

func classify(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: "no autenticado"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "no autorizado"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrConflict):
		// el mensaje del conflicto concreto es seguro de mostrar
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: conflictMessage(err)}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "entrada inválida"}
	case errors.Is(err, domain.ErrPartialCreation):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "PARTIAL_CREATION", Message: "no se pudo completar la creación; no se guardó nada"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

func conflictMessage(err error) string {
	for _, known := range []error{
		domain.ErrEmailAlreadyExists,
		domain.ErrCompanyNameTaken,
		domain.ErrDepotCompanyMismatch,
		domain.ErrProtectedMember,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return domain.ErrConflict.Error()
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// pageFromQuery lee limit/offset; DefaultPage acota los valores.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	return page
}
