package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// MemberHandler maneja los miembros de sede. Lo usan el admin (toda su empresa) y el
// responsable (solo su sede).
type MemberHandler struct {
	base
	uc *usecase.MemberUseCase
}

// NewMemberHandler construye el handler.
func NewMemberHandler(uc *usecase.MemberUseCase, guard authorizer, log *logger.Logger) *MemberHandler {
	return &MemberHandler{base: base{guard: guard, log: log}, uc: uc}
}

// Create godoc
// @Summary      Crear miembro de sede
// @Tags         members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMemberRequest  true  "Sede, credenciales y cargo"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	_, scope, err := h.authorize(c, access.OpCreate, access.Target{Kind: access.KindMember, DepotID: in.DepotID})
	if err != nil {
		return h.fail(c, err)
	}
	if in.Email == "" || in.Password == "" || in.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email, password y role son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), scope.DepotID, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener miembro por ID
// @Tags         members
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/members/{id} [get]
func (h *MemberHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpRead, access.Target{Kind: access.KindMember, ID: id}); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar usuarios de la empresa o de una sede
// @Tags         members
// @Security     Bearer
// @Produce      json
// @Param        depot_id  query  string  false  "Sede"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.UserListResponse
// @Failure      403       {object}  dto.ErrorResponse
// @Router       /api/members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	_, scope, err := h.authorize(c, access.OpList, access.Target{Kind: access.KindMember, DepotID: c.Query("depot_id")})
	if err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.List(c.Context(), scope, pageFromQuery(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar miembro (nombre, cargo, estado)
// @Tags         members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del usuario"
// @Param        body  body  dto.UpdateMemberRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/members/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpUpdate, access.Target{Kind: access.KindMember, ID: id}); err != nil {
		return h.fail(c, err)
	}
	var in dto.UpdateMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Attach godoc
// @Summary      Mover miembro a otra sede de la misma empresa
// @Tags         members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del usuario"
// @Param        body  body  dto.AttachMemberRequest  true  "Sede destino"
// @Success      200   {object}  dto.UserResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/members/{id}/depot [put]
func (h *MemberHandler) Attach(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.AttachMemberRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.DepotID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "depot_id es requerido"})
	}
	// hace falta permiso sobre el miembro y sobre la sede destino
	if _, _, err := h.authorize(c, access.OpUpdate, access.Target{Kind: access.KindMember, ID: id}); err != nil {
		return h.fail(c, err)
	}
	if _, _, err := h.authorize(c, access.OpCreate, access.Target{Kind: access.KindMember, DepotID: in.DepotID}); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.AttachToDepot(c.Context(), id, in.DepotID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar miembro
// @Tags         members
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpDelete, access.Target{Kind: access.KindMember, ID: id}); err != nil {
		return h.fail(c, err)
	}
	if err := h.uc.Delete(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
