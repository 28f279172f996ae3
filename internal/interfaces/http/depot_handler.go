package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// DepotHandler maneja las peticiones HTTP para Depot (protegido).
type DepotHandler struct {
	base
	uc *usecase.DepotUseCase
}

// NewDepotHandler construye el handler.
func NewDepotHandler(uc *usecase.DepotUseCase, guard authorizer, log *logger.Logger) *DepotHandler {
	return &DepotHandler{base: base{guard: guard, log: log}, uc: uc}
}

// Create godoc
// @Summary      Crear sede con su responsable
// @Tags         depots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDepotRequest  true  "Sede y credenciales del responsable"
// @Success      201   {object}  dto.DepotCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/depots [post]
func (h *DepotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDepotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	_, scope, err := h.authorize(c, access.OpCreate, access.Target{Kind: access.KindDepot, CompanyID: in.CompanyID})
	if err != nil {
		return h.fail(c, err)
	}
	if in.Name == "" || in.Responsable.Email == "" || in.Responsable.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name, responsable.email y responsable.password son requeridos"})
	}
	out, err := h.uc.CreateWithResponsable(c.Context(), scope.CompanyID, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener sede por ID
// @Tags         depots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sede"
// @Success      200  {object}  dto.DepotResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/depots/{id} [get]
func (h *DepotHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpRead, access.Target{Kind: access.KindDepot, ID: id}); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar sedes
// @Tags         depots
// @Security     Bearer
// @Produce      json
// @Param        company_id  query  string  false  "Empresa (por defecto la del admin)"
// @Param        limit       query  int     false  "Límite"   default(20)
// @Param        offset      query  int     false  "Offset"   default(0)
// @Success      200         {object}  dto.DepotListResponse
// @Failure      403         {object}  dto.ErrorResponse
// @Router       /api/depots [get]
func (h *DepotHandler) List(c *fiber.Ctx) error {
	_, scope, err := h.authorize(c, access.OpList, access.Target{Kind: access.KindDepot, CompanyID: c.Query("company_id")})
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
// @Summary      Actualizar sede
// @Tags         depots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la sede"
// @Param        body  body  dto.UpdateDepotRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.DepotResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/depots/{id} [put]
func (h *DepotHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpUpdate, access.Target{Kind: access.KindDepot, ID: id}); err != nil {
		return h.fail(c, err)
	}
	var in dto.UpdateDepotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sede (sus usuarios quedan sin sede y su stock se borra)
// @Tags         depots
// @Security     Bearer
// @Param        id   path  string  true  "ID de la sede"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/depots/{id} [delete]
func (h *DepotHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpDelete, access.Target{Kind: access.KindDepot, ID: id}); err != nil {
		return h.fail(c, err)
	}
	if _, err := h.uc.Delete(c.Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stock godoc
// @Summary      Disponibilidad de productos en la sede
// @Tags         depots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sede"
// @Success      200  {object}  dto.DepotAvailabilityResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/depots/{id}/stock [get]
func (h *DepotHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, _, err := h.authorize(c, access.OpRead, access.Target{Kind: access.KindDepot, ID: id}); err != nil {
		return h.fail(c, err)
	}
	out, err := h.uc.Availability(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}
