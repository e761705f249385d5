package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
)

// RolHandler administración de roles (sincronización de grupos técnicos).
type RolHandler struct {
	uc *acceso.AccesoUseCase
}

// NewRolHandler construye el handler de roles.
func NewRolHandler(uc *acceso.AccesoUseCase) *RolHandler {
	return &RolHandler{uc: uc}
}

// ActualizarGrupos godoc
// @Summary      Reemplazar los grupos técnicos de un rol
// @Description  Reescribe en la misma transacción las concesiones directas de
// @Description  todos los empleados activos con el rol (replace, no merge).
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID del rol"
// @Param        body  body  dto.ActualizarGruposRolRequest  true  "grupo_ids"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/grupos [put]
func (h *RolHandler) ActualizarGrupos(c *fiber.Ctx) error {
	var in dto.ActualizarGruposRolRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.SincronizarPermisosRol(c.Context(), GetEmpresaID(c), c.Params("id"), in.GrupoIDs); err != nil {
		return respuestaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
