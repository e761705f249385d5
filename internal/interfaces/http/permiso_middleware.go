package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
)

// permisoChecker contrato mínimo para verificar un permiso. Lo implementa
// *acceso.AccesoUseCase; la interfaz local evita el import circular.
type permisoChecker interface {
	VerificarPermiso(ctx context.Context, usuarioID, empresaID, codigo string) error
}

// RequierePermiso gate de endpoint por código de permiso. El checker acepta el
// código bajo cualquiera de sus escrituras con namespace de módulo. Debe usarse
// DESPUÉS de TenantMiddleware y AuthMiddleware.
//
// Comportamiento:
//   - 403 → permiso ausente, empleado no activo o cuenta sin activar.
//   - 503 → fallo de infraestructura al consultar permisos.
func RequierePermiso(codigo string, checker permisoChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usuarioID := GetUsuarioID(c)
		if usuarioID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "usuario no autenticado",
			})
		}
		err := checker.VerificarPermiso(c.Context(), usuarioID, GetEmpresaID(c), codigo)
		if err == nil {
			return c.Next()
		}
		if errors.Is(err, domain.ErrProhibido) || errors.Is(err, domain.ErrCuentaNoActivada) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "no tiene permiso para esta operación",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "PERMISSION_CHECK_FAILED",
			Message: "no se pudo verificar el permiso, intente más tarde",
		})
	}
}
