package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/pkg/jwt"
)

// revocadoChecker contrato mínimo del middleware sobre la lista de revocación.
// Lo implementa auth.RevocadorSesiones; la interfaz local evita el import del
// paquete de aplicación completo.
type revocadoChecker interface {
	EstaRevocado(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware valida el Bearer Token JWT, rechaza jti revocados y cruza la
// empresa del token contra el tenant ya resuelto: una credencial emitida para
// una empresa no sirve en otra aunque la firma sea válida. Debe usarse DESPUÉS
// de TenantMiddleware.
func AuthMiddleware(jwtSecret string, revocados revocadoChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if revocados != nil && claims.ID != "" {
			revocado, err := revocados.EstaRevocado(c.Context(), claims.ID)
			if err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "SESSION_CHECK_FAILED", Message: "no se pudo verificar la sesión, intente más tarde"})
			}
			if revocado {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "SESSION_REVOKED", Message: "sesión cerrada, ingrese de nuevo"})
			}
		}
		if empresaID := GetEmpresaID(c); empresaID != "" && claims.EmpresaID != empresaID {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "la credencial no corresponde a esta empresa"})
		}

		c.Locals(LocalUsuarioID, claims.UsuarioID)
		c.Locals(LocalRol, claims.Rol)
		c.Locals(LocalJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Locals(LocalExpiraEn, claims.ExpiresAt.Time)
		}
		return c.Next()
	}
}

// GetJTI devuelve el identificador de la credencial (después de AuthMiddleware).
func GetJTI(c *fiber.Ctx) string {
	v := c.Locals(LocalJTI)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetExpiraEn devuelve la expiración de la credencial, o cero si no está.
func GetExpiraEn(c *fiber.Ctx) time.Time {
	v := c.Locals(LocalExpiraEn)
	if v == nil {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}
