package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// Locals keys del contexto de request en Fiber.
const (
	LocalEmpresaID = "empresa_id"
	LocalUsuarioID = "usuario_id"
	LocalRol       = "rol"
	LocalJTI       = "jti"
	LocalExpiraEn  = "expira_en"
)

// TenantMiddleware resuelve la empresa del request antes que cualquier otra
// cosa: primero el header X-Empresa (subdominio explícito, útil detrás de un
// proxy), si no, el primer label del Host. Empresa inexistente o inactiva
// responden el mismo 403 sin revelar cuál de los dos casos fue.
func TenantMiddleware(empresas repository.EmpresaRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subdominio := strings.TrimSpace(c.Get("X-Empresa"))
		if subdominio == "" {
			subdominio = subdominioDeHost(c.Hostname())
		}
		if subdominio == "" {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_INVALIDO", Message: "empresa no disponible"})
		}
		empresa, err := empresas.GetBySubdominio(subdominio)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TENANT_CHECK_FAILED", Message: "no se pudo resolver la empresa, intente más tarde"})
		}
		if empresa == nil || !empresa.Activa {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_INVALIDO", Message: "empresa no disponible"})
		}
		c.Locals(LocalEmpresaID, empresa.ID)
		return c.Next()
	}
}

// subdominioDeHost extrae el primer label del host (acme.app.example.com →
// acme). Hosts de un solo label (localhost) no llevan subdominio.
func subdominioDeHost(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// GetEmpresaID devuelve el ID del tenant resuelto (después de TenantMiddleware).
func GetEmpresaID(c *fiber.Ctx) string {
	v := c.Locals(LocalEmpresaID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetUsuarioID devuelve el ID del usuario autenticado (después de AuthMiddleware).
func GetUsuarioID(c *fiber.Ctx) string {
	v := c.Locals(LocalUsuarioID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
