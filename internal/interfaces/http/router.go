package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/auth"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	AccesoUC     *acceso.AccesoUseCase
	ActivacionUC *activacion.ActivacionUseCase
	EmpleadoUC   *usecase.EmpleadoUseCase
	EmpresaRepo  repository.EmpresaRepository
	Revocador    auth.RevocadorSesiones
	JWTSecret    string
}

// Router registra las rutas de la API. Todo cuelga del tenant: el middleware de
// empresa corre antes que auth en todos los grupos.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", TenantMiddleware(deps.EmpresaRepo))

	// Auth (público dentro del tenant)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Activación y restablecimiento por OTP (público: el secreto es el token/código)
	activacionGroup := api.Group("/activacion")
	activacionHandler := NewActivacionHandler(deps.ActivacionUC)
	activacionGroup.Get("/verificar/:token", activacionHandler.VerificarToken)
	activacionGroup.Post("/activar", activacionHandler.Activar)
	activacionGroup.Post("/otp/restablecer", activacionHandler.RestablecerOTP)
	activacionGroup.Post("/reset/solicitar", activacionHandler.SolicitarReset)
	activacionGroup.Post("/reset/restablecer", activacionHandler.RestablecerReset)

	// Rutas protegidas (requieren Bearer Token del tenant)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Revocador))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/check", authHandler.Check)

	// Emisión de OTP por soporte (permiso elevado)
	protected.Post("/activacion/otp/solicitar",
		RequierePermiso("soporte_otp", deps.AccesoUC),
		activacionHandler.SolicitarOTP)

	// Empleados (protegido, con gate por permiso)
	empleados := protected.Group("/empleados")
	empleadoHandler := NewEmpleadoHandler(deps.EmpleadoUC)
	empleados.Post("/", RequierePermiso("empleados_crear", deps.AccesoUC), empleadoHandler.Create)
	empleados.Get("/", RequierePermiso("empleados_ver", deps.AccesoUC), empleadoHandler.List)
	empleados.Get("/:id", RequierePermiso("empleados_ver", deps.AccesoUC), empleadoHandler.GetByID)
	empleados.Patch("/:id", RequierePermiso("empleados_editar", deps.AccesoUC), empleadoHandler.Update)

	// Roles (protegido, administración de permisos)
	roles := protected.Group("/roles")
	rolHandler := NewRolHandler(deps.AccesoUC)
	roles.Put("/:id/grupos", RequierePermiso("roles_editar", deps.AccesoUC), rolHandler.ActualizarGrupos)
}
