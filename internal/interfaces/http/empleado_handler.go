package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
)

// EmpleadoHandler CRUD de empleados del tenant.
type EmpleadoHandler struct {
	uc *usecase.EmpleadoUseCase
}

// NewEmpleadoHandler construye el handler de empleados.
func NewEmpleadoHandler(uc *usecase.EmpleadoUseCase) *EmpleadoHandler {
	return &EmpleadoHandler{uc: uc}
}

// Create godoc
// @Summary      Crear empleado (opcionalmente con acceso de login)
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CrearEmpleadoRequest  true  "datos del empleado"
// @Success      201   {object}  dto.EmpleadoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/empleados [post]
func (h *EmpleadoHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearEmpleadoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Crear(c.Context(), GetEmpresaID(c), in)
	if err != nil {
		return respuestaError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar empleados de la empresa
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "tamaño de página (default 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200   {array}  dto.EmpleadoResponse
// @Router       /api/empleados [get]
func (h *EmpleadoHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.uc.Listar(GetEmpresaID(c), page)
	if err != nil {
		return respuestaError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un empleado
// @Tags         empleados
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del empleado"
// @Success      200   {object}  dto.EmpleadoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/empleados/{id} [get]
func (h *EmpleadoHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(GetEmpresaID(c), c.Params("id"))
	if err != nil {
		return respuestaError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualización parcial de un empleado
// @Tags         empleados
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "ID del empleado"
// @Param        body  body  dto.ActualizarEmpleadoRequest  true  "campos a modificar"
// @Success      200   {object}  dto.EmpleadoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/empleados/{id} [patch]
func (h *EmpleadoHandler) Update(c *fiber.Ctx) error {
	var in dto.ActualizarEmpleadoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Actualizar(GetEmpresaID(c), c.Params("id"), in)
	if err != nil {
		return respuestaError(c, err)
	}
	return c.JSON(out)
}
