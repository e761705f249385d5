package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
)

// ActivacionHandler activación de cuenta y restablecimiento por OTP o enlace.
type ActivacionHandler struct {
	uc *activacion.ActivacionUseCase
}

// NewActivacionHandler construye el handler de activación.
func NewActivacionHandler(uc *activacion.ActivacionUseCase) *ActivacionHandler {
	return &ActivacionHandler{uc: uc}
}

// VerificarToken godoc
// @Summary      Verificar un token de activación (pantalla previa)
// @Tags         activacion
// @Produce      json
// @Param        token  path  string  true  "valor del token"
// @Success      200   {object}  dto.VerificarTokenResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/activacion/verificar/{token} [get]
func (h *ActivacionHandler) VerificarToken(c *fiber.Ctx) error {
	out, err := h.uc.VerificarToken(c.Params("token"))
	if err != nil {
		return respuestaError(c, err)
	}
	return c.JSON(out)
}

// Activar godoc
// @Summary      Activar la cuenta estableciendo la contraseña
// @Tags         activacion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ActivarCuentaRequest  true  "token, password, password_confirmacion"
// @Success      200   {object}  dto.ActivacionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/activacion/activar [post]
func (h *ActivacionHandler) Activar(c *fiber.Ctx) error {
	var in dto.ActivarCuentaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Token == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token y password son requeridos"})
	}
	out, err := h.uc.Activar(c.Context(), in, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return respuestaError(c, err)
	}
	return c.JSON(out)
}

// SolicitarOTP godoc
// @Summary      Emitir un código OTP para un empleado (soporte)
// @Tags         activacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SolicitarOTPRequest  true  "empleado_id"
// @Success      204
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/activacion/otp/solicitar [post]
func (h *ActivacionHandler) SolicitarOTP(c *fiber.Ctx) error {
	var in dto.SolicitarOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.EmpleadoID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "empleado_id es requerido"})
	}
	if err := h.uc.SolicitarOTP(c.Context(), GetEmpresaID(c), in.EmpleadoID); err != nil {
		return respuestaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SolicitarReset godoc
// @Summary      Solicitar un enlace de restablecimiento de contraseña
// @Tags         activacion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SolicitarResetRequest  true  "username"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/activacion/reset/solicitar [post]
func (h *ActivacionHandler) SolicitarReset(c *fiber.Ctx) error {
	var in dto.SolicitarResetRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username es requerido"})
	}
	if err := h.uc.SolicitarReset(c.Context(), GetEmpresaID(c), in.Username); err != nil {
		return respuestaError(c, err)
	}
	// 204 siempre: la respuesta no revela si la cuenta existe.
	return c.SendStatus(fiber.StatusNoContent)
}

// RestablecerReset godoc
// @Summary      Restablecer la contraseña con el token del enlace
// @Tags         activacion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestablecerTokenRequest  true  "token, password, password_confirmacion"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/activacion/reset/restablecer [post]
func (h *ActivacionHandler) RestablecerReset(c *fiber.Ctx) error {
	var in dto.RestablecerTokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Token == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token y password son requeridos"})
	}
	if err := h.uc.RestablecerPorToken(c.Context(), GetEmpresaID(c), in, c.IP(), c.Get("User-Agent")); err != nil {
		return respuestaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RestablecerOTP godoc
// @Summary      Restablecer la contraseña con username + código OTP
// @Tags         activacion
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestablecerOTPRequest  true  "username, codigo, password, password_confirmacion"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/activacion/otp/restablecer [post]
func (h *ActivacionHandler) RestablecerOTP(c *fiber.Ctx) error {
	var in dto.RestablecerOTPRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Username == "" || in.Codigo == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username, codigo y password son requeridos"})
	}
	if err := h.uc.RestablecerPorOTP(c.Context(), GetEmpresaID(c), in, c.IP(), c.Get("User-Agent")); err != nil {
		return respuestaError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
