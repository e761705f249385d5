package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
)

// respuestaError traduce un error de dominio al status y cuerpo HTTP. Los
// handlers que necesitan un código o mensaje distinto mapean antes de llamar.
func respuestaError(c *fiber.Ctx, err error) error {
	var debil *domain.ErrorPasswordDebil
	if errors.As(err, &debil) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "PASSWORD_DEBIL", Message: "la contraseña no cumple los requisitos", Errors: debil.Mensajes})
	}
	var otpInvalido *domain.ErrorOTPInvalido
	if errors.As(err, &otpInvalido) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "OTP_INVALIDO", Message: otpInvalido.Error()})
	}

	switch {
	case errors.Is(err, domain.ErrValidacion):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrPasswordNoCoincide):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "PASSWORD_NO_COINCIDE", Message: err.Error()})
	case errors.Is(err, domain.ErrCredencialesInvalidas):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	// Token/OTP inválido es un fallo de validación del cuerpo, no de
	// autenticación: el mensaje es genérico y el status 400.
	case errors.Is(err, domain.ErrTokenInvalido):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "TOKEN_INVALIDO", Message: "token inválido o expirado"})
	case errors.Is(err, domain.ErrOTPBloqueado):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "OTP_BLOQUEADO", Message: err.Error()})
	case errors.Is(err, domain.ErrProhibido):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrUsuarioInactivo):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "CUENTA_INACTIVA", Message: err.Error()})
	case errors.Is(err, domain.ErrCuentaNoActivada):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "CUENTA_NO_ACTIVADA", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrYaActivada):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "YA_ACTIVADA", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicado):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICADO", Message: "el recurso ya existe"})
	case errors.Is(err, domain.ErrConflicto):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICTO", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
