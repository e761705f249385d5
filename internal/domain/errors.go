package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrValidacion            = errors.New("entrada inválida")
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	ErrProhibido             = errors.New("acceso denegado")
	ErrCuentaNoActivada      = errors.New("la cuenta aún no ha sido activada; complete la activación antes de ingresar")
	ErrUsuarioInactivo       = errors.New("cuenta inactiva o suspendida")
	ErrDuplicado             = errors.New("recurso duplicado")
	ErrConflicto             = errors.New("conflicto con el estado actual")
	ErrPersistencia          = errors.New("error de persistencia")

	// ErrTokenInvalido cubre de forma uniforme token inexistente, expirado o ya
	// usado: el mensaje nunca distingue entre los tres casos.
	ErrTokenInvalido = errors.New("token inválido o expirado")

	ErrYaActivada         = errors.New("la cuenta ya fue activada")
	ErrPasswordNoCoincide = errors.New("las contraseñas no coinciden")
	ErrOTPBloqueado       = errors.New("código bloqueado por intentos fallidos, solicite uno nuevo")
)

// ErrorPasswordDebil agrupa los mensajes del validador de fortaleza de password.
type ErrorPasswordDebil struct {
	Mensajes []string
}

func (e *ErrorPasswordDebil) Error() string {
	return "password débil: " + strings.Join(e.Mensajes, "; ")
}

// ErrorOTPInvalido indica un código OTP incorrecto con los intentos que quedan
// antes del bloqueo definitivo de esa fila.
type ErrorOTPInvalido struct {
	IntentosRestantes int
}

func (e *ErrorOTPInvalido) Error() string {
	return fmt.Sprintf("código incorrecto, %d intento(s) restante(s)", e.IntentosRestantes)
}
