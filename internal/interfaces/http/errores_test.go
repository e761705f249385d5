package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/domain"
)

// TestRespuestaError_MapeoDeStatus fija el contrato de status por error de
// dominio. Token y OTP inválidos son fallos de validación (400), no de
// autenticación: el cliente aún no presentó una credencial de sesión.
func TestRespuestaError_MapeoDeStatus(t *testing.T) {
	casos := []struct {
		nombre string
		err    error
		status int
	}{
		{"token invalido", domain.ErrTokenInvalido, http.StatusBadRequest},
		{"otp incorrecto", &domain.ErrorOTPInvalido{IntentosRestantes: 2}, http.StatusBadRequest},
		{"otp bloqueado", domain.ErrOTPBloqueado, http.StatusBadRequest},
		{"password debil", &domain.ErrorPasswordDebil{Mensajes: []string{"muy corta"}}, http.StatusBadRequest},
		{"passwords no coinciden", domain.ErrPasswordNoCoincide, http.StatusBadRequest},
		{"credenciales invalidas", domain.ErrCredencialesInvalidas, http.StatusUnauthorized},
		{"prohibido", domain.ErrProhibido, http.StatusForbidden},
		{"cuenta no activada", domain.ErrCuentaNoActivada, http.StatusForbidden},
		{"no encontrado", domain.ErrNotFound, http.StatusNotFound},
		{"ya activada", domain.ErrYaActivada, http.StatusConflict},
		{"duplicado", domain.ErrDuplicado, http.StatusConflict},
		{"persistencia", domain.ErrPersistencia, http.StatusInternalServerError},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			app := fiber.New()
			app.Get("/e", func(c *fiber.Ctx) error {
				return respuestaError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/e", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
