package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/gestion-pro/pkg/password"
)

func TestValidadorBasico_PasswordFuerte_SinViolaciones(t *testing.T) {
	v := password.NewValidadorBasico(0)
	assert.Empty(t, v.Validar("Segura123", "MLOPEZ001"))
}

func TestValidadorBasico_AcumulaTodasLasViolaciones(t *testing.T) {
	v := password.NewValidadorBasico(0)
	msgs := v.Validar("corta", "MLOPEZ001")

	// Corta, sin mayúscula y sin dígito: tres reglas a la vez.
	assert.Len(t, msgs, 3)
}

func TestValidadorBasico_NoPuedeContenerElUsername(t *testing.T) {
	v := password.NewValidadorBasico(0)
	msgs := v.Validar("Xmlopez001Y9", "MLOPEZ001")

	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "usuario")
}

func TestValidadorBasico_LargoMinimoConfigurable(t *testing.T) {
	v := password.NewValidadorBasico(12)
	assert.NotEmpty(t, v.Validar("Corta123", ""))
	assert.Empty(t, v.Validar("MuchoMasLarga123", ""))
}
