package password

import (
	"strconv"
	"strings"
	"unicode"
)

// Validador contrato del validador de fortaleza de passwords. El núcleo de
// activación/reset lo consume como colaborador externo: devuelve la lista de
// violaciones legibles para el usuario, vacía si el password cumple la política.
type Validador interface {
	Validar(password, username string) []string
}

// ValidadorBasico política por defecto: largo mínimo, mayúscula, minúscula,
// dígito y que no contenga el username.
type ValidadorBasico struct {
	MinLargo int
}

// NewValidadorBasico construye el validador con largo mínimo 8 si no se indica.
func NewValidadorBasico(minLargo int) *ValidadorBasico {
	if minLargo <= 0 {
		minLargo = 8
	}
	return &ValidadorBasico{MinLargo: minLargo}
}

// Validar evalúa todas las reglas y acumula los mensajes de las que fallan.
func (v *ValidadorBasico) Validar(password, username string) []string {
	var msgs []string
	if len(password) < v.MinLargo {
		msgs = append(msgs, "el password debe tener al menos "+strconv.Itoa(v.MinLargo)+" caracteres")
	}
	var tieneMayus, tieneMinus, tieneDigito bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			tieneMayus = true
		case unicode.IsLower(r):
			tieneMinus = true
		case unicode.IsDigit(r):
			tieneDigito = true
		}
	}
	if !tieneMayus {
		msgs = append(msgs, "el password debe incluir al menos una mayúscula")
	}
	if !tieneMinus {
		msgs = append(msgs, "el password debe incluir al menos una minúscula")
	}
	if !tieneDigito {
		msgs = append(msgs, "el password debe incluir al menos un dígito")
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		msgs = append(msgs, "el password no puede contener el nombre de usuario")
	}
	return msgs
}
