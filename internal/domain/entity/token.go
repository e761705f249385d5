package entity

import "time"

// TokenActivacion secreto de un solo uso que permite a un empleado recién
// provisionado establecer su password y activar su cuenta. A lo sumo un token
// vigente por empleado: emitir uno nuevo invalida los anteriores.
//
// Las filas nunca se borran físicamente; el consumo se registra con IP,
// user-agent y timestamp para auditoría.
type TokenActivacion struct {
	ID         string
	EmpleadoID string
	Valor      string // opaco, URL-safe, único
	CreadoEn   time.Time
	ExpiraEn   time.Time
	Usado      bool
	UsadoEn    *time.Time
	IPUso      string
	AgenteUso  string
}

// EsValido requiere usado=false y expiración futura.
func (t *TokenActivacion) EsValido() bool {
	return !t.Usado && time.Now().Before(t.ExpiraEn)
}

// TokenOTP código numérico corto de un solo uso para restablecer password
// cuando el email no está disponible. Tres intentos fallidos acumulados
// bloquean la fila de forma permanente.
type TokenOTP struct {
	ID               string
	EmpleadoID       string
	Codigo           string
	CreadoEn         time.Time
	ExpiraEn         time.Time
	Usado            bool
	UsadoEn          *time.Time
	IPUso            string
	AgenteUso        string
	IntentosFallidos int
	Bloqueado        bool
}

// MaxIntentosOTP intentos fallidos acumulados que bloquean la fila.
const MaxIntentosOTP = 3

// EsValido requiere no usado, no bloqueado y no expirado.
func (t *TokenOTP) EsValido() bool {
	return !t.Usado && !t.Bloqueado && time.Now().Before(t.ExpiraEn)
}

// TokenReset token de restablecimiento por enlace; pool independiente del de
// activación, con la misma semántica de un solo uso.
type TokenReset struct {
	ID         string
	EmpleadoID string
	Valor      string
	CreadoEn   time.Time
	ExpiraEn   time.Time
	Usado      bool
	UsadoEn    *time.Time
	IPUso      string
	AgenteUso  string
}

// EsValido requiere usado=false y expiración futura.
func (t *TokenReset) EsValido() bool {
	return !t.Usado && time.Now().Before(t.ExpiraEn)
}
