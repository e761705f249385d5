package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rol agrupa, por empresa, referencias a grupos técnicos de permisos y campos de
// permiso de negocio explícitos. Nombre y código únicos por empresa.
type Rol struct {
	ID        string
	EmpresaID string
	Nombre    string
	Codigo    string

	// Permisos de negocio.
	DescuentoMaximo  decimal.Decimal // porcentaje 0-100
	MontoAprobacion  decimal.Decimal
	LimiteCredito    decimal.Decimal
	PuedeVender      bool
	PuedeComprar     bool
	PuedeAprobar     bool

	// Grupos técnicos vinculados; cambiarlos dispara la resincronización de los
	// permisos directos de todos los empleados activos con este rol.
	GrupoIDs []string

	CreadoEn      time.Time
	ActualizadoEn time.Time
	EliminadoEn   *time.Time
}

// Grupo técnico de permisos (independiente del tenant, estilo RBAC clásico).
type Grupo struct {
	ID     string
	Nombre string
}

// Permiso código técnico concedible directo o vía grupos.
type Permiso struct {
	ID     string
	Codigo string
	Nombre string
}
