package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos para Empleado.
const (
	EstadoActivo     = "activo"
	EstadoInactivo   = "inactivo"
	EstadoSuspendido = "suspendido"
	EstadoTerminado  = "terminado"
	EstadoLicencia   = "licencia"
	EstadoVacaciones = "vacaciones"
)

// EstadoValido indica si el estado es uno de los valores permitidos.
func EstadoValido(estado string) bool {
	switch estado {
	case EstadoActivo, EstadoInactivo, EstadoSuspendido, EstadoTerminado, EstadoLicencia, EstadoVacaciones:
		return true
	}
	return false
}

// Empleado es el perfil de una persona dentro de una empresa, vinculado (opcionalmente)
// a un Usuario de login. Invariantes por empresa: código único, documento único y
// a lo sumo un empleado por usuario.
type Empleado struct {
	ID        string
	EmpresaID string
	UsuarioID *string // nil hasta que se crea el acceso (crear_acceso)

	Codigo    string
	Nombres   string
	Apellidos string
	Documento string
	Email     string

	FechaIngreso     time.Time
	FechaTerminacion *time.Time // obligatoria sii Estado == terminado; >= FechaIngreso
	Salario          decimal.Decimal
	Estado           string

	DepartamentoID *string
	CargoID        *string
	RolID          *string

	// Onboarding: ambos cambian juntos al completar la activación.
	CuentaActivada      bool
	DebeCambiarPassword bool
	FechaActivacion     *time.Time

	CreadoEn      time.Time
	ActualizadoEn time.Time
	EliminadoEn   *time.Time
}

// NombreCompleto para mostrar en respuestas de verificación de token.
func (e *Empleado) NombreCompleto() string {
	return e.Nombres + " " + e.Apellidos
}
