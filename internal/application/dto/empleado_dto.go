package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrearEmpleadoRequest alta de empleado. Si CrearAcceso es true se provisiona
// también el usuario de login (inactivo) y se emite el token de activación.
type CrearEmpleadoRequest struct {
	Codigo         string          `json:"codigo"`
	Nombres        string          `json:"nombres"`
	Apellidos      string          `json:"apellidos"`
	Documento      string          `json:"documento"`
	Email          string          `json:"email"`
	FechaIngreso   time.Time       `json:"fecha_ingreso"`
	Salario        decimal.Decimal `json:"salario"`
	DepartamentoID *string         `json:"departamento_id"`
	CargoID        *string         `json:"cargo_id"`
	RolID          *string         `json:"rol_id"`
	CrearAcceso    bool            `json:"crear_acceso"`
}

// ActualizarEmpleadoRequest actualización parcial. Los FKs opcionales usan
// Opcional para distinguir ausente / null explícito / valor explícito.
type ActualizarEmpleadoRequest struct {
	Nombres          *string           `json:"nombres"`
	Apellidos        *string           `json:"apellidos"`
	Email            *string           `json:"email"`
	Estado           *string           `json:"estado"`
	FechaTerminacion *time.Time        `json:"fecha_terminacion"`
	Salario          *decimal.Decimal  `json:"salario"`
	DepartamentoID   Opcional[string]  `json:"departamento_id"`
	CargoID          Opcional[string]  `json:"cargo_id"`
	RolID            Opcional[string]  `json:"rol_id"`
}

// EmpleadoResponse salida de un empleado.
type EmpleadoResponse struct {
	ID                  string           `json:"id"`
	EmpresaID           string           `json:"empresa_id"`
	Codigo              string           `json:"codigo"`
	Nombres             string           `json:"nombres"`
	Apellidos           string           `json:"apellidos"`
	Documento           string           `json:"documento"`
	Email               string           `json:"email"`
	Username            string           `json:"username,omitempty"`
	FechaIngreso        time.Time        `json:"fecha_ingreso"`
	FechaTerminacion    *time.Time       `json:"fecha_terminacion,omitempty"`
	Salario             decimal.Decimal  `json:"salario"`
	Estado              string           `json:"estado"`
	DepartamentoID      *string          `json:"departamento_id,omitempty"`
	CargoID             *string          `json:"cargo_id,omitempty"`
	RolID               *string          `json:"rol_id,omitempty"`
	CuentaActivada      bool             `json:"cuenta_activada"`
	DebeCambiarPassword bool             `json:"debe_cambiar_password"`
	CreadoEn            time.Time        `json:"creado_en"`
	ActualizadoEn       time.Time        `json:"actualizado_en"`
}
