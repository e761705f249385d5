package entity

import "time"

// Empresa representa una organización/tenant del sistema. Todo dato de negocio
// pertenece exactamente a una empresa; no hay visibilidad cruzada entre tenants.
type Empresa struct {
	ID              string
	NombreComercial string
	RazonSocial     string
	Subdominio      string // usado por el resolver de tenant (Host / X-Empresa)
	Activa          bool
	CreadoEn        time.Time
	ActualizadoEn   time.Time
	EliminadoEn     *time.Time // soft delete; nil = vigente
}

// Departamento unidad organizativa dentro de una empresa.
type Departamento struct {
	ID            string
	EmpresaID     string
	Nombre        string
	CreadoEn      time.Time
	ActualizadoEn time.Time
	EliminadoEn   *time.Time
}

// Cargo posición/puesto de trabajo dentro de una empresa.
type Cargo struct {
	ID            string
	EmpresaID     string
	Nombre        string
	CreadoEn      time.Time
	ActualizadoEn time.Time
	EliminadoEn   *time.Time
}
