package entity

import "time"

// Usuario es la identidad de login del sistema (principal). Existe de forma
// independiente del tenant: un mismo usuario puede estar vinculado a lo sumo a
// un Empleado por empresa.
type Usuario struct {
	ID            string
	Username      string // generado: inicial del nombre + apellido + sufijo numérico
	Email         string
	PasswordHash  string // bcrypt, nunca en claro después de persistir
	Activo        bool
	CreadoEn      time.Time
	ActualizadoEn time.Time
}
