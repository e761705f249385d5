package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// RolRepository define el puerto de persistencia para Rol (incluye sus grupos).
type RolRepository interface {
	Crear(r *entity.Rol) error
	GetByID(id string) (*entity.Rol, error)
	// ReemplazarGrupos sustituye por completo los grupos vinculados al rol.
	// Debe ejecutarse dentro de la misma transacción que la reescritura de
	// permisos directos de los empleados afectados.
	ReemplazarGrupos(rolID string, grupoIDs []string) error
}
