package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// EmpleadoRepository define el puerto de persistencia para Empleado.
// Todas las consultas filtran eliminado_en IS NULL.
type EmpleadoRepository interface {
	Crear(e *entity.Empleado) error
	GetByID(id string) (*entity.Empleado, error)
	// GetByUsuarioYEmpresa resuelve el empleado de un usuario dentro de una
	// empresa. Es la consulta del choke point de autorización: un índice único
	// sobre (empresa_id, usuario_id) la respalda.
	GetByUsuarioYEmpresa(usuarioID, empresaID string) (*entity.Empleado, error)
	Actualizar(e *entity.Empleado) error
	ListarPorEmpresa(empresaID string, limit, offset int) ([]*entity.Empleado, error)
	// ListarActivosPorRol devuelve empleados activos, no eliminados y con
	// usuario vinculado que tienen el rol dado (para la resincronización).
	ListarActivosPorRol(rolID string) ([]*entity.Empleado, error)
}
