package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// UsuarioRepository define el puerto de persistencia para Usuario (DIP).
type UsuarioRepository interface {
	Crear(u *entity.Usuario) error
	GetByID(id string) (*entity.Usuario, error)
	GetByUsername(username string) (*entity.Usuario, error)
	// UltimoUsernameConPrefijo devuelve el username lexicográficamente mayor que
	// empieza por el prefijo dado (case-insensitive), o "" si no hay ninguno.
	UltimoUsernameConPrefijo(prefijo string) (string, error)
	Actualizar(u *entity.Usuario) error
}
