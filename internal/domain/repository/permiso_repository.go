package repository

// PermisoRepository define el puerto de lectura/escritura de concesiones de
// permisos. Trabaja con códigos de permiso (strings) para mantener barato el
// choke point de autorización.
type PermisoRepository interface {
	// DirectosDeUsuario códigos concedidos directamente al usuario.
	DirectosDeUsuario(usuarioID string) ([]string, error)
	// PorGruposDeUsuario códigos concedidos vía todos los grupos del usuario.
	PorGruposDeUsuario(usuarioID string) ([]string, error)
	// PorGrupos unión de códigos adjuntos a los grupos dados.
	PorGrupos(grupoIDs []string) ([]string, error)
	// ReemplazarDirectos deja las concesiones directas del usuario exactamente
	// en el conjunto dado (replace, no merge).
	ReemplazarDirectos(usuarioID string, codigos []string) error
}
