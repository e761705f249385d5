package dto

// ActualizarGruposRolRequest reemplazo completo de los grupos técnicos de un rol.
// Dispara la resincronización de permisos de los empleados con ese rol.
type ActualizarGruposRolRequest struct {
	GrupoIDs []string `json:"grupo_ids"`
}
