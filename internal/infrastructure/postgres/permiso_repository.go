package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.PermisoRepository = (*PermisoRepo)(nil)

// PermisoRepo implementación del puerto PermisoRepository sobre PostgreSQL.
// Devuelve códigos planos; la deduplicación final la hace el use case.
type PermisoRepo struct {
	q Querier
}

// NewPermisoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPermisoRepository(q Querier) *PermisoRepo {
	return &PermisoRepo{q: q}
}

// DirectosDeUsuario códigos concedidos directamente al usuario.
func (r *PermisoRepo) DirectosDeUsuario(usuarioID string) ([]string, error) {
	query := `
		SELECT p.codigo
		FROM usuario_permisos up
		JOIN permisos p ON p.id = up.permiso_id
		WHERE up.usuario_id = $1`
	return r.scanCodigos(query, usuarioID)
}

// PorGruposDeUsuario códigos concedidos vía los grupos del usuario.
func (r *PermisoRepo) PorGruposDeUsuario(usuarioID string) ([]string, error) {
	query := `
		SELECT DISTINCT p.codigo
		FROM usuario_grupos ug
		JOIN grupo_permisos gp ON gp.grupo_id = ug.grupo_id
		JOIN permisos p ON p.id = gp.permiso_id
		WHERE ug.usuario_id = $1`
	return r.scanCodigos(query, usuarioID)
}

// PorGrupos unión de códigos adjuntos a los grupos dados.
func (r *PermisoRepo) PorGrupos(grupoIDs []string) ([]string, error) {
	if len(grupoIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT p.codigo
		FROM grupo_permisos gp
		JOIN permisos p ON p.id = gp.permiso_id
		WHERE gp.grupo_id = ANY($1)`
	return r.scanCodigos(query, grupoIDs)
}

// ReemplazarDirectos delete + insert por código; el conjunto directo del
// usuario queda exactamente en codigos. Los códigos desconocidos se ignoran
// (el INSERT...SELECT no encuentra fila en permisos).
func (r *PermisoRepo) ReemplazarDirectos(usuarioID string, codigos []string) error {
	ctx := context.Background()
	_, err := r.q.Exec(ctx, `DELETE FROM usuario_permisos WHERE usuario_id = $1`, usuarioID)
	if err != nil {
		return fmt.Errorf("limpiar permisos directos: %w", err)
	}
	for _, codigo := range codigos {
		_, err := r.q.Exec(ctx, `
			INSERT INTO usuario_permisos (id, usuario_id, permiso_id)
			SELECT $1, $2, p.id FROM permisos p WHERE p.codigo = $3`,
			uuid.New().String(), usuarioID, codigo,
		)
		if err != nil {
			return fmt.Errorf("conceder permiso %s: %w", codigo, err)
		}
	}
	return nil
}

func (r *PermisoRepo) scanCodigos(query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("consultar permisos: %w", err)
	}
	defer rows.Close()
	var codigos []string
	for rows.Next() {
		var codigo string
		if err := rows.Scan(&codigo); err != nil {
			return nil, fmt.Errorf("scan permiso: %w", err)
		}
		codigos = append(codigos, codigo)
	}
	return codigos, rows.Err()
}
