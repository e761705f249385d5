package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.RolRepository = (*RolRepo)(nil)

// RolRepo implementación del puerto RolRepository sobre PostgreSQL.
type RolRepo struct {
	q Querier
}

// NewRolRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRolRepository(q Querier) *RolRepo {
	return &RolRepo{q: q}
}

// Crear persiste un rol y sus vínculos a grupos. Nombre y código únicos por
// empresa se reportan como domain.ErrDuplicado.
func (r *RolRepo) Crear(rol *entity.Rol) error {
	query := `
		INSERT INTO roles (
			id, empresa_id, nombre, codigo,
			descuento_maximo, monto_aprobacion, limite_credito,
			puede_vender, puede_comprar, puede_aprobar,
			creado_en, actualizado_en
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.q.Exec(context.Background(), query,
		rol.ID, rol.EmpresaID, rol.Nombre, rol.Codigo,
		rol.DescuentoMaximo, rol.MontoAprobacion, rol.LimiteCredito,
		rol.PuedeVender, rol.PuedeComprar, rol.PuedeAprobar,
		rol.CreadoEn, rol.ActualizadoEn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert rol: %w", err)
	}
	return r.insertarGrupos(rol.ID, rol.GrupoIDs)
}

// GetByID obtiene un rol vigente con sus grupos vinculados.
func (r *RolRepo) GetByID(id string) (*entity.Rol, error) {
	query := `
		SELECT id, empresa_id, nombre, codigo,
		       descuento_maximo, monto_aprobacion, limite_credito,
		       puede_vender, puede_comprar, puede_aprobar,
		       creado_en, actualizado_en, eliminado_en
		FROM roles WHERE id = $1 AND eliminado_en IS NULL`
	var rol entity.Rol
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rol.ID, &rol.EmpresaID, &rol.Nombre, &rol.Codigo,
		&rol.DescuentoMaximo, &rol.MontoAprobacion, &rol.LimiteCredito,
		&rol.PuedeVender, &rol.PuedeComprar, &rol.PuedeAprobar,
		&rol.CreadoEn, &rol.ActualizadoEn, &rol.EliminadoEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rol: %w", err)
	}

	rows, err := r.q.Query(context.Background(),
		`SELECT grupo_id FROM rol_grupos WHERE rol_id = $1 ORDER BY grupo_id`, id)
	if err != nil {
		return nil, fmt.Errorf("grupos del rol: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var grupoID string
		if err := rows.Scan(&grupoID); err != nil {
			return nil, fmt.Errorf("scan grupo del rol: %w", err)
		}
		rol.GrupoIDs = append(rol.GrupoIDs, grupoID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rol, nil
}

// ReemplazarGrupos delete + insert; el conjunto final es exactamente grupoIDs.
func (r *RolRepo) ReemplazarGrupos(rolID string, grupoIDs []string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM rol_grupos WHERE rol_id = $1`, rolID)
	if err != nil {
		return fmt.Errorf("limpiar grupos del rol: %w", err)
	}
	return r.insertarGrupos(rolID, grupoIDs)
}

func (r *RolRepo) insertarGrupos(rolID string, grupoIDs []string) error {
	for _, grupoID := range grupoIDs {
		_, err := r.q.Exec(context.Background(),
			`INSERT INTO rol_grupos (id, rol_id, grupo_id) VALUES ($1, $2, $3)`,
			uuid.New().String(), rolID, grupoID,
		)
		if err != nil {
			return fmt.Errorf("vincular grupo %s al rol: %w", grupoID, err)
		}
	}
	return nil
}
