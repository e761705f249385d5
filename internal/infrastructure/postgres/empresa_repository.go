package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.EmpresaRepository = (*EmpresaRepo)(nil)

// EmpresaRepo implementación del puerto EmpresaRepository sobre PostgreSQL.
type EmpresaRepo struct {
	q Querier
}

// NewEmpresaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmpresaRepository(q Querier) *EmpresaRepo {
	return &EmpresaRepo{q: q}
}

const empresaCols = `id, nombre_comercial, razon_social, subdominio, activa, creado_en, actualizado_en, eliminado_en`

// GetByID obtiene una empresa vigente por ID.
func (r *EmpresaRepo) GetByID(id string) (*entity.Empresa, error) {
	return r.scanOne(`SELECT `+empresaCols+` FROM empresas WHERE id = $1 AND eliminado_en IS NULL`, id)
}

// GetBySubdominio obtiene una empresa vigente por subdominio (resolver de tenant).
func (r *EmpresaRepo) GetBySubdominio(subdominio string) (*entity.Empresa, error) {
	return r.scanOne(`SELECT `+empresaCols+` FROM empresas WHERE subdominio = $1 AND eliminado_en IS NULL`, subdominio)
}

func (r *EmpresaRepo) scanOne(query string, args ...any) (*entity.Empresa, error) {
	var e entity.Empresa
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&e.ID, &e.NombreComercial, &e.RazonSocial, &e.Subdominio, &e.Activa,
		&e.CreadoEn, &e.ActualizadoEn, &e.EliminadoEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get empresa: %w", err)
	}
	return &e, nil
}
