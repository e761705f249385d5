package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.EmpleadoRepository = (*EmpleadoRepo)(nil)

// EmpleadoRepo implementación del puerto EmpleadoRepository sobre PostgreSQL.
// Todas las consultas filtran eliminado_en IS NULL (soft delete explícito).
type EmpleadoRepo struct {
	q Querier
}

// NewEmpleadoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmpleadoRepository(q Querier) *EmpleadoRepo {
	return &EmpleadoRepo{q: q}
}

const empleadoCols = `
	id, empresa_id, usuario_id, codigo, nombres, apellidos, documento, email,
	fecha_ingreso, fecha_terminacion, salario, estado,
	departamento_id, cargo_id, rol_id,
	cuenta_activada, debe_cambiar_password, fecha_activacion,
	creado_en, actualizado_en, eliminado_en`

// Crear persiste un nuevo empleado. Los índices únicos por empresa (código,
// documento, usuario) se reportan como domain.ErrDuplicado.
func (r *EmpleadoRepo) Crear(e *entity.Empleado) error {
	query := `
		INSERT INTO empleados (
			id, empresa_id, usuario_id, codigo, nombres, apellidos, documento, email,
			fecha_ingreso, fecha_terminacion, salario, estado,
			departamento_id, cargo_id, rol_id,
			cuenta_activada, debe_cambiar_password, fecha_activacion,
			creado_en, actualizado_en
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.EmpresaID, e.UsuarioID, e.Codigo, e.Nombres, e.Apellidos, e.Documento, e.Email,
		e.FechaIngreso, e.FechaTerminacion, e.Salario, e.Estado,
		e.DepartamentoID, e.CargoID, e.RolID,
		e.CuentaActivada, e.DebeCambiarPassword, e.FechaActivacion,
		e.CreadoEn, e.ActualizadoEn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert empleado: %w", err)
	}
	return nil
}

// GetByID obtiene un empleado vigente por ID.
func (r *EmpleadoRepo) GetByID(id string) (*entity.Empleado, error) {
	return r.scanOne(`SELECT `+empleadoCols+` FROM empleados WHERE id = $1 AND eliminado_en IS NULL`, id)
}

// GetByUsuarioYEmpresa resuelve el empleado de un usuario en una empresa.
// Respaldado por el índice único (empresa_id, usuario_id): una sola búsqueda
// indexada por request en el choke point de autorización.
func (r *EmpleadoRepo) GetByUsuarioYEmpresa(usuarioID, empresaID string) (*entity.Empleado, error) {
	return r.scanOne(`
		SELECT `+empleadoCols+` FROM empleados
		WHERE usuario_id = $1 AND empresa_id = $2 AND eliminado_en IS NULL`,
		usuarioID, empresaID)
}

// Actualizar actualiza un empleado.
func (r *EmpleadoRepo) Actualizar(e *entity.Empleado) error {
	query := `
		UPDATE empleados SET
			nombres = $2, apellidos = $3, email = $4,
			fecha_terminacion = $5, salario = $6, estado = $7,
			departamento_id = $8, cargo_id = $9, rol_id = $10,
			cuenta_activada = $11, debe_cambiar_password = $12, fecha_activacion = $13,
			actualizado_en = $14
		WHERE id = $1 AND eliminado_en IS NULL`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.Nombres, e.Apellidos, e.Email,
		e.FechaTerminacion, e.Salario, e.Estado,
		e.DepartamentoID, e.CargoID, e.RolID,
		e.CuentaActivada, e.DebeCambiarPassword, e.FechaActivacion,
		e.ActualizadoEn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("update empleado: %w", err)
	}
	return nil
}

// ListarPorEmpresa lista empleados vigentes por empresa con paginación.
func (r *EmpleadoRepo) ListarPorEmpresa(empresaID string, limit, offset int) ([]*entity.Empleado, error) {
	query := `
		SELECT ` + empleadoCols + ` FROM empleados
		WHERE empresa_id = $1 AND eliminado_en IS NULL
		ORDER BY creado_en DESC LIMIT $2 OFFSET $3`
	return r.scanMany(query, empresaID, limit, offset)
}

// ListarActivosPorRol empleados activos, vigentes y con usuario vinculado que
// tienen el rol (universo de la resincronización de permisos).
func (r *EmpleadoRepo) ListarActivosPorRol(rolID string) ([]*entity.Empleado, error) {
	query := `
		SELECT ` + empleadoCols + ` FROM empleados
		WHERE rol_id = $1 AND estado = $2 AND usuario_id IS NOT NULL AND eliminado_en IS NULL`
	return r.scanMany(query, rolID, entity.EstadoActivo)
}

func (r *EmpleadoRepo) scanOne(query string, args ...any) (*entity.Empleado, error) {
	var e entity.Empleado
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&e.ID, &e.EmpresaID, &e.UsuarioID, &e.Codigo, &e.Nombres, &e.Apellidos, &e.Documento, &e.Email,
		&e.FechaIngreso, &e.FechaTerminacion, &e.Salario, &e.Estado,
		&e.DepartamentoID, &e.CargoID, &e.RolID,
		&e.CuentaActivada, &e.DebeCambiarPassword, &e.FechaActivacion,
		&e.CreadoEn, &e.ActualizadoEn, &e.EliminadoEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get empleado: %w", err)
	}
	return &e, nil
}

func (r *EmpleadoRepo) scanMany(query string, args ...any) ([]*entity.Empleado, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar empleados: %w", err)
	}
	defer rows.Close()
	var list []*entity.Empleado
	for rows.Next() {
		var e entity.Empleado
		if err := rows.Scan(
			&e.ID, &e.EmpresaID, &e.UsuarioID, &e.Codigo, &e.Nombres, &e.Apellidos, &e.Documento, &e.Email,
			&e.FechaIngreso, &e.FechaTerminacion, &e.Salario, &e.Estado,
			&e.DepartamentoID, &e.CargoID, &e.RolID,
			&e.CuentaActivada, &e.DebeCambiarPassword, &e.FechaActivacion,
			&e.CreadoEn, &e.ActualizadoEn, &e.EliminadoEn,
		); err != nil {
			return nil, fmt.Errorf("scan empleado: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
