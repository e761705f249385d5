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

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

// UsuarioRepo implementación del puerto UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	q Querier
}

// NewUsuarioRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsuarioRepository(q Querier) *UsuarioRepo {
	return &UsuarioRepo{q: q}
}

const usuarioCols = `id, username, email, password_hash, activo, creado_en, actualizado_en`

// Crear persiste un nuevo usuario. Devuelve domain.ErrDuplicado si el username
// ya existe: el índice único es quien arbitra la carrera de generación.
func (r *UsuarioRepo) Crear(u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (id, username, email, password_hash, activo, creado_en, actualizado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Activo, u.CreadoEn, u.ActualizadoEn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(id string) (*entity.Usuario, error) {
	return r.scanOne(`SELECT `+usuarioCols+` FROM usuarios WHERE id = $1`, id)
}

// GetByUsername obtiene un usuario por username exacto.
func (r *UsuarioRepo) GetByUsername(username string) (*entity.Usuario, error) {
	return r.scanOne(`SELECT `+usuarioCols+` FROM usuarios WHERE username = $1`, username)
}

// UltimoUsernameConPrefijo devuelve el username lexicográficamente mayor que
// empieza por el prefijo (case-insensitive), o "" si no hay ninguno.
func (r *UsuarioRepo) UltimoUsernameConPrefijo(prefijo string) (string, error) {
	query := `
		SELECT username FROM usuarios
		WHERE upper(username) LIKE upper($1) || '%'
		ORDER BY username DESC LIMIT 1`
	var username string
	err := r.q.QueryRow(context.Background(), query, prefijo).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("último username con prefijo: %w", err)
	}
	return username, nil
}

// Actualizar actualiza un usuario.
func (r *UsuarioRepo) Actualizar(u *entity.Usuario) error {
	query := `
		UPDATE usuarios SET email = $2, password_hash = $3, activo = $4, actualizado_en = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.Email, u.PasswordHash, u.Activo, u.ActualizadoEn,
	)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	return nil
}

func (r *UsuarioRepo) scanOne(query string, args ...any) (*entity.Usuario, error) {
	var u entity.Usuario
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Activo, &u.CreadoEn, &u.ActualizadoEn,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	return &u, nil
}
