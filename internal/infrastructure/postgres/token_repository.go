package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.TokenActivacionRepository = (*TokenActivacionRepo)(nil)
var _ repository.TokenOTPRepository = (*TokenOTPRepo)(nil)
var _ repository.TokenResetRepository = (*TokenResetRepo)(nil)

// TokenActivacionRepo implementación del puerto sobre tokens_activacion.
// Las filas nunca se borran; el cierre es siempre lógico (usado=true).
type TokenActivacionRepo struct {
	q Querier
}

// NewTokenActivacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTokenActivacionRepository(q Querier) *TokenActivacionRepo {
	return &TokenActivacionRepo{q: q}
}

func (r *TokenActivacionRepo) Crear(t *entity.TokenActivacion) error {
	query := `
		INSERT INTO tokens_activacion (id, empleado_id, valor, creado_en, expira_en, usado)
		VALUES ($1, $2, $3, $4, $5, false)`
	_, err := r.q.Exec(context.Background(), query, t.ID, t.EmpleadoID, t.Valor, t.CreadoEn, t.ExpiraEn)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert token activación: %w", err)
	}
	return nil
}

func (r *TokenActivacionRepo) InvalidarPendientes(empleadoID string) error {
	query := `
		UPDATE tokens_activacion SET usado = true, usado_en = $2
		WHERE empleado_id = $1 AND usado = false`
	_, err := r.q.Exec(context.Background(), query, empleadoID, time.Now())
	if err != nil {
		return fmt.Errorf("invalidar tokens de activación: %w", err)
	}
	return nil
}

// GetVigentePorValor devuelve (nil, nil) tanto para valor inexistente como para
// token usado o expirado.
func (r *TokenActivacionRepo) GetVigentePorValor(valor string) (*entity.TokenActivacion, error) {
	query := `
		SELECT id, empleado_id, valor, creado_en, expira_en, usado, usado_en,
		       COALESCE(ip_uso, ''), COALESCE(agente_uso, '')
		FROM tokens_activacion
		WHERE valor = $1 AND usado = false AND expira_en > now()`
	var t entity.TokenActivacion
	err := r.q.QueryRow(context.Background(), query, valor).Scan(
		&t.ID, &t.EmpleadoID, &t.Valor, &t.CreadoEn, &t.ExpiraEn, &t.Usado, &t.UsadoEn,
		&t.IPUso, &t.AgenteUso,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token activación: %w", err)
	}
	return &t, nil
}

func (r *TokenActivacionRepo) MarcarUsado(id, ip, agente string) error {
	return marcarUsado(r.q, "tokens_activacion", id, ip, agente)
}

// TokenOTPRepo implementación del puerto sobre tokens_otp. El contador de
// intentos y el bloqueo viven en la fila y se mueven en una sola sentencia.
type TokenOTPRepo struct {
	q Querier
}

// NewTokenOTPRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTokenOTPRepository(q Querier) *TokenOTPRepo {
	return &TokenOTPRepo{q: q}
}

func (r *TokenOTPRepo) Crear(t *entity.TokenOTP) error {
	query := `
		INSERT INTO tokens_otp (id, empleado_id, codigo, creado_en, expira_en, usado, intentos_fallidos, bloqueado)
		VALUES ($1, $2, $3, $4, $5, false, 0, false)`
	_, err := r.q.Exec(context.Background(), query, t.ID, t.EmpleadoID, t.Codigo, t.CreadoEn, t.ExpiraEn)
	if err != nil {
		return fmt.Errorf("insert token OTP: %w", err)
	}
	return nil
}

func (r *TokenOTPRepo) InvalidarPendientes(empleadoID string) error {
	query := `
		UPDATE tokens_otp SET usado = true, usado_en = $2
		WHERE empleado_id = $1 AND usado = false`
	_, err := r.q.Exec(context.Background(), query, empleadoID, time.Now())
	if err != nil {
		return fmt.Errorf("invalidar tokens OTP: %w", err)
	}
	return nil
}

// GetPendientePorEmpleado devuelve el OTP no usado y no expirado más reciente,
// incluso si está bloqueado. El caller decide cómo reportar el bloqueo.
func (r *TokenOTPRepo) GetPendientePorEmpleado(empleadoID string) (*entity.TokenOTP, error) {
	query := `
		SELECT id, empleado_id, codigo, creado_en, expira_en, usado, usado_en,
		       COALESCE(ip_uso, ''), COALESCE(agente_uso, ''), intentos_fallidos, bloqueado
		FROM tokens_otp
		WHERE empleado_id = $1 AND usado = false AND expira_en > now()
		ORDER BY creado_en DESC LIMIT 1`
	var t entity.TokenOTP
	err := r.q.QueryRow(context.Background(), query, empleadoID).Scan(
		&t.ID, &t.EmpleadoID, &t.Codigo, &t.CreadoEn, &t.ExpiraEn, &t.Usado, &t.UsadoEn,
		&t.IPUso, &t.AgenteUso, &t.IntentosFallidos, &t.Bloqueado,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token OTP: %w", err)
	}
	return &t, nil
}

// RegistrarIntentoFallido incremento y bloqueo en una sola sentencia: dos
// requests concurrentes nunca pierden un intento ni pasan del límite sin
// bloquear.
func (r *TokenOTPRepo) RegistrarIntentoFallido(id string) (int, bool, error) {
	query := `
		UPDATE tokens_otp
		SET intentos_fallidos = intentos_fallidos + 1,
		    bloqueado = (intentos_fallidos + 1 >= $2)
		WHERE id = $1
		RETURNING intentos_fallidos, bloqueado`
	var intentos int
	var bloqueado bool
	err := r.q.QueryRow(context.Background(), query, id, entity.MaxIntentosOTP).Scan(&intentos, &bloqueado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, domain.ErrTokenInvalido
		}
		return 0, false, fmt.Errorf("registrar intento fallido: %w", err)
	}
	return intentos, bloqueado, nil
}

func (r *TokenOTPRepo) MarcarUsado(id, ip, agente string) error {
	return marcarUsado(r.q, "tokens_otp", id, ip, agente)
}

// TokenResetRepo implementación del puerto sobre tokens_reset.
type TokenResetRepo struct {
	q Querier
}

// NewTokenResetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTokenResetRepository(q Querier) *TokenResetRepo {
	return &TokenResetRepo{q: q}
}

func (r *TokenResetRepo) Crear(t *entity.TokenReset) error {
	query := `
		INSERT INTO tokens_reset (id, empleado_id, valor, creado_en, expira_en, usado)
		VALUES ($1, $2, $3, $4, $5, false)`
	_, err := r.q.Exec(context.Background(), query, t.ID, t.EmpleadoID, t.Valor, t.CreadoEn, t.ExpiraEn)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicado
		}
		return fmt.Errorf("insert token reset: %w", err)
	}
	return nil
}

func (r *TokenResetRepo) InvalidarPendientes(empleadoID string) error {
	query := `
		UPDATE tokens_reset SET usado = true, usado_en = $2
		WHERE empleado_id = $1 AND usado = false`
	_, err := r.q.Exec(context.Background(), query, empleadoID, time.Now())
	if err != nil {
		return fmt.Errorf("invalidar tokens de reset: %w", err)
	}
	return nil
}

func (r *TokenResetRepo) GetVigentePorValor(valor string) (*entity.TokenReset, error) {
	query := `
		SELECT id, empleado_id, valor, creado_en, expira_en, usado, usado_en,
		       COALESCE(ip_uso, ''), COALESCE(agente_uso, '')
		FROM tokens_reset
		WHERE valor = $1 AND usado = false AND expira_en > now()`
	var t entity.TokenReset
	err := r.q.QueryRow(context.Background(), query, valor).Scan(
		&t.ID, &t.EmpleadoID, &t.Valor, &t.CreadoEn, &t.ExpiraEn, &t.Usado, &t.UsadoEn,
		&t.IPUso, &t.AgenteUso,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get token reset: %w", err)
	}
	return &t, nil
}

func (r *TokenResetRepo) MarcarUsado(id, ip, agente string) error {
	return marcarUsado(r.q, "tokens_reset", id, ip, agente)
}

func marcarUsado(q Querier, tabla, id, ip, agente string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET usado = true, usado_en = $2, ip_uso = $3, agente_uso = $4
		WHERE id = $1 AND usado = false`, tabla)
	tag, err := q.Exec(context.Background(), query, id, time.Now(), ip, agente)
	if err != nil {
		return fmt.Errorf("marcar token usado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTokenInvalido
	}
	return nil
}
