package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/credenciales"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de la aplicación.
var _ credenciales.TxRunner = (*TxRunner)(nil)
var _ acceso.TxRunner = (*TxRunner)(nil)
var _ activacion.TxRunner = (*TxRunner)(nil)
var _ usecase.AltaTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con los
// repos del callback atados a la tx. Cada Run* es una unidad atómica del core.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunTokenActivacion invalidar-e-insertar de tokens de activación.
func (r *TxRunner) RunTokenActivacion(ctx context.Context, fn func(repository.TokenActivacionRepository) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewTokenActivacionRepository(q))
	})
}

// RunTokenOTP invalidar-e-insertar de códigos OTP.
func (r *TxRunner) RunTokenOTP(ctx context.Context, fn func(repository.TokenOTPRepository) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewTokenOTPRepository(q))
	})
}

// RunTokenReset invalidar-e-insertar de tokens de reset.
func (r *TxRunner) RunTokenReset(ctx context.Context, fn func(repository.TokenResetRepository) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewTokenResetRepository(q))
	})
}

// RunActivacion transición de activación: usuario + empleado + consumo del token.
func (r *TxRunner) RunActivacion(ctx context.Context, fn func(
	usuarios repository.UsuarioRepository,
	empleados repository.EmpleadoRepository,
	tokens repository.TokenActivacionRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewUsuarioRepository(q), NewEmpleadoRepository(q), NewTokenActivacionRepository(q))
	})
}

// RunResetOTP restablecimiento por OTP: password + consumo del código.
func (r *TxRunner) RunResetOTP(ctx context.Context, fn func(
	usuarios repository.UsuarioRepository,
	empleados repository.EmpleadoRepository,
	tokens repository.TokenOTPRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewUsuarioRepository(q), NewEmpleadoRepository(q), NewTokenOTPRepository(q))
	})
}

// RunResetToken restablecimiento por enlace: password + consumo del token.
func (r *TxRunner) RunResetToken(ctx context.Context, fn func(
	usuarios repository.UsuarioRepository,
	empleados repository.EmpleadoRepository,
	tokens repository.TokenResetRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewUsuarioRepository(q), NewEmpleadoRepository(q), NewTokenResetRepository(q))
	})
}

// RunSincronizacionRol cambio de grupos del rol + reescritura de concesiones.
func (r *TxRunner) RunSincronizacionRol(ctx context.Context, fn func(
	roles repository.RolRepository,
	permisos repository.PermisoRepository,
	empleados repository.EmpleadoRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewRolRepository(q), NewPermisoRepository(q), NewEmpleadoRepository(q))
	})
}

// RunAltaEmpleado alta con acceso: usuario + empleado + token + concesiones.
func (r *TxRunner) RunAltaEmpleado(ctx context.Context, fn func(
	usuarios repository.UsuarioRepository,
	empleados repository.EmpleadoRepository,
	tokens repository.TokenActivacionRepository,
	permisos repository.PermisoRepository,
) error) error {
	return r.run(ctx, func(q Querier) error {
		return fn(NewUsuarioRepository(q), NewEmpleadoRepository(q), NewTokenActivacionRepository(q), NewPermisoRepository(q))
	})
}
