package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tu-usuario/gestion-pro/internal/application/auth"
	"github.com/tu-usuario/gestion-pro/pkg/config"
)

var _ auth.RevocadorSesiones = (*Revocador)(nil)

// Revocador lista de revocación de jti compartida entre instancias. La clave
// expira sola cuando el token hubiera expirado, así la lista no crece.
type Revocador struct {
	client *goredis.Client
}

// NewRevocador conecta con redis y verifica la conexión.
func NewRevocador(ctx context.Context, cfg config.RedisConfig) (*Revocador, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Revocador{client: client}, nil
}

// Revocar registra el jti con el TTL restante del token.
func (r *Revocador) Revocar(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, clave(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocar sesión: %w", err)
	}
	return nil
}

// EstaRevocado consulta la lista.
func (r *Revocador) EstaRevocado(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, clave(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("consultar revocación: %w", err)
	}
	return n > 0, nil
}

// Close cierra la conexión con redis.
func (r *Revocador) Close() error {
	return r.client.Close()
}

func clave(jti string) string {
	return "sesiones:revocadas:" + jti
}
