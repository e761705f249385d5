package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RevocadorSesiones lista de revocación de credenciales bearer: logout registra
// el jti hasta que el token hubiera expirado por sí solo. Implementaciones:
// redis (producción) y memoria (dev/tests).
type RevocadorSesiones interface {
	Revocar(ctx context.Context, jti string, ttl time.Duration) error
	EstaRevocado(ctx context.Context, jti string) (bool, error)
}

// RevocadorMemoria revocador en proceso sobre go-cache con expiración por TTL.
// Suficiente para una sola instancia; en despliegues multi-nodo usar redis.
type RevocadorMemoria struct {
	c *gocache.Cache
}

// NewRevocadorMemoria construye el revocador en memoria.
func NewRevocadorMemoria() *RevocadorMemoria {
	return &RevocadorMemoria{c: gocache.New(time.Hour, 10*time.Minute)}
}

// Revocar registra el jti con el TTL restante del token.
func (r *RevocadorMemoria) Revocar(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // ya expiró, nada que revocar
	}
	r.c.Set(jti, struct{}{}, ttl)
	return nil
}

// EstaRevocado consulta la lista.
func (r *RevocadorMemoria) EstaRevocado(_ context.Context, jti string) (bool, error) {
	_, ok := r.c.Get(jti)
	return ok, nil
}
