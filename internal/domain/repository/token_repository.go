package repository

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// TokenActivacionRepository puerto de persistencia para tokens de activación.
// Las filas se cierran lógicamente (usado=true), nunca se borran.
type TokenActivacionRepository interface {
	Crear(t *entity.TokenActivacion) error
	// InvalidarPendientes marca usados todos los tokens no usados del empleado.
	InvalidarPendientes(empleadoID string) error
	// GetVigentePorValor devuelve el token no usado y no expirado con ese valor,
	// o (nil, nil) si no existe; el caller no puede distinguir los casos.
	GetVigentePorValor(valor string) (*entity.TokenActivacion, error)
	MarcarUsado(id, ip, agente string) error
}

// TokenOTPRepository puerto de persistencia para códigos OTP.
type TokenOTPRepository interface {
	Crear(t *entity.TokenOTP) error
	InvalidarPendientes(empleadoID string) error
	// GetPendientePorEmpleado devuelve el OTP no usado y no expirado más reciente
	// del empleado, incluso si está bloqueado (el use case decide el mensaje).
	GetPendientePorEmpleado(empleadoID string) (*entity.TokenOTP, error)
	// RegistrarIntentoFallido incrementa intentos_fallidos de forma atómica y
	// bloquea la fila al llegar al límite. Devuelve el estado resultante.
	RegistrarIntentoFallido(id string) (intentos int, bloqueado bool, err error)
	MarcarUsado(id, ip, agente string) error
}

// TokenResetRepository puerto de persistencia para tokens de restablecimiento
// por enlace (pool independiente del de activación).
type TokenResetRepository interface {
	Crear(t *entity.TokenReset) error
	InvalidarPendientes(empleadoID string) error
	GetVigentePorValor(valor string) (*entity.TokenReset, error)
	MarcarUsado(id, ip, agente string) error
}
