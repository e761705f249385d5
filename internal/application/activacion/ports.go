package activacion

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// TxRunner unidades atómicas del ciclo de activación/restablecimiento.
// Lo implementa *postgres.TxRunner.
type TxRunner interface {
	// RunActivacion agrupa: password+activo del usuario, flags del empleado y
	// consumo del token. Todo o nada.
	RunActivacion(ctx context.Context, fn func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenActivacionRepository,
	) error) error
	// RunResetOTP agrupa: nuevo password del usuario y consumo del OTP.
	RunResetOTP(ctx context.Context, fn func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenOTPRepository,
	) error) error
	// RunResetToken agrupa: nuevo password del usuario y consumo del token
	// de enlace.
	RunResetToken(ctx context.Context, fn func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenResetRepository,
	) error) error
}

// Notificacion contenido plantillado para el colaborador de notificaciones.
type Notificacion struct {
	Destinatario string
	Asunto       string
	Titulo       string
	Subtitulo    string
	Mensaje      string
	AccionURL    string // opcional: call-to-action (enlace de activación)
}

// Notificador colaborador externo de entrega de correo. Un fallo de entrega se
// reporta pero nunca revierte la transición de estado que acompaña.
type Notificador interface {
	Enviar(n Notificacion) error
}
