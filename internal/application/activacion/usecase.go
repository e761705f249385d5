package activacion

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/tu-usuario/gestion-pro/internal/application/credenciales"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	pkgjwt "github.com/tu-usuario/gestion-pro/pkg/jwt"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
	"github.com/tu-usuario/gestion-pro/pkg/password"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig emisión de la credencial de ingreso posterior a la activación.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ActivacionUseCase máquina de estados provisioned → activated del empleado,
// con el OTP como canal alterno de restablecimiento. Activated es terminal:
// reactivar no es una transición soportada.
type ActivacionUseCase struct {
	credenciales *credenciales.CredencialesUseCase
	usuarioRepo  repository.UsuarioRepository
	empleadoRepo repository.EmpleadoRepository
	empresaRepo  repository.EmpresaRepository
	tokOTPRepo   repository.TokenOTPRepository
	tokResetRepo repository.TokenResetRepository
	tx           TxRunner
	validador    password.Validador
	notificador  Notificador
	urlReset     string // base del enlace de restablecimiento del correo
	jwtCfg       JWTConfig
	log          *logger.Logger
}

// NewActivacionUseCase construye la máquina de activación.
func NewActivacionUseCase(
	cred *credenciales.CredencialesUseCase,
	usuarioRepo repository.UsuarioRepository,
	empleadoRepo repository.EmpleadoRepository,
	empresaRepo repository.EmpresaRepository,
	tokOTPRepo repository.TokenOTPRepository,
	tokResetRepo repository.TokenResetRepository,
	tx TxRunner,
	validador password.Validador,
	notificador Notificador,
	urlReset string,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *ActivacionUseCase {
	return &ActivacionUseCase{
		credenciales: cred,
		usuarioRepo:  usuarioRepo,
		empleadoRepo: empleadoRepo,
		empresaRepo:  empresaRepo,
		tokOTPRepo:   tokOTPRepo,
		tokResetRepo: tokResetRepo,
		tx:           tx,
		validador:    validador,
		notificador:  notificador,
		urlReset:     urlReset,
		jwtCfg:       jwtCfg,
		log:          log,
	}
}

// VerificarToken resuelve el token para el GET de verificación: datos de
// presentación y minutos restantes, o el error uniforme de token inválido.
func (uc *ActivacionUseCase) VerificarToken(valor string) (*dto.VerificarTokenResponse, error) {
	token, empleado, err := uc.credenciales.VerificarTokenActivacion(valor)
	if err != nil {
		return nil, err
	}
	resp := &dto.VerificarTokenResponse{
		Empleado:         empleado.NombreCompleto(),
		MinutosRestantes: int(time.Until(token.ExpiraEn).Minutes()),
	}
	empresa, err := uc.empresaRepo.GetByID(empleado.EmpresaID)
	if err == nil && empresa != nil {
		resp.Empresa = empresa.NombreComercial
	}
	return resp, nil
}

// Activar ejecuta la transición provisioned → activated.
//
// Orden de chequeos: token inválido → ya activada → passwords no coinciden →
// password débil. Luego, en una sola transacción: password y activo del
// usuario, flags y fecha de activación del empleado, consumo del token con
// IP/user-agent. La credencial de ingreso se emite DESPUÉS del commit: si esa
// emisión falla, la activación ya quedó aplicada y no se revierte.
func (uc *ActivacionUseCase) Activar(ctx context.Context, in dto.ActivarCuentaRequest, ip, agente string) (*dto.ActivacionResponse, error) {
	_, empleado, err := uc.credenciales.VerificarTokenActivacion(in.Token)
	if err != nil {
		return nil, err
	}
	if empleado.CuentaActivada {
		return nil, domain.ErrYaActivada
	}
	if in.Password != in.PasswordConfirmacion {
		return nil, domain.ErrPasswordNoCoincide
	}
	if empleado.UsuarioID == nil {
		// Empleado provisionado sin acceso: el token no debería existir.
		uc.log.Error().Str("empleado_id", empleado.ID).Msg("token de activación sin usuario vinculado")
		return nil, domain.ErrTokenInvalido
	}
	usuario, err := uc.usuarioRepo.GetByID(*empleado.UsuarioID)
	if err != nil {
		return nil, fmt.Errorf("cargar usuario: %w", err)
	}
	if usuario == nil {
		return nil, domain.ErrTokenInvalido
	}
	if msgs := uc.validador.Validar(in.Password, usuario.Username); len(msgs) > 0 {
		return nil, &domain.ErrorPasswordDebil{Mensajes: msgs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashear password: %w", err)
	}

	now := time.Now()
	err = uc.tx.RunActivacion(ctx, func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenActivacionRepository,
	) error {
		// Releer dentro de la tx: otro request pudo consumir el token.
		vigente, err := tokens.GetVigentePorValor(in.Token)
		if err != nil {
			return err
		}
		if vigente == nil {
			return domain.ErrTokenInvalido
		}
		if err := tokens.MarcarUsado(vigente.ID, ip, agente); err != nil {
			return err
		}
		usuario.PasswordHash = string(hash)
		usuario.Activo = true
		usuario.ActualizadoEn = now
		if err := usuarios.Actualizar(usuario); err != nil {
			return err
		}
		empleado.CuentaActivada = true
		empleado.DebeCambiarPassword = false
		empleado.FechaActivacion = &now
		empleado.ActualizadoEn = now
		return empleados.Actualizar(empleado)
	})
	if err != nil {
		if errorsEsDominio(err) {
			return nil, err
		}
		return nil, fmt.Errorf("activar cuenta: %w: %v", domain.ErrPersistencia, err)
	}

	uc.log.Info().
		Str("empleado_id", empleado.ID).
		Str("usuario_id", usuario.ID).
		Str("ip", ip).
		Msg("cuenta activada")

	resp := &dto.ActivacionResponse{Username: usuario.Username, Mensaje: "cuenta activada"}
	rol := ""
	if empleado.RolID != nil {
		rol = *empleado.RolID
	}
	bearer, _, err := pkgjwt.Generate(uc.jwtCfg.Secret, usuario.ID, empleado.EmpresaID, rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		// La activación ya está confirmada; el usuario puede ingresar por login.
		uc.log.Error().Err(err).Str("usuario_id", usuario.ID).Msg("emisión de credencial post-activación falló")
		return resp, nil
	}
	resp.Token = bearer
	return resp, nil
}

// SolicitarOTP emite un código OTP para un empleado, a pedido de soporte. El
// gate de staff (permiso elevado) lo aplica el middleware antes de llegar acá.
func (uc *ActivacionUseCase) SolicitarOTP(ctx context.Context, empresaID, empleadoID string) error {
	empleado, err := uc.empleadoRepo.GetByID(empleadoID)
	if err != nil {
		return fmt.Errorf("cargar empleado: %w", err)
	}
	if empleado == nil || empleado.EmpresaID != empresaID {
		return domain.ErrNotFound
	}
	otp, err := uc.credenciales.EmitirOTP(ctx, empleadoID)
	if err != nil {
		return err
	}
	if err := uc.notificador.Enviar(Notificacion{
		Destinatario: empleado.Email,
		Asunto:       "Código de restablecimiento",
		Titulo:       "Restablecimiento de contraseña",
		Subtitulo:    "Código de un solo uso",
		Mensaje:      fmt.Sprintf("Su código es %s y vence en %d minutos.", otp.Codigo, int(time.Until(otp.ExpiraEn).Minutes())),
	}); err != nil {
		// La entrega no es parte de la unidad atómica de emisión.
		uc.log.Error().Err(err).Str("empleado_id", empleadoID).Msg("envío de OTP falló")
	}
	return nil
}

// RestablecerPorOTP valida username+código y establece el nuevo password.
//
// El lookup de usuario/empleado responde un "no encontrado" genérico que no
// revela existencia; una vez resuelto el empleado, los mensajes de OTP sí son
// específicos (intentos restantes o bloqueo).
func (uc *ActivacionUseCase) RestablecerPorOTP(ctx context.Context, empresaID string, in dto.RestablecerOTPRequest, ip, agente string) error {
	usuario, err := uc.usuarioRepo.GetByUsername(in.Username)
	if err != nil {
		return fmt.Errorf("buscar usuario: %w", err)
	}
	if usuario == nil {
		return domain.ErrNotFound
	}
	empleado, err := uc.empleadoRepo.GetByUsuarioYEmpresa(usuario.ID, empresaID)
	if err != nil {
		return fmt.Errorf("resolver empleado: %w", err)
	}
	if empleado == nil {
		return domain.ErrNotFound
	}

	otp, err := uc.tokOTPRepo.GetPendientePorEmpleado(empleado.ID)
	if err != nil {
		return fmt.Errorf("buscar OTP: %w", err)
	}
	if otp == nil {
		return domain.ErrTokenInvalido
	}
	if otp.Bloqueado {
		return domain.ErrOTPBloqueado
	}
	if subtle.ConstantTimeCompare([]byte(otp.Codigo), []byte(in.Codigo)) != 1 {
		intentos, bloqueado, err := uc.tokOTPRepo.RegistrarIntentoFallido(otp.ID)
		if err != nil {
			return fmt.Errorf("registrar intento fallido: %w", err)
		}
		uc.log.Warn().Str("empleado_id", empleado.ID).Str("ip", ip).Int("intentos", intentos).Msg("OTP incorrecto")
		if bloqueado {
			return domain.ErrOTPBloqueado
		}
		return &domain.ErrorOTPInvalido{IntentosRestantes: entity.MaxIntentosOTP - intentos}
	}

	if in.Password != in.PasswordConfirmacion {
		return domain.ErrPasswordNoCoincide
	}
	if msgs := uc.validador.Validar(in.Password, usuario.Username); len(msgs) > 0 {
		return &domain.ErrorPasswordDebil{Mensajes: msgs}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashear password: %w", err)
	}

	now := time.Now()
	err = uc.tx.RunResetOTP(ctx, func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenOTPRepository,
	) error {
		usuario.PasswordHash = string(hash)
		usuario.ActualizadoEn = now
		if err := usuarios.Actualizar(usuario); err != nil {
			return err
		}
		empleado.DebeCambiarPassword = false
		empleado.ActualizadoEn = now
		if err := empleados.Actualizar(empleado); err != nil {
			return err
		}
		return tokens.MarcarUsado(otp.ID, ip, agente)
	})
	if err != nil {
		return fmt.Errorf("restablecer password: %w: %v", domain.ErrPersistencia, err)
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Str("ip", ip).Msg("password restablecido por OTP")
	return nil
}

// SolicitarReset emite un token de restablecimiento por enlace, a pedido del
// propio usuario (olvidó su contraseña). Un username sin cuenta en el tenant
// responde éxito igual: la respuesta nunca revela existencia.
func (uc *ActivacionUseCase) SolicitarReset(ctx context.Context, empresaID, username string) error {
	if username == "" {
		return fmt.Errorf("username es requerido: %w", domain.ErrValidacion)
	}
	usuario, err := uc.usuarioRepo.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("buscar usuario: %w", err)
	}
	if usuario == nil {
		uc.log.Warn().Str("empresa_id", empresaID).Msg("solicitud de reset para username desconocido")
		return nil
	}
	empleado, err := uc.empleadoRepo.GetByUsuarioYEmpresa(usuario.ID, empresaID)
	if err != nil {
		return fmt.Errorf("resolver empleado: %w", err)
	}
	if empleado == nil {
		uc.log.Warn().Str("usuario_id", usuario.ID).Str("empresa_id", empresaID).Msg("solicitud de reset sin empleado en el tenant")
		return nil
	}

	token, err := uc.credenciales.EmitirTokenReset(ctx, empleado.ID)
	if err != nil {
		return err
	}
	if err := uc.notificador.Enviar(Notificacion{
		Destinatario: empleado.Email,
		Asunto:       "Restablecimiento de contraseña",
		Titulo:       "Restablecimiento de contraseña",
		Subtitulo:    "Enlace de un solo uso",
		Mensaje:      fmt.Sprintf("Use el enlace para establecer una nueva contraseña. Vence en %d minutos.", int(time.Until(token.ExpiraEn).Minutes())),
		AccionURL:    uc.urlReset + token.Valor,
	}); err != nil {
		// La entrega no es parte de la unidad atómica de emisión.
		uc.log.Error().Err(err).Str("empleado_id", empleado.ID).Msg("envío de enlace de reset falló")
	}
	return nil
}

// RestablecerPorToken valida el token del enlace y establece el nuevo
// password. Inexistente, usado, expirado y de otro tenant responden el mismo
// error genérico.
func (uc *ActivacionUseCase) RestablecerPorToken(ctx context.Context, empresaID string, in dto.RestablecerTokenRequest, ip, agente string) error {
	if in.Token == "" {
		return domain.ErrTokenInvalido
	}
	token, err := uc.tokResetRepo.GetVigentePorValor(in.Token)
	if err != nil {
		return fmt.Errorf("verificar token de reset: %w", err)
	}
	if token == nil {
		return domain.ErrTokenInvalido
	}
	empleado, err := uc.empleadoRepo.GetByID(token.EmpleadoID)
	if err != nil {
		return fmt.Errorf("cargar empleado del token: %w", err)
	}
	if empleado == nil || empleado.EmpresaID != empresaID || empleado.UsuarioID == nil {
		return domain.ErrTokenInvalido
	}
	usuario, err := uc.usuarioRepo.GetByID(*empleado.UsuarioID)
	if err != nil {
		return fmt.Errorf("cargar usuario: %w", err)
	}
	if usuario == nil {
		return domain.ErrTokenInvalido
	}

	if in.Password != in.PasswordConfirmacion {
		return domain.ErrPasswordNoCoincide
	}
	if msgs := uc.validador.Validar(in.Password, usuario.Username); len(msgs) > 0 {
		return &domain.ErrorPasswordDebil{Mensajes: msgs}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashear password: %w", err)
	}

	now := time.Now()
	err = uc.tx.RunResetToken(ctx, func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenResetRepository,
	) error {
		// MarcarUsado exige usado=false: un request concurrente con el mismo
		// token pierde acá.
		if err := tokens.MarcarUsado(token.ID, ip, agente); err != nil {
			return err
		}
		usuario.PasswordHash = string(hash)
		usuario.ActualizadoEn = now
		if err := usuarios.Actualizar(usuario); err != nil {
			return err
		}
		empleado.DebeCambiarPassword = false
		empleado.ActualizadoEn = now
		return empleados.Actualizar(empleado)
	})
	if err != nil {
		if errorsEsDominio(err) {
			return err
		}
		return fmt.Errorf("restablecer password: %w: %v", domain.ErrPersistencia, err)
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Str("ip", ip).Msg("password restablecido por enlace")
	return nil
}

// errorsEsDominio distingue los errores de dominio esperables dentro de la tx
// de los fallos de persistencia.
func errorsEsDominio(err error) bool {
	return errors.Is(err, domain.ErrTokenInvalido)
}
