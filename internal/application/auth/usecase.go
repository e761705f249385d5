package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	pkgjwt "github.com/tu-usuario/gestion-pro/pkg/jwt"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, logout y whoami, siempre
// con el tenant ya resuelto por el middleware.
type AuthUseCase struct {
	usuarioRepo repository.UsuarioRepository
	acceso      *acceso.AccesoUseCase
	revocador   RevocadorSesiones
	jwtCfg      JWTConfig
	log         *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(usuarioRepo repository.UsuarioRepository, accesoUC *acceso.AccesoUseCase, revocador RevocadorSesiones, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{usuarioRepo: usuarioRepo, acceso: accesoUC, revocador: revocador, jwtCfg: jwtCfg, log: log}
}

// Login verifica credenciales contra el tenant resuelto y devuelve la
// credencial bearer más el resumen de empleado/empresa y los permisos
// efectivos. Usuario inexistente y password incorrecto responden lo mismo.
func (uc *AuthUseCase) Login(in dto.LoginRequest, empresaID, ip string) (*dto.LoginResponse, error) {
	usuario, err := uc.usuarioRepo.GetByUsername(in.Username)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if usuario == nil {
		uc.log.Warn().Str("ip", ip).Str("empresa_id", empresaID).Msg("login fallido")
		return nil, domain.ErrCredencialesInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Warn().Str("usuario_id", usuario.ID).Str("ip", ip).Str("empresa_id", empresaID).Msg("login fallido")
		return nil, domain.ErrCredencialesInvalidas
	}
	if !usuario.Activo {
		return nil, domain.ErrUsuarioInactivo
	}

	ctxAcceso, err := uc.acceso.ResolverEmpleado(usuario.ID, empresaID)
	if err != nil {
		return nil, err
	}
	permisos, err := uc.acceso.PermisosEfectivos(usuario.ID)
	if err != nil {
		return nil, fmt.Errorf("permisos efectivos: %w", err)
	}

	rol := ""
	if ctxAcceso.Rol != nil {
		rol = ctxAcceso.Rol.Codigo
	}
	token, _, err := pkgjwt.Generate(uc.jwtCfg.Secret, usuario.ID, empresaID, rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generar credencial: %w", err)
	}

	uc.log.Info().Str("usuario_id", usuario.ID).Str("empresa_id", empresaID).Str("ip", ip).Msg("login exitoso")
	return &dto.LoginResponse{
		Token:    token,
		Empleado: aEmpleadoResumen(ctxAcceso.Empleado),
		Empresa:  aEmpresaResumen(ctxAcceso.Empresa),
		Permisos: permisos,
	}, nil
}

// Logout revoca la credencial vigente hasta su expiración natural.
func (uc *AuthUseCase) Logout(ctx context.Context, jti string, expiraEn time.Time) error {
	if jti == "" {
		return domain.ErrValidacion
	}
	if err := uc.revocador.Revocar(ctx, jti, time.Until(expiraEn)); err != nil {
		return fmt.Errorf("revocar sesión: %w", err)
	}
	return nil
}

// CheckAuth whoami: usuario actual + empleado del tenant, o error 403 si el
// vínculo con esta empresa no es válido.
func (uc *AuthUseCase) CheckAuth(usuarioID, empresaID string) (*dto.CheckAuthResponse, error) {
	usuario, err := uc.usuarioRepo.GetByID(usuarioID)
	if err != nil {
		return nil, fmt.Errorf("cargar usuario: %w", err)
	}
	if usuario == nil || !usuario.Activo {
		return nil, domain.ErrProhibido
	}
	ctxAcceso, err := uc.acceso.ResolverEmpleado(usuarioID, empresaID)
	if err != nil {
		return nil, err
	}
	return &dto.CheckAuthResponse{
		UsuarioID: usuario.ID,
		Username:  usuario.Username,
		Empleado:  aEmpleadoResumen(ctxAcceso.Empleado),
		Empresa:   aEmpresaResumen(ctxAcceso.Empresa),
	}, nil
}

func aEmpleadoResumen(e *entity.Empleado) dto.EmpleadoResumen {
	return dto.EmpleadoResumen{
		ID:             e.ID,
		Codigo:         e.Codigo,
		Nombres:        e.Nombres,
		Apellidos:      e.Apellidos,
		Estado:         e.Estado,
		DepartamentoID: e.DepartamentoID,
		RolID:          e.RolID,
	}
}

func aEmpresaResumen(e *entity.Empresa) dto.EmpresaResumen {
	return dto.EmpresaResumen{
		ID:              e.ID,
		NombreComercial: e.NombreComercial,
		Subdominio:      e.Subdominio,
	}
}
