package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/credenciales"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// maxIntentosUsername reintentos de alta ante colisión de username concurrente.
const maxIntentosUsername = 3

// AltaTxRunner unidad atómica del alta con acceso: usuario + empleado + token
// de activación + concesiones iniciales. Lo implementa *postgres.TxRunner.
type AltaTxRunner interface {
	RunAltaEmpleado(ctx context.Context, fn func(
		usuarios repository.UsuarioRepository,
		empleados repository.EmpleadoRepository,
		tokens repository.TokenActivacionRepository,
		permisos repository.PermisoRepository,
	) error) error
}

// EmpleadoUseCase alta, consulta y actualización parcial de empleados.
// El resto del CRUD por entidad es plomería equivalente y se mantiene mínimo.
type EmpleadoUseCase struct {
	empleadoRepo  repository.EmpleadoRepository
	usuarioRepo   repository.UsuarioRepository
	rolRepo       repository.RolRepository
	permisoRepo   repository.PermisoRepository
	credenciales  *credenciales.CredencialesUseCase
	tx            AltaTxRunner
	notificador   activacion.Notificador
	urlActivacion string // base del call-to-action del correo de bienvenida
	log           *logger.Logger
}

// NewEmpleadoUseCase construye el caso de uso de empleados.
func NewEmpleadoUseCase(
	empleadoRepo repository.EmpleadoRepository,
	usuarioRepo repository.UsuarioRepository,
	rolRepo repository.RolRepository,
	permisoRepo repository.PermisoRepository,
	cred *credenciales.CredencialesUseCase,
	tx AltaTxRunner,
	notificador activacion.Notificador,
	urlActivacion string,
	log *logger.Logger,
) *EmpleadoUseCase {
	return &EmpleadoUseCase{
		empleadoRepo:  empleadoRepo,
		usuarioRepo:   usuarioRepo,
		rolRepo:       rolRepo,
		permisoRepo:   permisoRepo,
		credenciales:  cred,
		tx:            tx,
		notificador:   notificador,
		urlActivacion: urlActivacion,
		log:           log,
	}
}

// Crear da de alta un empleado. Con CrearAcceso provisiona además el usuario
// de login (inactivo, password aleatorio), emite el token de activación y deja
// las concesiones directas iniciales según el rol, todo en una transacción.
// Una colisión de username bajo concurrencia reintenta con el siguiente sufijo.
func (uc *EmpleadoUseCase) Crear(ctx context.Context, empresaID string, in dto.CrearEmpleadoRequest) (*dto.EmpleadoResponse, error) {
	if in.Codigo == "" || in.Nombres == "" || in.Apellidos == "" || in.Documento == "" {
		return nil, fmt.Errorf("codigo, nombres, apellidos y documento son requeridos: %w", domain.ErrValidacion)
	}
	if in.FechaIngreso.IsZero() {
		return nil, fmt.Errorf("fecha_ingreso es requerida: %w", domain.ErrValidacion)
	}

	var codigosIniciales []string
	if in.RolID != nil {
		rol, err := uc.rolRepo.GetByID(*in.RolID)
		if err != nil {
			return nil, fmt.Errorf("cargar rol: %w", err)
		}
		if rol == nil || rol.EmpresaID != empresaID {
			return nil, fmt.Errorf("rol inexistente: %w", domain.ErrValidacion)
		}
		codigosIniciales, err = uc.permisoRepo.PorGrupos(rol.GrupoIDs)
		if err != nil {
			return nil, fmt.Errorf("permisos del rol: %w", err)
		}
	}

	now := time.Now()
	empleado := &entity.Empleado{
		ID:                  uuid.New().String(),
		EmpresaID:           empresaID,
		Codigo:              in.Codigo,
		Nombres:             in.Nombres,
		Apellidos:           in.Apellidos,
		Documento:           in.Documento,
		Email:               in.Email,
		FechaIngreso:        in.FechaIngreso,
		Salario:             in.Salario,
		Estado:              entity.EstadoActivo,
		DepartamentoID:      in.DepartamentoID,
		CargoID:             in.CargoID,
		RolID:               in.RolID,
		CuentaActivada:      false,
		DebeCambiarPassword: true,
		CreadoEn:            now,
		ActualizadoEn:       now,
	}

	if !in.CrearAcceso {
		if err := uc.empleadoRepo.Crear(empleado); err != nil {
			return nil, err
		}
		return uc.aResponse(empleado, ""), nil
	}

	var usuario *entity.Usuario
	var token *entity.TokenActivacion
	for intento := 1; ; intento++ {
		username, err := uc.credenciales.GenerarUsername(in.Nombres, in.Apellidos)
		if err != nil {
			return nil, err
		}
		// Password aleatorio de relleno: nunca se comunica; la activación lo
		// reemplaza por el elegido por el empleado.
		relleno, err := credenciales.GenerarTokenSeguro()
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(relleno), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashear password de relleno: %w", err)
		}
		valor, err := credenciales.GenerarTokenSeguro()
		if err != nil {
			return nil, err
		}

		usuario = &entity.Usuario{
			ID:            uuid.New().String(),
			Username:      username,
			Email:         in.Email,
			PasswordHash:  string(hash),
			Activo:        false,
			CreadoEn:      now,
			ActualizadoEn: now,
		}
		empleado.UsuarioID = &usuario.ID
		token = &entity.TokenActivacion{
			ID:         uuid.New().String(),
			EmpleadoID: empleado.ID,
			Valor:      valor,
			CreadoEn:   now,
			ExpiraEn:   now.Add(uc.credenciales.VigenciaActivacion()),
		}

		// Solo la colisión de username amerita reintento; un duplicado del
		// empleado (codigo, documento) es un 409 definitivo.
		var colisionUsername bool
		err = uc.tx.RunAltaEmpleado(ctx, func(
			usuarios repository.UsuarioRepository,
			empleados repository.EmpleadoRepository,
			tokens repository.TokenActivacionRepository,
			permisos repository.PermisoRepository,
		) error {
			if err := usuarios.Crear(usuario); err != nil {
				colisionUsername = errors.Is(err, domain.ErrDuplicado)
				return err
			}
			if err := empleados.Crear(empleado); err != nil {
				return err
			}
			if err := tokens.InvalidarPendientes(empleado.ID); err != nil {
				return err
			}
			if err := tokens.Crear(token); err != nil {
				return err
			}
			if len(codigosIniciales) > 0 {
				return permisos.ReemplazarDirectos(usuario.ID, codigosIniciales)
			}
			return nil
		})
		if err == nil {
			break
		}
		// El índice único de usernames es quien arbitra la carrera: ante
		// colisión se regenera con el siguiente sufijo y se reintenta.
		if colisionUsername && intento < maxIntentosUsername {
			uc.log.Warn().Str("username", username).Int("intento", intento).Msg("colisión de username, reintentando")
			continue
		}
		return nil, err
	}

	uc.log.Info().
		Str("empleado_id", empleado.ID).
		Str("usuario_id", usuario.ID).
		Str("empresa_id", empresaID).
		Msg("empleado creado con acceso")

	if err := uc.notificador.Enviar(activacion.Notificacion{
		Destinatario: empleado.Email,
		Asunto:       "Active su cuenta",
		Titulo:       "Bienvenido/a",
		Subtitulo:    "Su cuenta está lista para activarse",
		Mensaje:      fmt.Sprintf("Su usuario es %s. Use el enlace para establecer su contraseña.", usuario.Username),
		AccionURL:    uc.urlActivacion + token.Valor,
	}); err != nil {
		// La entrega de correo no forma parte de la transacción de alta.
		uc.log.Error().Err(err).Str("empleado_id", empleado.ID).Msg("envío de correo de activación falló")
	}

	return uc.aResponse(empleado, usuario.Username), nil
}

// GetByID devuelve un empleado del tenant.
func (uc *EmpleadoUseCase) GetByID(empresaID, id string) (*dto.EmpleadoResponse, error) {
	empleado, err := uc.empleadoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if empleado == nil || empleado.EmpresaID != empresaID {
		return nil, domain.ErrNotFound
	}
	username := ""
	if empleado.UsuarioID != nil {
		if u, err := uc.usuarioRepo.GetByID(*empleado.UsuarioID); err == nil && u != nil {
			username = u.Username
		}
	}
	return uc.aResponse(empleado, username), nil
}

// Listar empleados del tenant con paginación.
func (uc *EmpleadoUseCase) Listar(empresaID string, page dto.PageRequest) ([]*dto.EmpleadoResponse, error) {
	page.DefaultPage()
	lista, err := uc.empleadoRepo.ListarPorEmpresa(empresaID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EmpleadoResponse, 0, len(lista))
	for _, e := range lista {
		out = append(out, uc.aResponse(e, ""))
	}
	return out, nil
}

// Actualizar aplica una actualización parcial. Los FKs opcionales distinguen
// ausente (no tocar), null explícito (limpiar) y valor explícito (asignar).
func (uc *EmpleadoUseCase) Actualizar(empresaID, id string, in dto.ActualizarEmpleadoRequest) (*dto.EmpleadoResponse, error) {
	empleado, err := uc.empleadoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if empleado == nil || empleado.EmpresaID != empresaID {
		return nil, domain.ErrNotFound
	}

	if in.Nombres != nil {
		empleado.Nombres = *in.Nombres
	}
	if in.Apellidos != nil {
		empleado.Apellidos = *in.Apellidos
	}
	if in.Email != nil {
		empleado.Email = *in.Email
	}
	if in.Salario != nil {
		empleado.Salario = *in.Salario
	}
	if in.Estado != nil {
		if !entity.EstadoValido(*in.Estado) {
			return nil, fmt.Errorf("estado %q no válido: %w", *in.Estado, domain.ErrValidacion)
		}
		empleado.Estado = *in.Estado
	}
	if in.FechaTerminacion != nil {
		empleado.FechaTerminacion = in.FechaTerminacion
	}
	if in.DepartamentoID.Definido {
		empleado.DepartamentoID = in.DepartamentoID.Valor
	}
	if in.CargoID.Definido {
		empleado.CargoID = in.CargoID.Valor
	}
	if in.RolID.Definido {
		empleado.RolID = in.RolID.Valor
	}

	// Invariantes de terminación.
	if empleado.Estado == entity.EstadoTerminado && empleado.FechaTerminacion == nil {
		return nil, fmt.Errorf("estado terminado requiere fecha_terminacion: %w", domain.ErrValidacion)
	}
	if empleado.Estado != entity.EstadoTerminado {
		empleado.FechaTerminacion = nil
	}
	if empleado.FechaTerminacion != nil && empleado.FechaTerminacion.Before(empleado.FechaIngreso) {
		return nil, fmt.Errorf("fecha_terminacion anterior a fecha_ingreso: %w", domain.ErrValidacion)
	}

	empleado.ActualizadoEn = time.Now()
	if err := uc.empleadoRepo.Actualizar(empleado); err != nil {
		return nil, err
	}
	return uc.aResponse(empleado, ""), nil
}

func (uc *EmpleadoUseCase) aResponse(e *entity.Empleado, username string) *dto.EmpleadoResponse {
	return &dto.EmpleadoResponse{
		ID:                  e.ID,
		EmpresaID:           e.EmpresaID,
		Codigo:              e.Codigo,
		Nombres:             e.Nombres,
		Apellidos:           e.Apellidos,
		Documento:           e.Documento,
		Email:               e.Email,
		Username:            username,
		FechaIngreso:        e.FechaIngreso,
		FechaTerminacion:    e.FechaTerminacion,
		Salario:             e.Salario,
		Estado:              e.Estado,
		DepartamentoID:      e.DepartamentoID,
		CargoID:             e.CargoID,
		RolID:               e.RolID,
		CuentaActivada:      e.CuentaActivada,
		DebeCambiarPassword: e.DebeCambiarPassword,
		CreadoEn:            e.CreadoEn,
		ActualizadoEn:       e.ActualizadoEn,
	}
}
