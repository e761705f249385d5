package acceso

import (
	"context"
	"fmt"
	"sort"

	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
)

// TxRunner contrato de transacción para la sincronización rol→permisos: el
// cambio de grupos y la reescritura de concesiones de cada empleado afectado
// viajan en la misma unidad atómica. Lo implementa *postgres.TxRunner.
type TxRunner interface {
	RunSincronizacionRol(ctx context.Context, fn func(
		roles repository.RolRepository,
		permisos repository.PermisoRepository,
		empleados repository.EmpleadoRepository,
	) error) error
}

// ContextoAcceso resultado de resolver el empleado de un usuario en un tenant.
type ContextoAcceso struct {
	Empleado *entity.Empleado
	Empresa  *entity.Empresa
	Rol      *entity.Rol // nil si el empleado no tiene rol asignado
}

// AccesoUseCase resolución de identidad y permisos por tenant: el choke point
// de autorización de todos los endpoints con alcance de empresa.
type AccesoUseCase struct {
	empleadoRepo repository.EmpleadoRepository
	empresaRepo  repository.EmpresaRepository
	rolRepo      repository.RolRepository
	permisoRepo  repository.PermisoRepository
	tx           TxRunner
	namespaces   *TablaNamespaces
	log          *logger.Logger
}

// NewAccesoUseCase construye el resolvedor de acceso.
func NewAccesoUseCase(
	empleadoRepo repository.EmpleadoRepository,
	empresaRepo repository.EmpresaRepository,
	rolRepo repository.RolRepository,
	permisoRepo repository.PermisoRepository,
	tx TxRunner,
	namespaces *TablaNamespaces,
	log *logger.Logger,
) *AccesoUseCase {
	return &AccesoUseCase{
		empleadoRepo: empleadoRepo,
		empresaRepo:  empresaRepo,
		rolRepo:      rolRepo,
		permisoRepo:  permisoRepo,
		tx:           tx,
		namespaces:   namespaces,
		log:          log,
	}
}

// ResolverEmpleado valida el vínculo (usuario, empresa) y devuelve el contexto.
// El mensaje de fallo solo revela que el usuario no tiene acceso a ESTA
// empresa, nunca si existe en otra.
func (uc *AccesoUseCase) ResolverEmpleado(usuarioID, empresaID string) (*ContextoAcceso, error) {
	empleado, err := uc.empleadoRepo.GetByUsuarioYEmpresa(usuarioID, empresaID)
	if err != nil {
		return nil, fmt.Errorf("resolver empleado: %w", err)
	}
	if empleado == nil {
		uc.log.Warn().Str("usuario_id", usuarioID).Str("empresa_id", empresaID).Msg("acceso denegado: sin empleado en la empresa")
		return nil, domain.ErrProhibido
	}
	if empleado.Estado != entity.EstadoActivo {
		uc.log.Warn().Str("usuario_id", usuarioID).Str("empresa_id", empresaID).Str("estado", empleado.Estado).Msg("acceso denegado: empleado no activo")
		return nil, domain.ErrProhibido
	}
	if !empleado.CuentaActivada {
		return nil, domain.ErrCuentaNoActivada
	}

	empresa, err := uc.empresaRepo.GetByID(empresaID)
	if err != nil {
		return nil, fmt.Errorf("cargar empresa: %w", err)
	}
	if empresa == nil || !empresa.Activa {
		return nil, domain.ErrProhibido
	}

	ctx := &ContextoAcceso{Empleado: empleado, Empresa: empresa}
	if empleado.RolID != nil {
		rol, err := uc.rolRepo.GetByID(*empleado.RolID)
		if err != nil {
			return nil, fmt.Errorf("cargar rol: %w", err)
		}
		ctx.Rol = rol
	}
	return ctx, nil
}

// PermisosEfectivos unión deduplicada de las concesiones directas del usuario
// y las heredadas vía todos sus grupos. Se recalcula en cada llamada; la
// sincronización de roles reescribe las directas, nunca hay caché vieja.
func (uc *AccesoUseCase) PermisosEfectivos(usuarioID string) ([]string, error) {
	directos, err := uc.permisoRepo.DirectosDeUsuario(usuarioID)
	if err != nil {
		return nil, fmt.Errorf("permisos directos: %w", err)
	}
	porGrupos, err := uc.permisoRepo.PorGruposDeUsuario(usuarioID)
	if err != nil {
		return nil, fmt.Errorf("permisos por grupos: %w", err)
	}
	set := make(map[string]struct{}, len(directos)+len(porGrupos))
	for _, c := range directos {
		set[c] = struct{}{}
	}
	for _, c := range porGrupos {
		set[c] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// VerificarPermiso chequea si el usuario, resuelto como empleado del tenant,
// posee el código bajo cualquiera de sus escrituras con namespace. Toda
// denegación es ErrProhibido (403), jamás un 500 ni un not-found distinguible.
func (uc *AccesoUseCase) VerificarPermiso(ctx context.Context, usuarioID, empresaID, codigo string) error {
	if usuarioID == "" || empresaID == "" {
		return domain.ErrProhibido
	}
	if _, err := uc.ResolverEmpleado(usuarioID, empresaID); err != nil {
		return err
	}
	permisos, err := uc.PermisosEfectivos(usuarioID)
	if err != nil {
		return fmt.Errorf("verificar permiso %s: %w", codigo, err)
	}
	set := make(map[string]struct{}, len(permisos))
	for _, c := range permisos {
		set[c] = struct{}{}
	}
	for _, variante := range uc.namespaces.Variantes(codigo) {
		if _, ok := set[variante]; ok {
			uc.log.Debug().Str("usuario_id", usuarioID).Str("permiso", variante).Msg("permiso concedido")
			return nil
		}
	}
	uc.log.Warn().Str("usuario_id", usuarioID).Str("empresa_id", empresaID).Str("permiso", codigo).Msg("permiso denegado")
	return domain.ErrProhibido
}

// SincronizarPermisosRol reemplaza los grupos del rol y reescribe, en la misma
// transacción, las concesiones directas de cada empleado activo, no eliminado y
// con usuario vinculado que tenga ese rol: exactamente la unión de permisos de
// los nuevos grupos (replace, no merge; los permisos del set anterior
// desaparecen).
func (uc *AccesoUseCase) SincronizarPermisosRol(ctx context.Context, empresaID, rolID string, grupoIDs []string) error {
	rol, err := uc.rolRepo.GetByID(rolID)
	if err != nil {
		return fmt.Errorf("cargar rol %s: %w", rolID, err)
	}
	if rol == nil || rol.EmpresaID != empresaID {
		return domain.ErrNotFound
	}

	err = uc.tx.RunSincronizacionRol(ctx, func(
		roles repository.RolRepository,
		permisos repository.PermisoRepository,
		empleados repository.EmpleadoRepository,
	) error {
		if err := roles.ReemplazarGrupos(rolID, grupoIDs); err != nil {
			return err
		}
		codigos, err := permisos.PorGrupos(grupoIDs)
		if err != nil {
			return err
		}
		afectados, err := empleados.ListarActivosPorRol(rolID)
		if err != nil {
			return err
		}
		for _, e := range afectados {
			if e.UsuarioID == nil {
				continue
			}
			if err := permisos.ReemplazarDirectos(*e.UsuarioID, codigos); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sincronizar permisos del rol %s: %w: %v", rolID, domain.ErrPersistencia, err)
	}
	uc.log.Info().Str("rol_id", rolID).Int("grupos", len(grupoIDs)).Msg("permisos de rol sincronizados")
	return nil
}
