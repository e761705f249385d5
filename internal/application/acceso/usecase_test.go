package acceso_test

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type empleadoRepoFake struct {
	empleados []*entity.Empleado
}

func (f *empleadoRepoFake) Crear(e *entity.Empleado) error { f.empleados = append(f.empleados, e); return nil }
func (f *empleadoRepoFake) GetByID(id string) (*entity.Empleado, error) {
	for _, e := range f.empleados {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}
func (f *empleadoRepoFake) GetByUsuarioYEmpresa(usuarioID, empresaID string) (*entity.Empleado, error) {
	for _, e := range f.empleados {
		if e.UsuarioID != nil && *e.UsuarioID == usuarioID && e.EmpresaID == empresaID {
			return e, nil
		}
	}
	return nil, nil
}
func (f *empleadoRepoFake) Actualizar(*entity.Empleado) error { return nil }
func (f *empleadoRepoFake) ListarPorEmpresa(string, int, int) ([]*entity.Empleado, error) {
	return nil, nil
}
func (f *empleadoRepoFake) ListarActivosPorRol(rolID string) ([]*entity.Empleado, error) {
	var out []*entity.Empleado
	for _, e := range f.empleados {
		if e.RolID != nil && *e.RolID == rolID && e.Estado == entity.EstadoActivo && e.UsuarioID != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

type empresaRepoFake struct {
	empresas []*entity.Empresa
}

func (f *empresaRepoFake) GetByID(id string) (*entity.Empresa, error) {
	for _, e := range f.empresas {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}
func (f *empresaRepoFake) GetBySubdominio(sub string) (*entity.Empresa, error) {
	for _, e := range f.empresas {
		if e.Subdominio == sub {
			return e, nil
		}
	}
	return nil, nil
}

type rolRepoFake struct {
	roles []*entity.Rol
}

func (f *rolRepoFake) Crear(r *entity.Rol) error { f.roles = append(f.roles, r); return nil }
func (f *rolRepoFake) GetByID(id string) (*entity.Rol, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}
func (f *rolRepoFake) ReemplazarGrupos(rolID string, grupoIDs []string) error {
	for _, r := range f.roles {
		if r.ID == rolID {
			r.GrupoIDs = append([]string(nil), grupoIDs...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type permisoRepoFake struct {
	directos  map[string][]string // usuarioID → códigos
	grupos    map[string][]string // usuarioID → códigos vía grupos
	porGrupo  map[string][]string // grupoID → códigos
}

func newPermisoRepoFake() *permisoRepoFake {
	return &permisoRepoFake{
		directos: make(map[string][]string),
		grupos:   make(map[string][]string),
		porGrupo: make(map[string][]string),
	}
}

func (f *permisoRepoFake) DirectosDeUsuario(usuarioID string) ([]string, error) {
	return f.directos[usuarioID], nil
}
func (f *permisoRepoFake) PorGruposDeUsuario(usuarioID string) ([]string, error) {
	return f.grupos[usuarioID], nil
}
func (f *permisoRepoFake) PorGrupos(grupoIDs []string) ([]string, error) {
	set := make(map[string]struct{})
	for _, g := range grupoIDs {
		for _, c := range f.porGrupo[g] {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
func (f *permisoRepoFake) ReemplazarDirectos(usuarioID string, codigos []string) error {
	f.directos[usuarioID] = append([]string(nil), codigos...)
	return nil
}

type txRunnerFake struct {
	roles     repository.RolRepository
	permisos  repository.PermisoRepository
	empleados repository.EmpleadoRepository
}

func (f *txRunnerFake) RunSincronizacionRol(ctx context.Context, fn func(
	repository.RolRepository, repository.PermisoRepository, repository.EmpleadoRepository) error) error {
	return fn(f.roles, f.permisos, f.empleados)
}

type entorno struct {
	uc        *acceso.AccesoUseCase
	empleados *empleadoRepoFake
	empresas  *empresaRepoFake
	roles     *rolRepoFake
	permisos  *permisoRepoFake
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	empleados := &empleadoRepoFake{}
	empresas := &empresaRepoFake{}
	roles := &rolRepoFake{}
	permisos := newPermisoRepoFake()
	tx := &txRunnerFake{roles: roles, permisos: permisos, empleados: empleados}
	ns := acceso.NuevaTablaNamespaces([]string{"inventario", "seguridad", "ventas", "compras"})
	uc := acceso.NewAccesoUseCase(empleados, empresas, roles, permisos, tx, ns, logger.Nop())
	return &entorno{uc: uc, empleados: empleados, empresas: empresas, roles: roles, permisos: permisos}
}

func ptr(s string) *string { return &s }

func (e *entorno) conEmpleadoActivo(usuarioID, empresaID string) *entity.Empleado {
	emp := &entity.Empleado{
		ID:             "emp-" + usuarioID,
		EmpresaID:      empresaID,
		UsuarioID:      ptr(usuarioID),
		Estado:         entity.EstadoActivo,
		CuentaActivada: true,
	}
	e.empleados.empleados = append(e.empleados.empleados, emp)
	e.empresas.empresas = append(e.empresas.empresas, &entity.Empresa{ID: empresaID, Activa: true})
	return emp
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución de empleado
// ──────────────────────────────────────────────────────────────────────────────

func TestResolverEmpleado_SinVinculoEnLaEmpresa_Prohibido(t *testing.T) {
	env := nuevoEntorno(t)
	env.conEmpleadoActivo("u-1", "empresa-a")

	// Mismo usuario, otra empresa: el vínculo no existe allá.
	_, err := env.uc.ResolverEmpleado("u-1", "empresa-b")
	assert.ErrorIs(t, err, domain.ErrProhibido)
}

func TestResolverEmpleado_EstadoNoActivo_Prohibido(t *testing.T) {
	env := nuevoEntorno(t)
	emp := env.conEmpleadoActivo("u-1", "empresa-a")

	for _, estado := range []string{entity.EstadoSuspendido, entity.EstadoTerminado, entity.EstadoInactivo} {
		emp.Estado = estado
		_, err := env.uc.ResolverEmpleado("u-1", "empresa-a")
		assert.ErrorIs(t, err, domain.ErrProhibido, "estado %s debe denegar", estado)
	}
}

func TestResolverEmpleado_CuentaSinActivar_ErrorEspecifico(t *testing.T) {
	env := nuevoEntorno(t)
	emp := env.conEmpleadoActivo("u-1", "empresa-a")
	emp.CuentaActivada = false

	_, err := env.uc.ResolverEmpleado("u-1", "empresa-a")
	assert.ErrorIs(t, err, domain.ErrCuentaNoActivada)
}

func TestResolverEmpleado_EmpresaInactiva_Prohibido(t *testing.T) {
	env := nuevoEntorno(t)
	env.conEmpleadoActivo("u-1", "empresa-a")
	env.empresas.empresas[0].Activa = false

	_, err := env.uc.ResolverEmpleado("u-1", "empresa-a")
	assert.ErrorIs(t, err, domain.ErrProhibido)
}

func TestResolverEmpleado_CargaElRol(t *testing.T) {
	env := nuevoEntorno(t)
	emp := env.conEmpleadoActivo("u-1", "empresa-a")
	emp.RolID = ptr("rol-1")
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a", Codigo: "vendedor"})

	ctx, err := env.uc.ResolverEmpleado("u-1", "empresa-a")
	require.NoError(t, err)
	require.NotNil(t, ctx.Rol)
	assert.Equal(t, "vendedor", ctx.Rol.Codigo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos efectivos
// ──────────────────────────────────────────────────────────────────────────────

func TestPermisosEfectivos_UnionDeduplicadaYOrdenada(t *testing.T) {
	env := nuevoEntorno(t)
	env.permisos.directos["u-1"] = []string{"ventas.crear", "productos_ver"}
	env.permisos.grupos["u-1"] = []string{"productos_ver", "inventario.ajustar"}

	permisos, err := env.uc.PermisosEfectivos("u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"inventario.ajustar", "productos_ver", "ventas.crear"}, permisos)
}

func TestPermisosEfectivos_SinConcesiones_Vacio(t *testing.T) {
	env := nuevoEntorno(t)

	permisos, err := env.uc.PermisosEfectivos("u-1")
	require.NoError(t, err)
	assert.Empty(t, permisos)
}

// ──────────────────────────────────────────────────────────────────────────────
// Namespaces
// ──────────────────────────────────────────────────────────────────────────────

func TestVariantes_CodigoPeladoYPorModulo(t *testing.T) {
	ns := acceso.NuevaTablaNamespaces([]string{"inventario", "ventas"})

	variantes := ns.Variantes("productos_ver")
	assert.Equal(t, []string{"productos_ver", "inventario.productos_ver", "ventas.productos_ver"}, variantes)
}

func TestVerificarPermiso_AceptaVarianteConNamespace(t *testing.T) {
	env := nuevoEntorno(t)
	env.conEmpleadoActivo("u-1", "empresa-a")
	// La concesión está escrita con prefijo de módulo; la verificación pide el
	// código pelado.
	env.permisos.directos["u-1"] = []string{"seguridad.usuarios_editar"}

	err := env.uc.VerificarPermiso(context.Background(), "u-1", "empresa-a", "usuarios_editar")
	assert.NoError(t, err)
}

func TestVerificarPermiso_SinPermiso_Prohibido(t *testing.T) {
	env := nuevoEntorno(t)
	env.conEmpleadoActivo("u-1", "empresa-a")
	env.permisos.directos["u-1"] = []string{"ventas.facturar"}

	err := env.uc.VerificarPermiso(context.Background(), "u-1", "empresa-a", "usuarios_editar")
	assert.ErrorIs(t, err, domain.ErrProhibido)
}

func TestVerificarPermiso_IDsVacios_Prohibido(t *testing.T) {
	env := nuevoEntorno(t)

	assert.ErrorIs(t, env.uc.VerificarPermiso(context.Background(), "", "empresa-a", "x"), domain.ErrProhibido)
	assert.ErrorIs(t, env.uc.VerificarPermiso(context.Background(), "u-1", "", "x"), domain.ErrProhibido)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sincronización rol → permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestSincronizarPermisosRol_ReemplazaNoMezcla(t *testing.T) {
	env := nuevoEntorno(t)
	emp := env.conEmpleadoActivo("u-1", "empresa-a")
	emp.RolID = ptr("rol-1")
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a", GrupoIDs: []string{"g-viejo"}})
	env.permisos.porGrupo["g-viejo"] = []string{"viejo_permiso"}
	env.permisos.porGrupo["g-nuevo"] = []string{"nuevo_a", "nuevo_b"}
	env.permisos.directos["u-1"] = []string{"viejo_permiso"}

	err := env.uc.SincronizarPermisosRol(context.Background(), "empresa-a", "rol-1", []string{"g-nuevo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"nuevo_a", "nuevo_b"}, env.permisos.directos["u-1"],
		"las concesiones anteriores desaparecen, no se mezclan")

	rol, _ := env.roles.GetByID("rol-1")
	assert.Equal(t, []string{"g-nuevo"}, rol.GrupoIDs)
}

func TestSincronizarPermisosRol_SoloEmpleadosActivosConUsuario(t *testing.T) {
	env := nuevoEntorno(t)
	activo := env.conEmpleadoActivo("u-1", "empresa-a")
	activo.RolID = ptr("rol-1")
	// Suspendido con el mismo rol: no debe tocarse.
	suspendido := &entity.Empleado{ID: "emp-2", EmpresaID: "empresa-a", UsuarioID: ptr("u-2"), Estado: entity.EstadoSuspendido, RolID: ptr("rol-1"), CuentaActivada: true}
	env.empleados.empleados = append(env.empleados.empleados, suspendido)
	env.permisos.directos["u-2"] = []string{"lo_que_tenia"}

	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a"})
	env.permisos.porGrupo["g-1"] = []string{"nuevo"}

	require.NoError(t, env.uc.SincronizarPermisosRol(context.Background(), "empresa-a", "rol-1", []string{"g-1"}))

	assert.Equal(t, []string{"nuevo"}, env.permisos.directos["u-1"])
	assert.Equal(t, []string{"lo_que_tenia"}, env.permisos.directos["u-2"],
		"empleados no activos quedan fuera de la resincronización")
}

func TestSincronizarPermisosRol_RolDeOtraEmpresa_NotFound(t *testing.T) {
	env := nuevoEntorno(t)
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-b"})

	err := env.uc.SincronizarPermisosRol(context.Background(), "empresa-a", "rol-1", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSincronizarPermisosRol_GruposVacios_DejaSinPermisos(t *testing.T) {
	env := nuevoEntorno(t)
	emp := env.conEmpleadoActivo("u-1", "empresa-a")
	emp.RolID = ptr("rol-1")
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a", GrupoIDs: []string{"g-1"}})
	env.permisos.directos["u-1"] = []string{"algo"}

	require.NoError(t, env.uc.SincronizarPermisosRol(context.Background(), "empresa-a", "rol-1", nil))
	assert.Empty(t, env.permisos.directos["u-1"])
}
