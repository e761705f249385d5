package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/credenciales"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// usuarioRepoFake permite forzar colisiones de username para ejercitar el
// reintento del alta.
type usuarioRepoFake struct {
	usuarios      []*entity.Usuario
	fallosCrear   int // cuántos Crear devuelven ErrDuplicado antes de aceptar
	intentosCrear int
}

func (f *usuarioRepoFake) Crear(u *entity.Usuario) error {
	f.intentosCrear++
	if f.fallosCrear > 0 {
		f.fallosCrear--
		return domain.ErrDuplicado
	}
	for _, existente := range f.usuarios {
		if existente.Username == u.Username {
			return domain.ErrDuplicado
		}
	}
	f.usuarios = append(f.usuarios, u)
	return nil
}

func (f *usuarioRepoFake) GetByID(id string) (*entity.Usuario, error) {
	for _, u := range f.usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *usuarioRepoFake) GetByUsername(username string) (*entity.Usuario, error) {
	for _, u := range f.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *usuarioRepoFake) UltimoUsernameConPrefijo(prefijo string) (string, error) {
	mayor := ""
	for _, u := range f.usuarios {
		if strings.HasPrefix(u.Username, prefijo) && u.Username > mayor {
			mayor = u.Username
		}
	}
	return mayor, nil
}

func (f *usuarioRepoFake) Actualizar(*entity.Usuario) error { return nil }

type empleadoRepoFake struct {
	empleados []*entity.Empleado
	duplicado bool // simula violación de unicidad de codigo/documento
}

func (f *empleadoRepoFake) Crear(e *entity.Empleado) error {
	if f.duplicado {
		return domain.ErrDuplicado
	}
	copia := *e
	f.empleados = append(f.empleados, &copia)
	return nil
}
func (f *empleadoRepoFake) GetByID(id string) (*entity.Empleado, error) {
	for _, e := range f.empleados {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}
func (f *empleadoRepoFake) GetByUsuarioYEmpresa(string, string) (*entity.Empleado, error) {
	return nil, nil
}
func (f *empleadoRepoFake) Actualizar(e *entity.Empleado) error {
	for i, existente := range f.empleados {
		if existente.ID == e.ID {
			f.empleados[i] = e
			return nil
		}
	}
	return domain.ErrNotFound
}
func (f *empleadoRepoFake) ListarPorEmpresa(empresaID string, limit, offset int) ([]*entity.Empleado, error) {
	var out []*entity.Empleado
	for _, e := range f.empleados {
		if e.EmpresaID == empresaID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *empleadoRepoFake) ListarActivosPorRol(string) ([]*entity.Empleado, error) { return nil, nil }

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
func (f *rolRepoFake) ReemplazarGrupos(string, []string) error { return nil }

type permisoRepoFake struct {
	porGrupo map[string][]string
	directos map[string][]string
}

func (f *permisoRepoFake) DirectosDeUsuario(usuarioID string) ([]string, error) {
	return f.directos[usuarioID], nil
}
func (f *permisoRepoFake) PorGruposDeUsuario(string) ([]string, error) { return nil, nil }
func (f *permisoRepoFake) PorGrupos(grupoIDs []string) ([]string, error) {
	var out []string
	for _, g := range grupoIDs {
		out = append(out, f.porGrupo[g]...)
	}
	return out, nil
}
func (f *permisoRepoFake) ReemplazarDirectos(usuarioID string, codigos []string) error {
	f.directos[usuarioID] = append([]string(nil), codigos...)
	return nil
}

type tokenActivacionRepoFake struct {
	tokens []*entity.TokenActivacion
}

func (f *tokenActivacionRepoFake) Crear(t *entity.TokenActivacion) error {
	copia := *t
	f.tokens = append(f.tokens, &copia)
	return nil
}
func (f *tokenActivacionRepoFake) InvalidarPendientes(empleadoID string) error {
	for _, t := range f.tokens {
		if t.EmpleadoID == empleadoID && !t.Usado {
			t.Usado = true
		}
	}
	return nil
}
func (f *tokenActivacionRepoFake) GetVigentePorValor(valor string) (*entity.TokenActivacion, error) {
	for _, t := range f.tokens {
		if t.Valor == valor && t.EsValido() {
			return t, nil
		}
	}
	return nil, nil
}
func (f *tokenActivacionRepoFake) MarcarUsado(string, string, string) error { return nil }

type tokenOTPRepoFake struct{}

func (f *tokenOTPRepoFake) Crear(*entity.TokenOTP) error                             { return nil }
func (f *tokenOTPRepoFake) InvalidarPendientes(string) error                         { return nil }
func (f *tokenOTPRepoFake) GetPendientePorEmpleado(string) (*entity.TokenOTP, error) { return nil, nil }
func (f *tokenOTPRepoFake) RegistrarIntentoFallido(string) (int, bool, error)        { return 0, false, nil }
func (f *tokenOTPRepoFake) MarcarUsado(string, string, string) error                 { return nil }

type tokenResetRepoFake struct{}

func (f *tokenResetRepoFake) Crear(*entity.TokenReset) error                        { return nil }
func (f *tokenResetRepoFake) InvalidarPendientes(string) error                      { return nil }
func (f *tokenResetRepoFake) GetVigentePorValor(string) (*entity.TokenReset, error) { return nil, nil }
func (f *tokenResetRepoFake) MarcarUsado(string, string, string) error              { return nil }

// txRunnerFake simula el rollback del alta: si el callback falla, deshace los
// usuarios y empleados insertados durante esa corrida.
type txRunnerFake struct {
	usuarios  *usuarioRepoFake
	empleados *empleadoRepoFake
	tokens    *tokenActivacionRepoFake
	permisos  *permisoRepoFake
	tokOTP    *tokenOTPRepoFake
	tokReset  *tokenResetRepoFake
}

func (f *txRunnerFake) RunAltaEmpleado(ctx context.Context, fn func(
	repository.UsuarioRepository, repository.EmpleadoRepository,
	repository.TokenActivacionRepository, repository.PermisoRepository) error) error {
	usuariosAntes := len(f.usuarios.usuarios)
	empleadosAntes := len(f.empleados.empleados)
	tokensAntes := len(f.tokens.tokens)
	err := fn(f.usuarios, f.empleados, f.tokens, f.permisos)
	if err != nil {
		f.usuarios.usuarios = f.usuarios.usuarios[:usuariosAntes]
		f.empleados.empleados = f.empleados.empleados[:empleadosAntes]
		f.tokens.tokens = f.tokens.tokens[:tokensAntes]
	}
	return err
}

func (f *txRunnerFake) RunTokenActivacion(ctx context.Context, fn func(repository.TokenActivacionRepository) error) error {
	return fn(f.tokens)
}
func (f *txRunnerFake) RunTokenOTP(ctx context.Context, fn func(repository.TokenOTPRepository) error) error {
	return fn(f.tokOTP)
}
func (f *txRunnerFake) RunTokenReset(ctx context.Context, fn func(repository.TokenResetRepository) error) error {
	return fn(f.tokReset)
}

type notificadorFake struct {
	enviadas []activacion.Notificacion
}

func (f *notificadorFake) Enviar(n activacion.Notificacion) error {
	f.enviadas = append(f.enviadas, n)
	return nil
}

type entorno struct {
	uc          *usecase.EmpleadoUseCase
	usuarios    *usuarioRepoFake
	empleados   *empleadoRepoFake
	roles       *rolRepoFake
	permisos    *permisoRepoFake
	tokens      *tokenActivacionRepoFake
	notificador *notificadorFake
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	usuarios := &usuarioRepoFake{}
	empleados := &empleadoRepoFake{}
	roles := &rolRepoFake{}
	permisos := &permisoRepoFake{porGrupo: map[string][]string{}, directos: map[string][]string{}}
	tokens := &tokenActivacionRepoFake{}
	tx := &txRunnerFake{
		usuarios: usuarios, empleados: empleados, tokens: tokens, permisos: permisos,
		tokOTP: &tokenOTPRepoFake{}, tokReset: &tokenResetRepoFake{},
	}
	notificador := &notificadorFake{}
	cred := credenciales.NewCredencialesUseCase(
		usuarios, empleados, tokens, tx.tokOTP, tx.tokReset, tx, credenciales.Config{}, logger.Nop())
	uc := usecase.NewEmpleadoUseCase(
		empleados, usuarios, roles, permisos, cred, tx, notificador,
		"https://acme.test/activar?token=", logger.Nop())
	return &entorno{uc: uc, usuarios: usuarios, empleados: empleados, roles: roles, permisos: permisos, tokens: tokens, notificador: notificador}
}

func altaBasica() dto.CrearEmpleadoRequest {
	return dto.CrearEmpleadoRequest{
		Codigo:       "E-001",
		Nombres:      "María",
		Apellidos:    "López",
		Documento:    "12345678",
		Email:        "maria@acme.test",
		FechaIngreso: time.Now(),
		Salario:      decimal.NewFromInt(1000),
	}
}

func ptr(s string) *string { return &s }

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

func TestCrear_SinAcceso_NoProvisionaUsuario(t *testing.T) {
	env := nuevoEntorno(t)

	out, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)

	assert.Empty(t, out.Username)
	assert.False(t, out.CuentaActivada)
	assert.True(t, out.DebeCambiarPassword)
	assert.Empty(t, env.usuarios.usuarios)
	assert.Empty(t, env.tokens.tokens)
}

func TestCrear_ConAcceso_ProvisionaTodoJunto(t *testing.T) {
	env := nuevoEntorno(t)
	in := altaBasica()
	in.CrearAcceso = true

	out, err := env.uc.Crear(context.Background(), "empresa-a", in)
	require.NoError(t, err)

	assert.Equal(t, "MLOPEZ001", out.Username)

	require.Len(t, env.usuarios.usuarios, 1)
	usuario := env.usuarios.usuarios[0]
	assert.False(t, usuario.Activo, "el usuario nace inactivo hasta la activación")
	assert.NotEmpty(t, usuario.PasswordHash)

	require.Len(t, env.tokens.tokens, 1)
	token := env.tokens.tokens[0]
	assert.True(t, token.EsValido())

	// El correo de bienvenida lleva el enlace con el token.
	require.Len(t, env.notificador.enviadas, 1)
	assert.Equal(t, "maria@acme.test", env.notificador.enviadas[0].Destinatario)
	assert.Equal(t, "https://acme.test/activar?token="+token.Valor, env.notificador.enviadas[0].AccionURL)
}

func TestCrear_ConRol_ConcedePermisosIniciales(t *testing.T) {
	env := nuevoEntorno(t)
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a", GrupoIDs: []string{"g-1"}})
	env.permisos.porGrupo["g-1"] = []string{"ventas.facturar", "productos_ver"}

	in := altaBasica()
	in.CrearAcceso = true
	in.RolID = ptr("rol-1")

	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	require.NoError(t, err)

	usuario := env.usuarios.usuarios[0]
	assert.ElementsMatch(t, []string{"ventas.facturar", "productos_ver"}, env.permisos.directos[usuario.ID])
}

func TestCrear_RolDeOtraEmpresa_Validacion(t *testing.T) {
	env := nuevoEntorno(t)
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-b"})

	in := altaBasica()
	in.RolID = ptr("rol-1")

	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	assert.ErrorIs(t, err, domain.ErrValidacion)
}

func TestCrear_CamposRequeridos(t *testing.T) {
	env := nuevoEntorno(t)

	in := altaBasica()
	in.Documento = ""
	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	assert.ErrorIs(t, err, domain.ErrValidacion)

	in = altaBasica()
	in.FechaIngreso = time.Time{}
	_, err = env.uc.Crear(context.Background(), "empresa-a", in)
	assert.ErrorIs(t, err, domain.ErrValidacion)
}

func TestCrear_ColisionDeUsername_Reintenta(t *testing.T) {
	env := nuevoEntorno(t)
	// El primer insert choca contra un username creado concurrentemente.
	env.usuarios.fallosCrear = 1

	in := altaBasica()
	in.CrearAcceso = true

	out, err := env.uc.Crear(context.Background(), "empresa-a", in)
	require.NoError(t, err)

	assert.NotEmpty(t, out.Username)
	assert.Equal(t, 2, env.usuarios.intentosCrear, "debe reintentar tras la colisión")
	assert.Len(t, env.empleados.empleados, 1, "el rollback no deja empleados a medias")
}

func TestCrear_EmpleadoDuplicado_NoReintenta(t *testing.T) {
	env := nuevoEntorno(t)
	// El duplicado es del empleado (codigo/documento), no del username: el 409
	// debe surgir de inmediato sin regenerar usernames.
	env.empleados.duplicado = true

	in := altaBasica()
	in.CrearAcceso = true

	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	assert.ErrorIs(t, err, domain.ErrDuplicado)
	assert.Equal(t, 1, env.usuarios.intentosCrear, "un duplicado de empleado no debe reintentar el alta")
}

func TestCrear_ColisionesPersistentes_Falla(t *testing.T) {
	env := nuevoEntorno(t)
	env.usuarios.fallosCrear = 10

	in := altaBasica()
	in.CrearAcceso = true

	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	assert.ErrorIs(t, err, domain.ErrDuplicado)
	assert.Empty(t, env.empleados.empleados)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consulta y actualización parcial
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByID_DeOtraEmpresa_NotFound(t *testing.T) {
	env := nuevoEntorno(t)
	_, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)
	id := env.empleados.empleados[0].ID

	_, err = env.uc.GetByID("empresa-b", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActualizar_OpcionalDistingueAusenteDeNull(t *testing.T) {
	env := nuevoEntorno(t)
	in := altaBasica()
	in.RolID = ptr("rol-1")
	env.roles.roles = append(env.roles.roles, &entity.Rol{ID: "rol-1", EmpresaID: "empresa-a"})
	_, err := env.uc.Crear(context.Background(), "empresa-a", in)
	require.NoError(t, err)
	id := env.empleados.empleados[0].ID

	// Body sin la clave rol_id: el rol no se toca.
	nombre := "María José"
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Nombres: &nombre})
	require.NoError(t, err)
	require.NotNil(t, env.empleados.empleados[0].RolID)

	// Null explícito: el rol se limpia.
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{
		RolID: dto.Opcional[string]{Definido: true, Valor: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, env.empleados.empleados[0].RolID)
}

func TestActualizar_TerminadoExigeFecha(t *testing.T) {
	env := nuevoEntorno(t)
	_, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)
	id := env.empleados.empleados[0].ID

	estado := entity.EstadoTerminado
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Estado: &estado})
	assert.ErrorIs(t, err, domain.ErrValidacion)

	fecha := time.Now().Add(24 * time.Hour)
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Estado: &estado, FechaTerminacion: &fecha})
	assert.NoError(t, err)
}

func TestActualizar_VolverDeTerminadoLimpiaLaFecha(t *testing.T) {
	env := nuevoEntorno(t)
	_, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)
	id := env.empleados.empleados[0].ID

	estado := entity.EstadoTerminado
	fecha := time.Now().Add(24 * time.Hour)
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Estado: &estado, FechaTerminacion: &fecha})
	require.NoError(t, err)

	activo := entity.EstadoActivo
	out, err := env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Estado: &activo})
	require.NoError(t, err)
	assert.Nil(t, out.FechaTerminacion)
}

func TestActualizar_FechaTerminacionAnteriorAlIngreso(t *testing.T) {
	env := nuevoEntorno(t)
	_, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)
	id := env.empleados.empleados[0].ID

	estado := entity.EstadoTerminado
	fecha := time.Now().Add(-48 * time.Hour)
	_, err = env.uc.Actualizar("empresa-a", id, dto.ActualizarEmpleadoRequest{Estado: &estado, FechaTerminacion: &fecha})
	assert.ErrorIs(t, err, domain.ErrValidacion)
}

func TestListar_SoloDelTenant(t *testing.T) {
	env := nuevoEntorno(t)
	_, err := env.uc.Crear(context.Background(), "empresa-a", altaBasica())
	require.NoError(t, err)
	otra := altaBasica()
	otra.Codigo = "E-002"
	otra.Documento = "87654321"
	_, err = env.uc.Crear(context.Background(), "empresa-b", otra)
	require.NoError(t, err)

	lista, err := env.uc.Listar("empresa-a", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "empresa-a", lista[0].EmpresaID)
}
