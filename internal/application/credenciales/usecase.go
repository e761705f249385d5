package credenciales

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TxRunner contrato mínimo de transacciones que necesita el emisor de
// credenciales: invalidar-e-insertar debe ser una sola unidad atómica.
// Lo implementa *postgres.TxRunner.
type TxRunner interface {
	RunTokenActivacion(ctx context.Context, fn func(repository.TokenActivacionRepository) error) error
	RunTokenOTP(ctx context.Context, fn func(repository.TokenOTPRepository) error) error
	RunTokenReset(ctx context.Context, fn func(repository.TokenResetRepository) error) error
}

// Config vigencias y formato de los secretos emitidos.
type Config struct {
	VigenciaActivacion time.Duration // default 24h
	VigenciaOTP        time.Duration // default 10m
	VigenciaReset      time.Duration // default 1h
	LongitudOTP        int           // 4-8 dígitos
}

func (c Config) conDefaults() Config {
	if c.VigenciaActivacion <= 0 {
		c.VigenciaActivacion = 24 * time.Hour
	}
	if c.VigenciaOTP <= 0 {
		c.VigenciaOTP = 10 * time.Minute
	}
	if c.VigenciaReset <= 0 {
		c.VigenciaReset = time.Hour
	}
	if c.LongitudOTP < 4 || c.LongitudOTP > 8 {
		c.LongitudOTP = 6
	}
	return c
}

// CredencialesUseCase emisor de credenciales: usernames únicos, secretos
// criptográficos y tokens de un solo uso con invalidación de los anteriores.
type CredencialesUseCase struct {
	usuarioRepo  repository.UsuarioRepository
	empleadoRepo repository.EmpleadoRepository
	tokActRepo   repository.TokenActivacionRepository
	tokOTPRepo   repository.TokenOTPRepository
	tokResetRepo repository.TokenResetRepository
	tx           TxRunner
	cfg          Config
	log          *logger.Logger
}

// NewCredencialesUseCase construye el emisor de credenciales.
func NewCredencialesUseCase(
	usuarioRepo repository.UsuarioRepository,
	empleadoRepo repository.EmpleadoRepository,
	tokActRepo repository.TokenActivacionRepository,
	tokOTPRepo repository.TokenOTPRepository,
	tokResetRepo repository.TokenResetRepository,
	tx TxRunner,
	cfg Config,
	log *logger.Logger,
) *CredencialesUseCase {
	return &CredencialesUseCase{
		usuarioRepo:  usuarioRepo,
		empleadoRepo: empleadoRepo,
		tokActRepo:   tokActRepo,
		tokOTPRepo:   tokOTPRepo,
		tokResetRepo: tokResetRepo,
		tx:           tx,
		cfg:          cfg.conDefaults(),
		log:          log,
	}
}

// VigenciaActivacion duración configurada de los tokens de activación, para
// emisores que arman el token dentro de una transacción más amplia (alta).
func (uc *CredencialesUseCase) VigenciaActivacion() time.Duration {
	return uc.cfg.VigenciaActivacion
}

// ─── Generación de username ──────────────────────────────────────────────────

var quitarDiacriticos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizar quita diacríticos, descarta lo que no sea letra y pasa a mayúsculas.
func Normalizar(s string) string {
	limpio, _, err := transform.String(quitarDiacriticos, s)
	if err != nil {
		limpio = s
	}
	var b strings.Builder
	for _, r := range limpio {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// BaseUsername inicial del primer nombre + primer apellido, normalizados.
func BaseUsername(nombres, apellidos string) string {
	nombre := Normalizar(primerToken(nombres))
	apellido := Normalizar(primerToken(apellidos))
	if nombre == "" || apellido == "" {
		return ""
	}
	return string([]rune(nombre)[0]) + apellido
}

func primerToken(s string) string {
	for _, t := range strings.Fields(s) {
		return t
	}
	return ""
}

// GenerarUsername resuelve el siguiente username libre para la base dada:
// busca el mayor existente con ese prefijo, extrae el sufijo numérico, lo
// incrementa y lo rellena a 3 dígitos (MLOPEZ001 → MLOPEZ002; sin match → 001).
//
// La unicidad final la garantiza el índice único de la tabla usuarios: bajo
// concurrencia el caller debe reintentar ante domain.ErrDuplicado.
func (uc *CredencialesUseCase) GenerarUsername(nombres, apellidos string) (string, error) {
	base := BaseUsername(nombres, apellidos)
	if base == "" {
		return "", fmt.Errorf("generar username: nombre o apellido vacío: %w", domain.ErrValidacion)
	}
	ultimo, err := uc.usuarioRepo.UltimoUsernameConPrefijo(base)
	if err != nil {
		return "", fmt.Errorf("buscar último username con prefijo %s: %w", base, err)
	}
	return base + fmt.Sprintf("%03d", siguienteSufijo(ultimo, base)), nil
}

// siguienteSufijo extrae el sufijo numérico del último username y lo incrementa.
// Un sufijo no numérico (colisión con otro esquema de nombres) cae a 1.
func siguienteSufijo(ultimo, base string) int {
	if ultimo == "" {
		return 1
	}
	resto := strings.TrimPrefix(strings.ToUpper(ultimo), strings.ToUpper(base))
	n, err := strconv.Atoi(resto)
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}

// ─── Secretos criptográficos ─────────────────────────────────────────────────

// GenerarTokenSeguro produce un secreto opaco URL-safe con 32 bytes de entropía
// de crypto/rand.
func GenerarTokenSeguro() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar token seguro: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerarOTP produce un código decimal de n dígitos (4-8) con crypto/rand.
// Nunca usa math/rand: la predictibilidad aquí es una falla de seguridad.
func GenerarOTP(n int) (string, error) {
	if n < 4 || n > 8 {
		return "", fmt.Errorf("generar OTP: longitud %d fuera de rango [4,8]: %w", n, domain.ErrValidacion)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generar OTP: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// ─── Emisión de tokens (invalidar-e-insertar atómico) ────────────────────────

// EmitirTokenActivacion invalida todos los tokens de activación pendientes del
// empleado e inserta uno nuevo, en una sola transacción. Un fallo a mitad deja
// cero tokens vivos, nunca dos.
func (uc *CredencialesUseCase) EmitirTokenActivacion(ctx context.Context, empleadoID string) (*entity.TokenActivacion, error) {
	valor, err := GenerarTokenSeguro()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	token := &entity.TokenActivacion{
		ID:         uuid.New().String(),
		EmpleadoID: empleadoID,
		Valor:      valor,
		CreadoEn:   now,
		ExpiraEn:   now.Add(uc.cfg.VigenciaActivacion),
	}
	err = uc.tx.RunTokenActivacion(ctx, func(repo repository.TokenActivacionRepository) error {
		if err := repo.InvalidarPendientes(empleadoID); err != nil {
			return err
		}
		return repo.Crear(token)
	})
	if err != nil {
		return nil, fmt.Errorf("emitir token de activación: %w: %v", domain.ErrPersistencia, err)
	}
	uc.log.Info().Str("empleado_id", empleadoID).Time("expira_en", token.ExpiraEn).Msg("token de activación emitido")
	return token, nil
}

// EmitirOTP invalida los OTP pendientes del empleado e inserta uno nuevo, en
// una sola transacción.
func (uc *CredencialesUseCase) EmitirOTP(ctx context.Context, empleadoID string) (*entity.TokenOTP, error) {
	codigo, err := GenerarOTP(uc.cfg.LongitudOTP)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	token := &entity.TokenOTP{
		ID:         uuid.New().String(),
		EmpleadoID: empleadoID,
		Codigo:     codigo,
		CreadoEn:   now,
		ExpiraEn:   now.Add(uc.cfg.VigenciaOTP),
	}
	err = uc.tx.RunTokenOTP(ctx, func(repo repository.TokenOTPRepository) error {
		if err := repo.InvalidarPendientes(empleadoID); err != nil {
			return err
		}
		return repo.Crear(token)
	})
	if err != nil {
		return nil, fmt.Errorf("emitir OTP: %w: %v", domain.ErrPersistencia, err)
	}
	uc.log.Info().Str("empleado_id", empleadoID).Time("expira_en", token.ExpiraEn).Msg("OTP emitido")
	return token, nil
}

// EmitirTokenReset invalida los tokens de reset pendientes e inserta uno nuevo.
func (uc *CredencialesUseCase) EmitirTokenReset(ctx context.Context, empleadoID string) (*entity.TokenReset, error) {
	valor, err := GenerarTokenSeguro()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	token := &entity.TokenReset{
		ID:         uuid.New().String(),
		EmpleadoID: empleadoID,
		Valor:      valor,
		CreadoEn:   now,
		ExpiraEn:   now.Add(uc.cfg.VigenciaReset),
	}
	err = uc.tx.RunTokenReset(ctx, func(repo repository.TokenResetRepository) error {
		if err := repo.InvalidarPendientes(empleadoID); err != nil {
			return err
		}
		return repo.Crear(token)
	})
	if err != nil {
		return nil, fmt.Errorf("emitir token de reset: %w: %v", domain.ErrPersistencia, err)
	}
	return token, nil
}

// ─── Verificación ────────────────────────────────────────────────────────────

// VerificarTokenActivacion busca la fila vigente (no usada, no expirada) y su
// empleado dueño. Expirado, usado e inexistente responden el mismo error.
func (uc *CredencialesUseCase) VerificarTokenActivacion(valor string) (*entity.TokenActivacion, *entity.Empleado, error) {
	if valor == "" {
		return nil, nil, domain.ErrTokenInvalido
	}
	token, err := uc.tokActRepo.GetVigentePorValor(valor)
	if err != nil {
		return nil, nil, fmt.Errorf("verificar token de activación: %w", err)
	}
	if token == nil {
		return nil, nil, domain.ErrTokenInvalido
	}
	empleado, err := uc.empleadoRepo.GetByID(token.EmpleadoID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar empleado del token: %w", err)
	}
	if empleado == nil {
		return nil, nil, domain.ErrTokenInvalido
	}
	return token, empleado, nil
}
