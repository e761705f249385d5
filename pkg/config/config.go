package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo .env).
type Config struct {
	App   AppConfig
	DB    DBConfig
	JWT   JWTConfig
	HTTP  HTTPConfig
	Auth  AuthConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
	// URLActivacion base del enlace de activación del correo de bienvenida;
	// el valor del token se concatena al final.
	URLActivacion string
	// URLReset base del enlace de restablecimiento de contraseña; mismo
	// esquema de concatenación.
	URLReset string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuthConfig parámetros del núcleo de autenticación/activación.
type AuthConfig struct {
	VigenciaActivacion time.Duration // default 24h, máximo razonable 48h
	VigenciaOTP        time.Duration // default 10m
	VigenciaReset      time.Duration // default 1h
	LongitudOTP        int           // 4-8 dígitos
	// Módulos aceptados como prefijo de namespace al verificar permisos.
	ModulosNamespace []string
}

// RedisConfig conexión al store de revocación de sesiones.
// Si Addr está vacío se usa el revocador en memoria (dev/tests).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SMTPConfig salida de correo para el notificador.
// Si Host está vacío las notificaciones solo se registran en el log.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración .env en el directorio de trabajo
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "gestion-pro"),
			URLActivacion: getString(v, "APP_URL_ACTIVACION", "http://localhost:8080/activar?token="),
			URLReset:      getString(v, "APP_URL_RESET", "http://localhost:8080/restablecer?token="),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gestion_pro"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "gestion-pro"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Auth: AuthConfig{
			VigenciaActivacion: getDuration(v, "AUTH_VIGENCIA_ACTIVACION", 24*time.Hour),
			VigenciaOTP:        getDuration(v, "AUTH_VIGENCIA_OTP", 10*time.Minute),
			VigenciaReset:      getDuration(v, "AUTH_VIGENCIA_RESET", time.Hour),
			LongitudOTP:        getInt(v, "AUTH_LONGITUD_OTP", 6),
			ModulosNamespace:   getStringSlice(v, "AUTH_MODULOS_NAMESPACE", []string{"inventario", "seguridad", "ventas", "compras"}),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "no-reply@gestion-pro.local"),
		},
	}

	if cfg.Auth.LongitudOTP < 4 || cfg.Auth.LongitudOTP > 8 {
		return nil, fmt.Errorf("config: AUTH_LONGITUD_OTP debe estar entre 4 y 8, recibido %d", cfg.Auth.LongitudOTP)
	}
	if cfg.Auth.VigenciaActivacion <= 0 || cfg.Auth.VigenciaOTP <= 0 || cfg.Auth.VigenciaReset <= 0 {
		return nil, fmt.Errorf("config: las vigencias de token deben ser positivas")
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if v.IsSet(key) {
		if d, err := time.ParseDuration(v.GetString(key)); err == nil {
			return d
		}
	}
	return def
}

func getStringSlice(v *viper.Viper, key string, def []string) []string {
	if v.IsSet(key) {
		raw := v.GetString(key)
		if raw != "" {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return def
}
