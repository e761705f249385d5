package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/gestion-pro/internal/application/acceso"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/internal/application/auth"
	"github.com/tu-usuario/gestion-pro/internal/application/credenciales"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	inframail "github.com/tu-usuario/gestion-pro/internal/infrastructure/mail"
	"github.com/tu-usuario/gestion-pro/internal/infrastructure/postgres"
	infraredis "github.com/tu-usuario/gestion-pro/internal/infrastructure/redis"
	httpRouter "github.com/tu-usuario/gestion-pro/internal/interfaces/http"
	"github.com/tu-usuario/gestion-pro/pkg/config"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
	"github.com/tu-usuario/gestion-pro/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	usuarioRepo := postgres.NewUsuarioRepository(pool)
	empresaRepo := postgres.NewEmpresaRepository(pool)
	empleadoRepo := postgres.NewEmpleadoRepository(pool)
	rolRepo := postgres.NewRolRepository(pool)
	permisoRepo := postgres.NewPermisoRepository(pool)
	tokActRepo := postgres.NewTokenActivacionRepository(pool)
	tokOTPRepo := postgres.NewTokenOTPRepository(pool)
	tokResetRepo := postgres.NewTokenResetRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Lista de revocación: redis compartido si está configurado, memoria si no.
	var revocador auth.RevocadorSesiones
	if cfg.Redis.Addr != "" {
		r, err := infraredis.NewRevocador(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a redis")
		}
		defer r.Close()
		revocador = r
	} else {
		log.Warn().Msg("REDIS_ADDR vacío, revocación de sesiones en memoria")
		revocador = auth.NewRevocadorMemoria()
	}

	// Notificador: SMTP real si está configurado, solo log si no.
	var notificador activacion.Notificador
	if cfg.SMTP.Host != "" {
		notificador = inframail.NewSMTPSender(cfg.SMTP, log)
	} else {
		log.Warn().Msg("SMTP_HOST vacío, notificaciones solo al log")
		notificador = inframail.NewLogSender(log)
	}

	credencialesUC := credenciales.NewCredencialesUseCase(
		usuarioRepo, empleadoRepo, tokActRepo, tokOTPRepo, tokResetRepo, txRunner,
		credenciales.Config{
			VigenciaActivacion: cfg.Auth.VigenciaActivacion,
			VigenciaOTP:        cfg.Auth.VigenciaOTP,
			VigenciaReset:      cfg.Auth.VigenciaReset,
			LongitudOTP:        cfg.Auth.LongitudOTP,
		}, log)

	namespaces := acceso.NuevaTablaNamespaces(cfg.Auth.ModulosNamespace)
	accesoUC := acceso.NewAccesoUseCase(empleadoRepo, empresaRepo, rolRepo, permisoRepo, txRunner, namespaces, log)

	validador := password.NewValidadorBasico(0)
	activacionUC := activacion.NewActivacionUseCase(
		credencialesUC, usuarioRepo, empleadoRepo, empresaRepo, tokOTPRepo, tokResetRepo, txRunner,
		validador, notificador, cfg.App.URLReset,
		activacion.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}, log)

	authUC := auth.NewAuthUseCase(usuarioRepo, accesoUC, revocador, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	empleadoUC := usecase.NewEmpleadoUseCase(
		empleadoRepo, usuarioRepo, rolRepo, permisoRepo, credencialesUC, txRunner,
		notificador, cfg.App.URLActivacion, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		AccesoUC:     accesoUC,
		ActivacionUC: activacionUC,
		EmpleadoUC:   empleadoUC,
		EmpresaRepo:  empresaRepo,
		Revocador:    revocador,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
