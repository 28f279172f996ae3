package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Logistica-api/internal/application/auth"
	"github.com/jhoicas/Logistica-api/internal/application/authz"
	"github.com/jhoicas/Logistica-api/internal/application/cascade"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Logistica-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Logistica-api/internal/interfaces/http"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacén jerárquico: PostgreSQL en despliegues, memoria para desarrollo y pruebas.
	var (
		repos    repository.Repositories
		txRunner ports.TxRunner
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		repos, txRunner = store.Repositories(), store
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		if len(applied) > 0 {
			log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		}
		repos, txRunner = postgres.NewRepositories(pool), postgres.NewTxRunner(pool)
	}

	// Revocaciones de tokens: Redis si está configurado (compartido entre réplicas).
	var revocations ports.RevocationStore = memory.NewRevocations()
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		revocations = infraredis.NewRevocationStore(client)
	}

	m := metrics.New()
	guard := authz.NewGuard(repos, log.Component("authz"), m)
	resolver := authz.NewPrincipalResolver(cfg.JWT.Secret, cfg.JWT.Issuer, revocations, log.Component("principal"))
	engine := cascade.NewEngine(txRunner, log.Component("cascade"), m)

	authUC := auth.NewAuthUseCase(repos.Users, revocations, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.SuperAdmin.Email != "" {
		created, err := authUC.EnsureSuperAdmin(ctx, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("alta del super admin")
		}
		if created {
			log.Info().Str("email", cfg.SuperAdmin.Email).Msg("super admin creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Logistica API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC: usecase.NewCompanyUseCase(repos, txRunner, engine),
		DepotUC:   usecase.NewDepotUseCase(repos, txRunner, engine),
		MemberUC:  usecase.NewMemberUseCase(repos, txRunner),
		ClientUC:  usecase.NewClientUseCase(repos.Clients),
		ProductUC: usecase.NewProductUseCase(repos, txRunner),
		AuthUC:    authUC,
		Guard:     guard,
		Resolver:  resolver,
		Metrics:   m,
		Log:       log.Component("http"),
		AppName:   cfg.App.Name,
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
