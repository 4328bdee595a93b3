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

	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	infrapdf "github.com/jhoicas/Equilibrio-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Equilibrio-api/internal/interfaces/http"
	"github.com/jhoicas/Equilibrio-api/pkg/config"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("regeneration_mode", cfg.Rebalance.RegenerationMode).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	snapshotRepo := postgres.NewSnapshotRepository(pool)
	salesRepo := postgres.NewSalesRepository(pool)
	proposalRepo := postgres.NewProposalRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	runUC := rebalancing.NewRunUseCase(snapshotRepo, salesRepo, txRunner, rebalancing.Options{
		SalesWindowMonths: cfg.Rebalance.SalesWindowMonths,
		Mode:              cfg.Rebalance.RegenerationMode,
		Locale:            cfg.Rebalance.Locale,
	}, log)
	executor := rebalancing.NewTransferExecutor(txRunner, proposalRepo, log)
	reviewUC := rebalancing.NewReviewUseCase(proposalRepo, transferRepo, locationRepo, executor)

	// PDF: hoja de transferencias pendientes por tienda de origen
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	sheetUC := rebalancing.NewTransferSheetUseCase(proposalRepo, pdfGenerator, cfg.Rebalance.Locale)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // una corrida completa puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Equilibrio de stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RunUC:     runUC,
		ReviewUC:  reviewUC,
		SheetUC:   sheetUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
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
