// rebalance ejecuta una corrida de equilibrado de stock entre tiendas y registra el resumen.
// Pensado para un cron semanal.
//
// Uso: go run ./cmd/rebalance [-pdf hoja.pdf] [-demo]
//
//	-pdf   escribe además la hoja de transferencias pendientes en la ruta indicada
//	-demo  usa un almacenamiento en memoria con datos de ejemplo (no requiere PostgreSQL)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Equilibrio-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Equilibrio-api/pkg/config"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

type backend struct {
	snapshots repository.SnapshotRepository
	sales     repository.SalesRepository
	proposals repository.ProposalRepository
	txRunner  rebalancing.TxRunner
	close     func()
}

func main() {
	os.Exit(run())
}

// run devuelve el código de salida para que los defer (señales, pool) se ejecuten antes de os.Exit.
func run() int {
	pdfPath := flag.String("pdf", "", "ruta del PDF de transferencias pendientes")
	demo := flag.Bool("demo", false, "usar datos de ejemplo en memoria")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return 1
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var b backend
	if *demo {
		b = demoBackend()
	} else {
		b, err = postgresBackend(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("conexión a PostgreSQL")
			return 1
		}
	}
	return runWith(ctx, b, cfg, *pdfPath, log)
}

// runWith ejecuta la corrida sobre el backend ya abierto y lo cierra al terminar, también en error.
func runWith(ctx context.Context, b backend, cfg *config.Config, pdfPath string, log *logger.Logger) int {
	defer b.close()

	runUC := rebalancing.NewRunUseCase(b.snapshots, b.sales, b.txRunner, rebalancing.Options{
		SalesWindowMonths: cfg.Rebalance.SalesWindowMonths,
		Mode:              cfg.Rebalance.RegenerationMode,
		Locale:            cfg.Rebalance.Locale,
	}, log)

	start := time.Now()
	report, err := runUC.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("corrida de equilibrado")
		return 1
	}
	for _, w := range report.Errors {
		log.Warn().Msg(w)
	}
	for _, ls := range report.LocationSummary {
		log.Info().
			Str("location", ls.LocationName).
			Int("transfers_out", ls.TransfersOut).
			Int("transfers_in", ls.TransfersIn).
			Int64("units_out", ls.UnitsOut).
			Int64("units_in", ls.UnitsIn).
			Msg("resumen por tienda")
	}
	log.Info().
		Str("run_id", report.RunID).
		Int("proposals", report.ProposalsCount).
		Dur("duration", time.Since(start)).
		Msg(report.Message)

	if pdfPath == "" {
		return 0
	}
	sheetUC := rebalancing.NewTransferSheetUseCase(b.proposals, infrapdf.NewMarotoPDFGenerator(cfg.App.Name), cfg.Rebalance.Locale)
	pdfBytes, _, err := sheetUC.PendingSheetPDF(ctx)
	if err != nil {
		log.Error().Err(err).Msg("hoja de transferencias")
		return 1
	}
	if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
		log.Error().Err(err).Str("path", pdfPath).Msg("escribir PDF")
		return 1
	}
	log.Info().Str("path", pdfPath).Msg("hoja de transferencias escrita")
	return 0
}

func postgresBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-cron")
	if err != nil {
		return backend{}, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return backend{}, err
	}
	return backend{
		snapshots: postgres.NewSnapshotRepository(pool),
		sales:     postgres.NewSalesRepository(pool),
		proposals: postgres.NewProposalRepository(pool),
		txRunner:  postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}

func demoBackend() backend {
	s := memory.NewStore()
	seedDemo(s, time.Now().UTC())
	return backend{snapshots: s, sales: s, proposals: s, txRunner: s, close: func() {}}
}
