package rebalancing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/rebalance"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

// runKey clave de singleflight: solo hay una corrida en vuelo por proceso.
const runKey = "rebalancing-run"

// Options parámetros de una corrida.
type Options struct {
	SalesWindowMonths int
	Mode              string // replace | merge
	Locale            string
}

// RunUseCase ejecuta el motor de equilibrado: carga el snapshot y las ventas, empareja
// excedentes con faltantes, regenera las propuestas pendientes y arma el reporte.
type RunUseCase struct {
	snapshots repository.SnapshotRepository
	sales     repository.SalesRepository
	txRunner  TxRunner
	opts      Options
	log       *logger.Logger
	now       func() time.Time
	group     singleflight.Group
}

// NewRunUseCase construye el caso de uso.
func NewRunUseCase(
	snapshots repository.SnapshotRepository,
	sales repository.SalesRepository,
	txRunner TxRunner,
	opts Options,
	log *logger.Logger,
) *RunUseCase {
	if opts.SalesWindowMonths <= 0 {
		opts.SalesWindowMonths = rebalance.DefaultSalesWindowMonths
	}
	if opts.Mode == "" {
		opts.Mode = ModeReplace
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RunUseCase{
		snapshots: snapshots,
		sales:     sales,
		txRunner:  txRunner,
		opts:      opts,
		log:       log.Component("rebalancing.run"),
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *RunUseCase) SetClock(now func() time.Time) { uc.now = now }

// Run ejecuta una corrida. Las llamadas concurrentes comparten la corrida en curso y su reporte.
// La corrida compartida no hereda la cancelación del primer llamador (sí sus valores): si ese
// cliente se desconecta, los demás reciben igualmente el reporte.
func (uc *RunUseCase) Run(ctx context.Context) (*dto.RebalancingReport, error) {
	shareCtx := context.WithoutCancel(ctx)
	v, err, shared := uc.group.Do(runKey, func() (interface{}, error) {
		return uc.run(shareCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.log.Debug().Msg("corrida compartida con una llamada concurrente")
	}
	return v.(*dto.RebalancingReport), nil
}

func (uc *RunUseCase) run(ctx context.Context) (*dto.RebalancingReport, error) {
	started := time.Now()
	now := uc.now().UTC()
	runID := uuid.NewString()

	// ── 1. Lectura: snapshot y ventas de la ventana ───────────────────────────
	rows, err := uc.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("equilibrado: cargar stock: %w", err)
	}
	since := rebalance.WindowStart(now, uc.opts.SalesWindowMonths)
	sales, err := uc.sales.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("equilibrado: cargar ventas: %w", err)
	}

	// ── 2. Motor en memoria ───────────────────────────────────────────────────
	rows, warnings := rebalance.NormalizeSnapshot(rows)
	for _, w := range warnings {
		uc.log.Warn().Str("run_id", runID).Msg(w)
	}
	velocity := rebalance.BuildVelocityIndex(sales, uc.opts.SalesWindowMonths)
	matches := rebalance.MatchTransfers(rows, velocity)

	batch := make([]*entity.TransferProposal, 0, len(matches))
	for _, m := range matches {
		batch = append(batch, &entity.TransferProposal{
			ID:                    uuid.NewString(),
			RunID:                 runID,
			ArticleID:             m.ArticleID,
			SourceLocationID:      m.SourceLocationID,
			DestinationLocationID: m.DestinationLocationID,
			Quantity:              m.Quantity,
			DestinationVelocity:   m.DestinationVelocity,
			Status:                entity.ProposalPending,
			GeneratedAt:           now,
		})
	}

	// ── 3. Persistencia: una sola transacción ─────────────────────────────────
	var pending []*entity.TransferProposal
	var deleted int64
	err = uc.txRunner.Run(ctx, func(
		proposals repository.ProposalRepository,
		_ repository.StockRepository,
		_ repository.TransferRepository,
	) error {
		var err error
		pending, deleted, err = regenerate(ctx, proposals, batch, uc.opts.Mode)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("equilibrado: regenerar propuestas: %w", err)
	}

	// ── 4. Reporte ────────────────────────────────────────────────────────────
	report := uc.buildReport(runID, now, rows, matches, pending, warnings)

	uc.log.Info().
		Str("run_id", runID).
		Str("mode", uc.opts.Mode).
		Int("stock_rows", len(rows)).
		Int("sales_rows", len(sales)).
		Int("proposals", len(pending)).
		Int64("superseded", deleted).
		Int("warnings", len(warnings)).
		Dur("duration", time.Since(started)).
		Msg("corrida de equilibrado completada")

	return report, nil
}

func (uc *RunUseCase) buildReport(
	runID string,
	now time.Time,
	rows []entity.SnapshotRow,
	matches []rebalance.Match,
	pending []*entity.TransferProposal,
	warnings []string,
) *dto.RebalancingReport {
	names := newNameIndex(rows)
	proposals := make([]dto.ProposalDTO, 0, len(pending))
	for _, p := range pending {
		proposals = append(proposals, names.proposal(p))
	}

	order := newNameOrder(uc.opts.Locale)
	summary := rebalance.SummarizeLocations(rows, matches)
	sortByName(order, summary, func(s rebalance.LocationSummary) (string, string) { return s.LocationName, s.LocationID })
	details := rebalance.DetailArticles(rows)
	sortByName(order, details, func(d rebalance.ArticleDetail) (string, string) { return d.ArticleName, d.ArticleID })
	analysis := rebalance.Aggregate(rows)
	byGroup := func(g rebalance.GroupStats) (string, string) { return g.Name, g.ID }
	sortByName(order, analysis.Categories, byGroup)
	sortByName(order, analysis.SubCategories, byGroup)
	sortByName(order, analysis.Articles, byGroup)

	if summary == nil {
		summary = []rebalance.LocationSummary{}
	}
	if details == nil {
		details = []rebalance.ArticleDetail{}
	}
	if warnings == nil {
		warnings = []string{}
	}

	message := "No se encontraron transferencias posibles: ningún excedente tiene un faltante del mismo artículo en otra tienda."
	if len(proposals) > 0 {
		message = fmt.Sprintf("Se generaron %d propuestas de transferencia.", len(proposals))
	}
	if len(warnings) > 0 {
		message += fmt.Sprintf(" %d registros con datos incompletos.", len(warnings))
	}

	return &dto.RebalancingReport{
		Message:         message,
		RunID:           runID,
		GeneratedAt:     now,
		ProposalsCount:  len(proposals),
		Proposals:       proposals,
		LocationSummary: summary,
		ArticleDetails:  details,
		Analysis:        analysis,
		Errors:          warnings,
	}
}

// nameIndex nombres de artículos y tiendas del snapshot, para enriquecer propuestas.
type nameIndex struct {
	articles  map[string]entity.SnapshotRow
	locations map[string]string
}

func newNameIndex(rows []entity.SnapshotRow) *nameIndex {
	idx := &nameIndex{
		articles:  make(map[string]entity.SnapshotRow, len(rows)),
		locations: make(map[string]string),
	}
	for _, r := range rows {
		idx.articles[r.ArticleID] = r
		idx.locations[r.LocationID] = r.LocationName
	}
	return idx
}

func (n *nameIndex) location(id string) string {
	if name, ok := n.locations[id]; ok {
		return name
	}
	return rebalance.UnknownLocation
}

func (n *nameIndex) proposal(p *entity.TransferProposal) dto.ProposalDTO {
	out := proposalDTO(&entity.ProposalView{
		TransferProposal:        *p,
		SourceLocationName:      n.location(p.SourceLocationID),
		DestinationLocationName: n.location(p.DestinationLocationID),
	})
	if a, ok := n.articles[p.ArticleID]; ok {
		out.ArticleCode = a.ArticleCode
		out.ArticleName = a.ArticleName
	} else {
		out.ArticleName = rebalance.UnknownArticle
	}
	return out
}
