package rebalancing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
	"github.com/jhoicas/Equilibrio-api/pkg/logger"
)

// PartialAcceptError aceptación cuyo commit no se pudo confirmar: el estado de la propuesta, el
// stock y el historial pueden haber quedado aplicados o no. Requiere conciliación manual.
type PartialAcceptError struct {
	ProposalID string
	Err        error
}

func (e *PartialAcceptError) Error() string {
	return fmt.Sprintf("aceptación parcial de la propuesta %s: %v", e.ProposalID, e.Err)
}

// Unwrap permite errors.Is con domain.ErrPartialAccept y con la causa.
func (e *PartialAcceptError) Unwrap() []error {
	return []error{domain.ErrPartialAccept, e.Err}
}

// TransferExecutor aplica y rechaza propuestas. ApplyTransfer es la unidad atómica:
// transición a accepted, descuento en origen, abono en destino y registro de la transferencia.
type TransferExecutor struct {
	txRunner  TxRunner
	proposals repository.ProposalRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewTransferExecutor construye el ejecutor.
func NewTransferExecutor(txRunner TxRunner, proposals repository.ProposalRepository, log *logger.Logger) *TransferExecutor {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferExecutor{
		txRunner:  txRunner,
		proposals: proposals,
		log:       log.Component("rebalancing.executor"),
		now:       time.Now,
	}
}

// ApplyTransfer acepta la propuesta y mueve el stock en una sola transacción.
//
// Retorna:
//   - domain.ErrNotFound           si la propuesta o alguno de los registros de stock no existe.
//   - domain.ErrProposalNotPending si la propuesta ya fue resuelta.
//   - domain.ErrInsufficientStock  si el origen quedaría en negativo.
//   - *PartialAcceptError          si el commit falló sin saber si se aplicó.
//
// En los tres primeros casos no queda ningún cambio y la propuesta sigue pendiente.
func (e *TransferExecutor) ApplyTransfer(ctx context.Context, proposalID string) (*entity.CompletedTransfer, error) {
	if proposalID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := e.now().UTC()

	var done *entity.CompletedTransfer
	err := e.txRunner.Run(ctx, func(
		proposals repository.ProposalRepository,
		stock repository.StockRepository,
		transfers repository.TransferRepository,
	) error {
		p, err := proposals.Transition(ctx, proposalID, entity.ProposalAccepted, now)
		if err != nil {
			return err
		}

		// Bloqueo en orden de tienda para que dos aceptaciones cruzadas no se interbloqueen.
		locs := []string{p.SourceLocationID, p.DestinationLocationID}
		sort.Strings(locs)
		records := make(map[string]*entity.StockRecord, 2)
		for _, loc := range locs {
			rec, err := stock.GetForUpdate(ctx, loc, p.ArticleID)
			if err != nil {
				return fmt.Errorf("bloquear stock: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("stock del artículo %s en la tienda %s: %w", p.ArticleID, loc, domain.ErrNotFound)
			}
			records[loc] = rec
		}

		src := records[p.SourceLocationID]
		dst := records[p.DestinationLocationID]
		if src.QuantityOnHand < p.Quantity {
			return fmt.Errorf("origen con %d unidades para transferir %d: %w", src.QuantityOnHand, p.Quantity, domain.ErrInsufficientStock)
		}
		if err := stock.UpdateQuantity(ctx, src.LocationID, p.ArticleID, src.QuantityOnHand-p.Quantity); err != nil {
			return fmt.Errorf("descontar stock de origen: %w", err)
		}
		if err := stock.UpdateQuantity(ctx, dst.LocationID, p.ArticleID, dst.QuantityOnHand+p.Quantity); err != nil {
			return fmt.Errorf("abonar stock de destino: %w", err)
		}

		t := &entity.CompletedTransfer{
			ID:                    uuid.NewString(),
			ProposalID:            p.ID,
			ArticleID:             p.ArticleID,
			SourceLocationID:      p.SourceLocationID,
			DestinationLocationID: p.DestinationLocationID,
			Quantity:              p.Quantity,
			Status:                entity.TransferStatusCompleted,
			CreatedAt:             now,
		}
		if err := transfers.Create(ctx, t); err != nil {
			return fmt.Errorf("registrar transferencia: %w", err)
		}
		done = t
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCommitUncertain) {
			e.log.Error().Err(err).Str("proposal_id", proposalID).Msg("aceptación parcial: conciliar stock y transferencias")
			return nil, &PartialAcceptError{ProposalID: proposalID, Err: err}
		}
		return nil, err
	}

	e.log.Info().
		Str("proposal_id", proposalID).
		Str("transfer_id", done.ID).
		Int64("quantity", done.Quantity).
		Msg("transferencia aplicada")
	return done, nil
}

// Reject marca la propuesta como rechazada. No toca stock ni historial.
func (e *TransferExecutor) Reject(ctx context.Context, proposalID string) (*entity.TransferProposal, error) {
	if proposalID == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := e.proposals.Transition(ctx, proposalID, entity.ProposalRejected, e.now().UTC())
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("proposal_id", proposalID).Msg("propuesta rechazada")
	return p, nil
}
