package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Equilibrio-api/internal/application/rebalancing"
	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// Ensure TxRunner implements rebalancing.TxRunner.
var _ rebalancing.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si el Commit falla por algo distinto de un rollback del servidor, el resultado es incierto
// y el error se envuelve en domain.ErrCommitUncertain.
func (r *TxRunner) Run(ctx context.Context, fn func(
	proposals repository.ProposalRepository,
	stock repository.StockRepository,
	transfers repository.TransferRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewProposalRepository(tx), NewStockRepository(tx), NewTransferRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return fmt.Errorf("commit transaction: %w: %w", domain.ErrCommitUncertain, err)
	}
	return nil
}
