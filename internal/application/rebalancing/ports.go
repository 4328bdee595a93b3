package rebalancing

import (
	"context"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback. Un fallo del commit se devuelve envuelto en domain.ErrCommitUncertain.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		proposals repository.ProposalRepository,
		stock repository.StockRepository,
		transfers repository.TransferRepository,
	) error) error
}

// TransferSheet hoja imprimible de transferencias pendientes agrupadas por tienda de origen.
type TransferSheet struct {
	Title       string
	GeneratedAt time.Time
	Groups      []TransferSheetGroup
}

// TransferSheetGroup transferencias que salen de una misma tienda.
type TransferSheetGroup struct {
	SourceLocationID string
	SourceLocation   string
	Lines            []dto.ProposalDTO
	TotalUnits       int64
}

// TransferSheetGenerator genera la representación PDF de la hoja de transferencias.
type TransferSheetGenerator interface {
	GenerateTransferSheet(sheet *TransferSheet) ([]byte, error)
}
