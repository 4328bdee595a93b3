package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// ProposalRepository define el puerto de persistencia de propuestas de transferencia.
type ProposalRepository interface {
	// ListPending devuelve las propuestas pendientes, más recientes primero.
	ListPending(ctx context.Context) ([]*entity.ProposalView, error)
	// ListHistory devuelve las propuestas aceptadas o rechazadas, resolución más reciente primero.
	ListHistory(ctx context.Context, limit, offset int) ([]*entity.ProposalView, error)
	GetByID(ctx context.Context, id string) (*entity.TransferProposal, error)
	// DeletePending borra las propuestas pendientes cuyo id no esté en keepIDs. Devuelve cuántas borró.
	DeletePending(ctx context.Context, keepIDs []string) (int64, error)
	InsertBatch(ctx context.Context, proposals []*entity.TransferProposal) error
	// Transition cambia el estado solo si la propuesta sigue pendiente (compare-and-swap).
	// ErrNotFound si no existe; ErrProposalNotPending si ya fue resuelta.
	Transition(ctx context.Context, id string, to entity.ProposalStatus, at time.Time) (*entity.TransferProposal, error)
}

// TransferRepository registro de transferencias ejecutadas (solo inserción).
type TransferRepository interface {
	Create(ctx context.Context, t *entity.CompletedTransfer) error
	List(ctx context.Context, limit, offset int) ([]*entity.CompletedTransferView, error)
}

// LocationRepository catálogo de tiendas.
type LocationRepository interface {
	List(ctx context.Context) ([]*entity.Location, error)
}
