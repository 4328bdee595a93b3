package rebalancing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Equilibrio-api/internal/application/dto"
	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// Códigos de resultado de revisión.
const (
	CodeInvalidInput      = "INVALID_INPUT"
	CodeNotFound          = "NOT_FOUND"
	CodeNotPending        = "NOT_PENDING"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodePartialAccept     = "PARTIAL_ACCEPT"
)

// ReviewUseCase revisión de propuestas: listado, aceptación y rechazo, e historial.
type ReviewUseCase struct {
	proposals repository.ProposalRepository
	transfers repository.TransferRepository
	locations repository.LocationRepository
	executor  *TransferExecutor
}

// NewReviewUseCase construye el caso de uso.
func NewReviewUseCase(
	proposals repository.ProposalRepository,
	transfers repository.TransferRepository,
	locations repository.LocationRepository,
	executor *TransferExecutor,
) *ReviewUseCase {
	return &ReviewUseCase{
		proposals: proposals,
		transfers: transfers,
		locations: locations,
		executor:  executor,
	}
}

// ListPending devuelve las propuestas pendientes con nombres, más recientes primero.
func (uc *ReviewUseCase) ListPending(ctx context.Context) (*dto.ProposalListResponse, error) {
	views, err := uc.proposals.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar propuestas pendientes: %w", err)
	}
	items := proposalDTOs(views)
	return &dto.ProposalListResponse{Total: len(items), Proposals: items}, nil
}

// ListHistory devuelve las propuestas ya resueltas.
func (uc *ReviewUseCase) ListHistory(ctx context.Context, page dto.PageRequest) (*dto.ProposalHistoryResponse, error) {
	page.DefaultPage()
	views, err := uc.proposals.ListHistory(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar historial de propuestas: %w", err)
	}
	return &dto.ProposalHistoryResponse{
		Items: proposalDTOs(views),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Accept aplica la propuesta. Los errores de ciclo de vida (inexistente, ya resuelta, stock
// insuficiente) vuelven como resultado sin éxito; los de almacenamiento y la aceptación
// parcial vuelven como error.
func (uc *ReviewUseCase) Accept(ctx context.Context, id string) (*dto.ReviewResult, error) {
	t, err := uc.executor.ApplyTransfer(ctx, id)
	if err != nil {
		if res, ok := lifecycleResult(err); ok {
			return res, nil
		}
		return nil, err
	}
	return &dto.ReviewResult{
		Success: true,
		Message: fmt.Sprintf("Transferencia de %d unidades aplicada.", t.Quantity),
	}, nil
}

// Reject rechaza la propuesta sin tocar el stock.
func (uc *ReviewUseCase) Reject(ctx context.Context, id string) (*dto.ReviewResult, error) {
	if _, err := uc.executor.Reject(ctx, id); err != nil {
		if res, ok := lifecycleResult(err); ok {
			return res, nil
		}
		return nil, err
	}
	return &dto.ReviewResult{Success: true, Message: "Propuesta rechazada."}, nil
}

// ListCompletedTransfers historial de transferencias ejecutadas, más recientes primero.
func (uc *ReviewUseCase) ListCompletedTransfers(ctx context.Context, page dto.PageRequest) (*dto.TransferListResponse, error) {
	page.DefaultPage()
	views, err := uc.transfers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar transferencias: %w", err)
	}
	items := make([]dto.CompletedTransferDTO, 0, len(views))
	for _, v := range views {
		items = append(items, transferDTO(v))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListLocations catálogo de tiendas.
func (uc *ReviewUseCase) ListLocations(ctx context.Context) ([]dto.LocationDTO, error) {
	locs, err := uc.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar tiendas: %w", err)
	}
	out := make([]dto.LocationDTO, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationDTO{ID: l.ID, Name: l.Name})
	}
	return out, nil
}

func lifecycleResult(err error) (*dto.ReviewResult, bool) {
	var code, msg string
	switch {
	case errors.Is(err, domain.ErrPartialAccept):
		return nil, false
	case errors.Is(err, domain.ErrInvalidInput):
		code, msg = CodeInvalidInput, "Identificador de propuesta vacío."
	case errors.Is(err, domain.ErrProposalNotPending):
		code, msg = CodeNotPending, "La propuesta ya fue aceptada o rechazada."
	case errors.Is(err, domain.ErrInsufficientStock):
		code, msg = CodeInsufficientStock, "Stock insuficiente en la tienda de origen; la propuesta sigue pendiente."
	case errors.Is(err, domain.ErrNotFound):
		code, msg = CodeNotFound, "Propuesta o stock no encontrado."
	default:
		return nil, false
	}
	return &dto.ReviewResult{Success: false, Code: code, Message: msg}, true
}
