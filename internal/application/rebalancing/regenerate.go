package rebalancing

import (
	"context"
	"fmt"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

// Modos de regeneración de las propuestas pendientes.
const (
	ModeReplace = "replace"
	ModeMerge   = "merge"
)

// regenerate sustituye las propuestas pendientes por el lote de la corrida dentro de la tx del caller.
//
// replace borra todas las pendientes e inserta el lote completo. merge conserva cada pendiente
// que mueve la misma cantidad del mismo artículo entre las mismas tiendas que una propuesta
// nueva (mantiene su id y fecha) y solo inserta el resto. Las aceptadas y rechazadas no se tocan.
// Devuelve el lote tal como queda pendiente, en el orden de entrada.
func regenerate(
	ctx context.Context,
	repo repository.ProposalRepository,
	batch []*entity.TransferProposal,
	mode string,
) (result []*entity.TransferProposal, deleted int64, err error) {
	if mode != ModeMerge {
		if deleted, err = repo.DeletePending(ctx, nil); err != nil {
			return nil, 0, fmt.Errorf("borrar propuestas pendientes: %w", err)
		}
		if err := repo.InsertBatch(ctx, batch); err != nil {
			return nil, 0, fmt.Errorf("insertar propuestas: %w", err)
		}
		return batch, deleted, nil
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("listar propuestas pendientes: %w", err)
	}

	used := make([]bool, len(pending))
	result = make([]*entity.TransferProposal, 0, len(batch))
	var keepIDs []string
	var fresh []*entity.TransferProposal
	for _, p := range batch {
		kept := false
		for i, old := range pending {
			if used[i] || !old.SameTransfer(p) {
				continue
			}
			used[i] = true
			kept = true
			existing := old.TransferProposal
			keepIDs = append(keepIDs, existing.ID)
			result = append(result, &existing)
			break
		}
		if !kept {
			fresh = append(fresh, p)
			result = append(result, p)
		}
	}

	if deleted, err = repo.DeletePending(ctx, keepIDs); err != nil {
		return nil, 0, fmt.Errorf("borrar propuestas pendientes: %w", err)
	}
	if err := repo.InsertBatch(ctx, fresh); err != nil {
		return nil, 0, fmt.Errorf("insertar propuestas: %w", err)
	}
	return result, deleted, nil
}
