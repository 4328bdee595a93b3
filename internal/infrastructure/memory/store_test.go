package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/memory"
)

func seed() *memory.Store {
	s := memory.NewStore()
	s.AddLocation("X", "Centro")
	s.AddLocation("Y", "Norte")
	s.AddCategory("c1", "Textil")
	s.AddArticle(entity.Article{ID: "A", Code: "A-001", Name: "Camisa", CategoryID: "c1", SubCategoryID: "s-missing"})
	s.PutStock(entity.StockRecord{LocationID: "X", ArticleID: "A", QuantityOnHand: 50, MaxThreshold: 30})
	s.PutStock(entity.StockRecord{LocationID: "Y", ArticleID: "A", QuantityOnHand: 5, MinThreshold: 20, MaxThreshold: 100})
	s.PutStock(entity.StockRecord{LocationID: "Z", ArticleID: "B", QuantityOnHand: 1})
	return s
}

func proposal(id string, at time.Time) *entity.TransferProposal {
	return &entity.TransferProposal{
		ID: id, ArticleID: "A", SourceLocationID: "X", DestinationLocationID: "Y",
		Quantity: 15, Status: entity.ProposalPending, GeneratedAt: at,
	}
}

func TestLoadSnapshot_NombresYReferenciasRotas(t *testing.T) {
	s := seed()
	rows, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "X", rows[0].LocationID, "orden de inserción")
	assert.Equal(t, "Centro", rows[0].LocationName)
	assert.Equal(t, "Camisa", rows[0].ArticleName)
	assert.Equal(t, "Textil", rows[0].CategoryName)
	assert.Equal(t, "s-missing", rows[0].SubCategoryID)
	assert.Empty(t, rows[0].SubCategoryName)

	assert.Empty(t, rows[2].ArticleName, "artículo inexistente llega sin nombre")
	assert.Empty(t, rows[2].LocationName)
}

func TestTransition_CompareAndSwap(t *testing.T) {
	s := seed()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.InsertBatch(ctx, []*entity.TransferProposal{proposal("p1", now)}))

	p, err := s.Transition(ctx, "p1", entity.ProposalRejected, now)
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalRejected, p.Status)
	require.NotNil(t, p.ResolvedAt)

	_, err = s.Transition(ctx, "p1", entity.ProposalAccepted, now)
	assert.ErrorIs(t, err, domain.ErrProposalNotPending)
	assert.Equal(t, entity.ProposalRejected, s.Proposal("p1").Status, "el estado no cambia")

	_, err = s.Transition(ctx, "nope", entity.ProposalAccepted, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletePending_ConservaResueltasYKeepIDs(t *testing.T) {
	s := seed()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.InsertBatch(ctx, []*entity.TransferProposal{
		proposal("p1", now), proposal("p2", now), proposal("p3", now),
	}))
	_, err := s.Transition(ctx, "p3", entity.ProposalAccepted, now)
	require.NoError(t, err)

	n, err := s.DeletePending(ctx, []string{"p2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Nil(t, s.Proposal("p1"))
	assert.NotNil(t, s.Proposal("p2"))
	assert.NotNil(t, s.Proposal("p3"))
}

func TestListPending_MasRecientesPrimero(t *testing.T) {
	s := seed()
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertBatch(ctx, []*entity.TransferProposal{
		proposal("old", t0), proposal("new", t0.Add(time.Hour)),
	}))

	views, err := s.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "new", views[0].ID)
	assert.Equal(t, "Centro", views[0].SourceLocationName)
	assert.Equal(t, "Norte", views[0].DestinationLocationName)
	assert.Equal(t, "A-001", views[0].ArticleCode)
}

func TestInsertBatch_IDDuplicado(t *testing.T) {
	s := seed()
	ctx := context.Background()
	require.NoError(t, s.InsertBatch(ctx, []*entity.TransferProposal{proposal("p1", time.Now())}))
	err := s.InsertBatch(ctx, []*entity.TransferProposal{proposal("p1", time.Now())})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRun_RollbackSiFnFalla(t *testing.T) {
	s := seed()
	boom := errors.New("boom")
	err := s.Run(context.Background(), func(_ repository.ProposalRepository, stock repository.StockRepository, _ repository.TransferRepository) error {
		require.NoError(t, stock.UpdateQuantity(context.Background(), "X", "A", 0))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	rec, ok := s.Stock("X", "A")
	require.True(t, ok)
	assert.Equal(t, int64(50), rec.QuantityOnHand)
}

func TestRun_CommitIncierto(t *testing.T) {
	s := seed()
	s.FailCommitWith(errors.New("conexión perdida"))
	err := s.Run(context.Background(), func(_ repository.ProposalRepository, stock repository.StockRepository, _ repository.TransferRepository) error {
		return stock.UpdateQuantity(context.Background(), "X", "A", 35)
	})
	assert.ErrorIs(t, err, domain.ErrCommitUncertain)
	rec, _ := s.Stock("X", "A")
	assert.Equal(t, int64(35), rec.QuantityOnHand, "los cambios quedaron aplicados")

	require.NoError(t, s.Run(context.Background(), func(repository.ProposalRepository, repository.StockRepository, repository.TransferRepository) error {
		return nil
	}), "el fallo solo afecta a una transacción")
}

func TestFailOn_InyectaErrores(t *testing.T) {
	s := seed()
	boom := errors.New("db caída")
	s.FailOn("LoadSnapshot", boom)
	_, err := s.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, boom)

	s.FailOn("LoadSnapshot", nil)
	_, err = s.LoadSnapshot(context.Background())
	assert.NoError(t, err)
}

func TestLocations_OrdenadasPorNombre(t *testing.T) {
	s := seed()
	locs, err := s.Locations().List(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Centro", locs[0].Name)
	assert.Equal(t, "Norte", locs[1].Name)
}
