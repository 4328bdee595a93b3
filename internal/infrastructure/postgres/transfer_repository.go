package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

var (
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// TransferRepo registro de transferencias ejecutadas (solo inserción).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta la transferencia. Una propuesta solo puede registrarse una vez (proposal_id UNIQUE).
func (r *TransferRepo) Create(ctx context.Context, t *entity.CompletedTransfer) error {
	query := `
		INSERT INTO completed_transfers
			(id, proposal_id, article_id, source_location_id, destination_location_id, quantity, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProposalID, t.ArticleID, t.SourceLocationID, t.DestinationLocationID,
		t.Quantity, t.Status, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert transfer: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// List transferencias con nombres, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, limit, offset int) ([]*entity.CompletedTransferView, error) {
	limit, offset = page(limit, offset)
	query := `
		SELECT t.id, t.proposal_id, t.article_id, t.source_location_id, t.destination_location_id,
		       t.quantity, t.status, t.created_at,
		       COALESCE(a.code, ''), COALESCE(a.name, ''), COALESCE(src.name, ''), COALESCE(dst.name, '')
		FROM completed_transfers t
		LEFT JOIN articles a ON a.id = t.article_id
		LEFT JOIN locations src ON src.id = t.source_location_id
		LEFT JOIN locations dst ON dst.id = t.destination_location_id
		ORDER BY t.created_at DESC, t.id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.CompletedTransferView, error) {
		var v entity.CompletedTransferView
		err := row.Scan(
			&v.ID, &v.ProposalID, &v.ArticleID, &v.SourceLocationID, &v.DestinationLocationID,
			&v.Quantity, &v.Status, &v.CreatedAt,
			&v.ArticleCode, &v.ArticleName, &v.SourceLocationName, &v.DestinationLocationName,
		)
		return &v, err
	})
}

// LocationRepo catálogo de tiendas.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// List tiendas ordenadas por nombre.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, created_at FROM locations ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Location, error) {
		var l entity.Location
		err := row.Scan(&l.ID, &l.Name, &l.CreatedAt)
		return &l, err
	})
}
