package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

var _ repository.ProposalRepository = (*ProposalRepo)(nil)

const proposalColumns = `p.id, p.run_id, p.article_id, p.source_location_id, p.destination_location_id,
		p.quantity, p.destination_velocity, p.status, p.generated_at, p.resolved_at`

const proposalViewQuery = `
		SELECT ` + proposalColumns + `,
		       COALESCE(a.code, ''), COALESCE(a.name, ''), COALESCE(src.name, ''), COALESCE(dst.name, '')
		FROM transfer_proposals p
		LEFT JOIN articles a ON a.id = p.article_id
		LEFT JOIN locations src ON src.id = p.source_location_id
		LEFT JOIN locations dst ON dst.id = p.destination_location_id`

// ProposalRepo implementación de ProposalRepository sobre PostgreSQL (usable con pool o tx).
type ProposalRepo struct {
	q Querier
}

// NewProposalRepository construye el adaptador de propuestas. Pasar pool o tx (Querier).
func NewProposalRepository(q Querier) *ProposalRepo {
	return &ProposalRepo{q: q}
}

func scanProposal(row pgx.Row, p *entity.TransferProposal, extra ...any) error {
	var status string
	dest := append([]any{
		&p.ID, &p.RunID, &p.ArticleID, &p.SourceLocationID, &p.DestinationLocationID,
		&p.Quantity, &p.DestinationVelocity, &status, &p.GeneratedAt, &p.ResolvedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	p.Status = entity.ProposalStatus(status)
	return nil
}

func (r *ProposalRepo) listViews(ctx context.Context, query string, args ...any) ([]*entity.ProposalView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []*entity.ProposalView
	for rows.Next() {
		var v entity.ProposalView
		if err := scanProposal(rows, &v.TransferProposal,
			&v.ArticleCode, &v.ArticleName, &v.SourceLocationName, &v.DestinationLocationName,
		); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}

// ListPending propuestas pendientes, más recientes primero.
func (r *ProposalRepo) ListPending(ctx context.Context) ([]*entity.ProposalView, error) {
	return r.listViews(ctx, proposalViewQuery+`
		WHERE p.status = 'pending'
		ORDER BY p.generated_at DESC, p.id`)
}

// ListHistory propuestas resueltas, resolución más reciente primero.
func (r *ProposalRepo) ListHistory(ctx context.Context, limit, offset int) ([]*entity.ProposalView, error) {
	limit, offset = page(limit, offset)
	return r.listViews(ctx, proposalViewQuery+`
		WHERE p.status <> 'pending'
		ORDER BY p.resolved_at DESC NULLS LAST, p.id
		LIMIT $1 OFFSET $2`, limit, offset)
}

// GetByID obtiene una propuesta por ID. Devuelve nil, nil si no existe.
func (r *ProposalRepo) GetByID(ctx context.Context, id string) (*entity.TransferProposal, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	query := `SELECT ` + proposalColumns + ` FROM transfer_proposals p WHERE p.id = $1`
	var p entity.TransferProposal
	if err := scanProposal(r.q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proposal: %w", err)
	}
	return &p, nil
}

// DeletePending borra las pendientes cuyo id no esté en keepIDs.
func (r *ProposalRepo) DeletePending(ctx context.Context, keepIDs []string) (int64, error) {
	if keepIDs == nil {
		keepIDs = []string{}
	}
	tag, err := r.q.Exec(ctx, `
		DELETE FROM transfer_proposals
		WHERE status = 'pending' AND NOT (id = ANY($1::uuid[]))`, keepIDs)
	if err != nil {
		return 0, fmt.Errorf("delete pending proposals: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatch inserta el lote con COPY.
func (r *ProposalRepo) InsertBatch(ctx context.Context, proposals []*entity.TransferProposal) error {
	if len(proposals) == 0 {
		return nil
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"transfer_proposals"},
		[]string{"id", "run_id", "article_id", "source_location_id", "destination_location_id",
			"quantity", "destination_velocity", "status", "generated_at"},
		pgx.CopyFromSlice(len(proposals), func(i int) ([]any, error) {
			p := proposals[i]
			return []any{p.ID, p.RunID, p.ArticleID, p.SourceLocationID, p.DestinationLocationID,
				p.Quantity, p.DestinationVelocity, string(p.Status), p.GeneratedAt}, nil
		}),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert proposals: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert proposals: %w", err)
	}
	return nil
}

// Transition cambia el estado solo si la propuesta sigue pendiente (UPDATE ... WHERE status = 'pending').
func (r *ProposalRepo) Transition(ctx context.Context, id string, to entity.ProposalStatus, at time.Time) (*entity.TransferProposal, error) {
	// Un id que no es UUID no puede existir; evita el error de cast de PostgreSQL.
	if uuid.Validate(id) != nil {
		return nil, domain.ErrNotFound
	}
	query := `
		UPDATE transfer_proposals p SET status = $2, resolved_at = $3
		WHERE p.id = $1 AND p.status = 'pending'
		RETURNING ` + proposalColumns
	var p entity.TransferProposal
	err := scanProposal(r.q.QueryRow(ctx, query, id, string(to), at), &p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition proposal: %w", err)
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transfer_proposals WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("transition proposal: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return nil, domain.ErrProposalNotPending
}
