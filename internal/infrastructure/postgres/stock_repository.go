package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Equilibrio-api/internal/domain"
	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/domain/repository"
)

var (
	_ repository.StockRepository    = (*StockRepo)(nil)
	_ repository.SnapshotRepository = (*SnapshotRepo)(nil)
	_ repository.SalesRepository    = (*SalesRepo)(nil)
)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, locationID, articleID string) (*entity.StockRecord, error) {
	query := `
		SELECT location_id, article_id, quantity, min_threshold, max_threshold, updated_at
		FROM stock WHERE location_id = $1 AND article_id = $2
		FOR UPDATE`
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, locationID, articleID).Scan(
		&s.LocationID, &s.ArticleID, &s.QuantityOnHand, &s.MinThreshold, &s.MaxThreshold, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// UpdateQuantity fija la cantidad disponible. La columna tiene CHECK (quantity >= 0).
func (r *StockRepo) UpdateQuantity(ctx context.Context, locationID, articleID string, quantity int64) error {
	query := `
		UPDATE stock SET quantity = $3, updated_at = now()
		WHERE location_id = $1 AND article_id = $2`
	tag, err := r.q.Exec(ctx, query, locationID, articleID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SnapshotRepo carga el snapshot de stock con nombres (LEFT JOIN: las referencias rotas llegan vacías).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el cargador de snapshot.
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

// LoadSnapshot devuelve todo el stock en orden (tienda, artículo).
func (r *SnapshotRepo) LoadSnapshot(ctx context.Context) ([]entity.SnapshotRow, error) {
	query := `
		SELECT s.location_id, s.article_id, s.quantity, s.min_threshold, s.max_threshold, s.updated_at,
		       COALESCE(a.code, ''), COALESCE(a.name, ''),
		       COALESCE(a.category_id::text, ''), COALESCE(c.name, ''),
		       COALESCE(a.sub_category_id::text, ''), COALESCE(sc.name, ''),
		       COALESCE(l.name, '')
		FROM stock s
		LEFT JOIN articles a ON a.id = s.article_id
		LEFT JOIN categories c ON c.id = a.category_id
		LEFT JOIN sub_categories sc ON sc.id = a.sub_category_id
		LEFT JOIN locations l ON l.id = s.location_id
		ORDER BY s.location_id, s.article_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	var out []entity.SnapshotRow
	for rows.Next() {
		var s entity.SnapshotRow
		if err := rows.Scan(
			&s.LocationID, &s.ArticleID, &s.QuantityOnHand, &s.MinThreshold, &s.MaxThreshold, &s.UpdatedAt,
			&s.ArticleCode, &s.ArticleName,
			&s.CategoryID, &s.CategoryName,
			&s.SubCategoryID, &s.SubCategoryName,
			&s.LocationName,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return out, nil
}

// SalesRepo lectura del historial de ventas mensual.
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador de ventas.
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// ListSince devuelve las ventas con month >= since.
func (r *SalesRepo) ListSince(ctx context.Context, since time.Time) ([]entity.SalesRecord, error) {
	query := `
		SELECT article_id, location_id, month, quantity_sold
		FROM sales WHERE month >= $1`
	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SalesRecord, error) {
		var s entity.SalesRecord
		err := row.Scan(&s.ArticleID, &s.LocationID, &s.Month, &s.QuantitySold)
		return s, err
	})
}
