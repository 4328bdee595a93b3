package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// StockRepository define el puerto para leer/actualizar stock por tienda+artículo.
// Usado dentro de transacciones por el ejecutor de transferencias.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, locationID, articleID string) (*entity.StockRecord, error)
	UpdateQuantity(ctx context.Context, locationID, articleID string, quantity int64) error
}

// SnapshotRepository carga el stock completo con los nombres de artículo, categoría y tienda.
// Las referencias que no se pueden resolver llegan con el nombre vacío.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context) ([]entity.SnapshotRow, error)
}

// SalesRepository lectura del historial de ventas mensual.
type SalesRepository interface {
	// ListSince devuelve las ventas con mes >= since.
	ListSince(ctx context.Context, since time.Time) ([]entity.SalesRecord, error)
}
