package rebalance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// DefaultSalesWindowMonths ventana de historial de ventas usada para la rotación media.
const DefaultSalesWindowMonths = 6

// PairKey identifica un par (artículo, tienda).
type PairKey struct {
	ArticleID  string
	LocationID string
}

// VelocityIndex rotación media mensual por (artículo, tienda). Se recalcula en cada corrida.
type VelocityIndex map[PairKey]decimal.Decimal

// Of devuelve la rotación del par; un par sin ventas vale cero.
func (v VelocityIndex) Of(articleID, locationID string) decimal.Decimal {
	if d, ok := v[PairKey{ArticleID: articleID, LocationID: locationID}]; ok {
		return d
	}
	return decimal.Zero
}

// WindowStart primer día de la ventana de ventas: la ventana cubre windowMonths meses calendario
// contando el mes en curso, así que hay tantos meses como el divisor de BuildVelocityIndex.
// Con now = 2025-07-15 y 6 meses devuelve 2025-02-01 (febrero a julio).
func WindowStart(now time.Time, windowMonths int) time.Time {
	if windowMonths <= 0 {
		windowMonths = DefaultSalesWindowMonths
	}
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(windowMonths - 1), 0)
}

// BuildVelocityIndex suma las ventas de cada par y las divide por la longitud de la ventana,
// no por el número de meses con ventas: un mes sin registro cuenta como cero.
func BuildVelocityIndex(sales []entity.SalesRecord, windowMonths int) VelocityIndex {
	if windowMonths <= 0 {
		windowMonths = DefaultSalesWindowMonths
	}
	totals := make(map[PairKey]int64)
	for _, s := range sales {
		totals[PairKey{ArticleID: s.ArticleID, LocationID: s.LocationID}] += s.QuantitySold
	}
	months := decimal.NewFromInt(int64(windowMonths))
	index := make(VelocityIndex, len(totals))
	for k, total := range totals {
		index[k] = decimal.NewFromInt(total).DivRound(months, 4)
	}
	return index
}
