package rebalance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// Match es una transferencia calculada por el emparejador, antes de persistirse como propuesta.
type Match struct {
	ArticleID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	DestinationVelocity   decimal.Decimal
}

// deficitSlot copia de trabajo de un registro en faltante. simulatedQty acumula lo ya asignado
// en esta corrida para que el destino no reciba dos veces la misma necesidad.
type deficitSlot struct {
	locationID   string
	min          int64
	simulatedQty int64
	velocity     decimal.Decimal
}

func (d *deficitSlot) need() int64 { return d.min - d.simulatedQty }

// MatchTransfers empareja excedentes con faltantes del mismo artículo en otras tiendas (greedy).
//
// Los excedentes se recorren en el orden del snapshot. Para cada uno, los faltantes candidatos se
// ordenan por rotación del destino descendente (empate: id de tienda ascendente) y se atienden
// mientras quede excedente, con cantidad min(excedente restante, necesidad restante).
// El snapshot no se modifica: las asignaciones se simulan sobre una copia de los faltantes que
// persiste entre excedentes de la misma corrida.
func MatchTransfers(rows []entity.SnapshotRow, velocity VelocityIndex) []Match {
	var surplus []entity.StockRecord
	deficits := make(map[string][]*deficitSlot)

	for _, r := range rows {
		switch ClassifyRecord(r.StockRecord) {
		case entity.StockStatusSurplus:
			surplus = append(surplus, r.StockRecord)
		case entity.StockStatusDeficit:
			deficits[r.ArticleID] = append(deficits[r.ArticleID], &deficitSlot{
				locationID:   r.LocationID,
				min:          r.MinThreshold,
				simulatedQty: r.QuantityOnHand,
				velocity:     velocity.Of(r.ArticleID, r.LocationID),
			})
		}
	}

	var matches []Match
	processed := make(map[PairKey]struct{}, len(surplus))

	for _, s := range surplus {
		key := PairKey{ArticleID: s.ArticleID, LocationID: s.LocationID}
		if _, done := processed[key]; done {
			continue
		}
		processed[key] = struct{}{}

		remaining := s.QuantityOnHand - s.MaxThreshold
		if remaining <= 0 {
			continue
		}

		candidates := make([]*deficitSlot, 0, len(deficits[s.ArticleID]))
		for _, d := range deficits[s.ArticleID] {
			if d.locationID != s.LocationID {
				candidates = append(candidates, d)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if c := candidates[i].velocity.Cmp(candidates[j].velocity); c != 0 {
				return c > 0
			}
			return candidates[i].locationID < candidates[j].locationID
		})

		for _, d := range candidates {
			if remaining <= 0 {
				break
			}
			need := d.need()
			if need <= 0 {
				continue
			}
			qty := min(remaining, need)
			matches = append(matches, Match{
				ArticleID:             s.ArticleID,
				SourceLocationID:      s.LocationID,
				DestinationLocationID: d.locationID,
				Quantity:              qty,
				DestinationVelocity:   d.velocity,
			})
			remaining -= qty
			d.simulatedQty += qty
		}
	}
	return matches
}
