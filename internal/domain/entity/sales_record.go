package entity

import "time"

// SalesRecord unidades vendidas de un artículo en una tienda durante un mes calendario.
// Month siempre es el día 1 del mes a las 00:00 UTC.
type SalesRecord struct {
	ArticleID    string
	LocationID   string
	Month        time.Time
	QuantitySold int64
}
