package entity

import "time"

// Location representa una tienda (punto de venta) con su propio stock de artículos.
type Location struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
