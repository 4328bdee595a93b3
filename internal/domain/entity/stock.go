package entity

import "time"

// StockStatus estado derivado de un registro de stock frente a sus umbrales. Nunca se persiste.
type StockStatus string

const (
	StockStatusSurplus StockStatus = "surplus" // por encima del máximo
	StockStatusDeficit StockStatus = "deficit" // por debajo del mínimo
	StockStatusNormal  StockStatus = "normal"
)

// StockRecord stock de un artículo en una tienda, con sus umbrales mínimo y máximo.
// Solo lo modifican el ejecutor de transferencias y la importación externa.
type StockRecord struct {
	LocationID     string
	ArticleID      string
	QuantityOnHand int64
	MinThreshold   int64
	MaxThreshold   int64
	UpdatedAt      time.Time
}

// SnapshotRow registro de stock unido a los nombres de artículo, categoría, subcategoría y tienda,
// tal como lo entrega el cargador al motor. Los nombres vacíos indican referencias no resueltas.
type SnapshotRow struct {
	StockRecord
	ArticleCode     string
	ArticleName     string
	CategoryID      string
	CategoryName    string
	SubCategoryID   string
	SubCategoryName string
	LocationName    string
}
