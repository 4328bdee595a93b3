package entity

// Article representa un producto vendible (SKU). Inmutable durante una corrida de equilibrado.
// CategoryID y SubCategoryID son opcionales (vacíos si el artículo no está clasificado).
type Article struct {
	ID            string
	Code          string // código de barras / identificador de importación
	Name          string
	CategoryID    string
	SubCategoryID string
}
