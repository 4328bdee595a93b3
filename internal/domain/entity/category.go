package entity

// Category familia de artículos (primer nivel de la jerarquía de reportes).
type Category struct {
	ID   string
	Name string
}

// SubCategory subfamilia; pertenece a una Category.
type SubCategory struct {
	ID         string
	CategoryID string
	Name       string
}
