package main

import (
	"time"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
	"github.com/jhoicas/Equilibrio-api/internal/infrastructure/memory"
)

// seedDemo carga tres tiendas y dos artículos con excedentes y faltantes cruzados,
// más ventas de los últimos meses para que la rotación decida el orden de destinos.
func seedDemo(s *memory.Store, now time.Time) {
	s.AddLocation("tienda-centro", "Tienda Centro")
	s.AddLocation("tienda-norte", "Tienda Norte")
	s.AddLocation("tienda-sur", "Tienda Sur")

	s.AddCategory("textil", "Textil")
	s.AddSubCategory("camisas", "textil", "Camisas")
	s.AddSubCategory("pantalones", "textil", "Pantalones")
	s.AddArticle(entity.Article{ID: "camisa-lino", Code: "7701234000011", Name: "Camisa lino", CategoryID: "textil", SubCategoryID: "camisas"})
	s.AddArticle(entity.Article{ID: "pantalon-dril", Code: "7701234000028", Name: "Pantalón dril", CategoryID: "textil", SubCategoryID: "pantalones"})

	stock := []entity.StockRecord{
		{LocationID: "tienda-centro", ArticleID: "camisa-lino", QuantityOnHand: 60, MinThreshold: 10, MaxThreshold: 30},
		{LocationID: "tienda-norte", ArticleID: "camisa-lino", QuantityOnHand: 4, MinThreshold: 20, MaxThreshold: 40},
		{LocationID: "tienda-sur", ArticleID: "camisa-lino", QuantityOnHand: 8, MinThreshold: 15, MaxThreshold: 40},
		{LocationID: "tienda-centro", ArticleID: "pantalon-dril", QuantityOnHand: 2, MinThreshold: 12, MaxThreshold: 30},
		{LocationID: "tienda-norte", ArticleID: "pantalon-dril", QuantityOnHand: 45, MinThreshold: 5, MaxThreshold: 25},
		{LocationID: "tienda-sur", ArticleID: "pantalon-dril", QuantityOnHand: 15, MinThreshold: 5, MaxThreshold: 25},
	}
	for _, r := range stock {
		r.UpdatedAt = now
		s.PutStock(r)
	}

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		m := month.AddDate(0, -i, 0)
		s.AddSale(entity.SalesRecord{ArticleID: "camisa-lino", LocationID: "tienda-norte", Month: m, QuantitySold: 12})
		s.AddSale(entity.SalesRecord{ArticleID: "camisa-lino", LocationID: "tienda-sur", Month: m, QuantitySold: 3})
		s.AddSale(entity.SalesRecord{ArticleID: "pantalon-dril", LocationID: "tienda-centro", Month: m, QuantitySold: 9})
	}
}
