package rebalance

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// Etiquetas usadas cuando una referencia del snapshot no se puede resolver.
const (
	UnknownArticle     = "Artículo desconocido"
	UnknownLocation    = "Ubicación desconocida"
	UnclassifiedCat    = "Sin categoría"
	UnclassifiedSubCat = "Sin subcategoría"
)

// Estados globales de un artículo en el detalle de equilibrado.
const (
	GlobalRebalancePossible = "rebalance_possible" // excedente y faltante en tiendas distintas
	GlobalDeficit           = "global_deficit"
	GlobalSurplus           = "global_surplus"
)

// NormalizeSnapshot sustituye nombres no resueltos por etiquetas y devuelve un aviso por cada
// referencia rota. Un artículo sin categoría asignada no es un error: solo recibe la etiqueta.
func NormalizeSnapshot(rows []entity.SnapshotRow) ([]entity.SnapshotRow, []string) {
	var warnings []string
	out := make([]entity.SnapshotRow, len(rows))
	for i, r := range rows {
		if r.ArticleName == "" {
			warnings = append(warnings, fmt.Sprintf("stock %s/%s: artículo no resuelto", r.LocationID, r.ArticleID))
			r.ArticleName = UnknownArticle
		}
		if r.LocationName == "" {
			warnings = append(warnings, fmt.Sprintf("stock %s/%s: tienda no resuelta", r.LocationID, r.ArticleID))
			r.LocationName = UnknownLocation
		}
		if r.CategoryName == "" {
			if r.CategoryID != "" {
				warnings = append(warnings, fmt.Sprintf("artículo %s: categoría %s no resuelta", r.ArticleID, r.CategoryID))
			}
			r.CategoryName = UnclassifiedCat
		}
		if r.SubCategoryName == "" {
			if r.SubCategoryID != "" {
				warnings = append(warnings, fmt.Sprintf("artículo %s: subcategoría %s no resuelta", r.ArticleID, r.SubCategoryID))
			}
			r.SubCategoryName = UnclassifiedSubCat
		}
		out[i] = r
	}
	return out, warnings
}

// LocationSummary resumen por tienda de una corrida: transferencias y unidades a enviar/recibir,
// y cuántos artículos distintos tiene en excedente o en faltante.
type LocationSummary struct {
	LocationID          string `json:"location_id"`
	LocationName        string `json:"location"`
	TransfersOut        int    `json:"transfers_out"`
	TransfersIn         int    `json:"transfers_in"`
	UnitsOut            int64  `json:"units_out"`
	UnitsIn             int64  `json:"units_in"`
	SurplusArticleCount int    `json:"surplus_article_count"`
	DeficitArticleCount int    `json:"deficit_article_count"`
}

// SummarizeLocations construye el resumen de todas las tiendas presentes en el snapshot.
func SummarizeLocations(rows []entity.SnapshotRow, matches []Match) []LocationSummary {
	index := make(map[string]int)
	var out []LocationSummary
	slot := func(id, name string) *LocationSummary {
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, LocationSummary{LocationID: id, LocationName: name})
		}
		return &out[i]
	}

	surplusSeen := make(map[PairKey]struct{})
	deficitSeen := make(map[PairKey]struct{})
	for _, r := range rows {
		s := slot(r.LocationID, r.LocationName)
		key := PairKey{ArticleID: r.ArticleID, LocationID: r.LocationID}
		switch ClassifyRecord(r.StockRecord) {
		case entity.StockStatusSurplus:
			if _, ok := surplusSeen[key]; !ok {
				surplusSeen[key] = struct{}{}
				s.SurplusArticleCount++
			}
		case entity.StockStatusDeficit:
			if _, ok := deficitSeen[key]; !ok {
				deficitSeen[key] = struct{}{}
				s.DeficitArticleCount++
			}
		}
	}
	for _, m := range matches {
		src := slot(m.SourceLocationID, UnknownLocation)
		src.TransfersOut++
		src.UnitsOut += m.Quantity
		dst := slot(m.DestinationLocationID, UnknownLocation)
		dst.TransfersIn++
		dst.UnitsIn += m.Quantity
	}

	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].LocationName, out[i].LocationID, out[j].LocationName, out[j].LocationID)
	})
	return out
}

// ArticleDetail detalle de equilibrado de un artículo con excedente o faltante en alguna tienda.
type ArticleDetail struct {
	ArticleID                    string   `json:"article_id"`
	ArticleName                  string   `json:"article"`
	Category                     string   `json:"category"`
	SubCategory                  string   `json:"sub_category"`
	TotalSurplusQty              int64    `json:"total_surplus_qty"`
	TotalDeficitQty              int64    `json:"total_deficit_qty"`
	ContributingSurplusLocations []string `json:"contributing_surplus_locations"`
	ContributingDeficitLocations []string `json:"contributing_deficit_locations"`
	GlobalStatus                 string   `json:"global_status"`
}

// DetailArticles agrupa excedentes y faltantes por artículo. Los artículos sin desequilibrio no aparecen.
func DetailArticles(rows []entity.SnapshotRow) []ArticleDetail {
	index := make(map[string]int)
	var out []ArticleDetail

	for _, r := range rows {
		status := ClassifyRecord(r.StockRecord)
		if status == entity.StockStatusNormal {
			continue
		}
		i, ok := index[r.ArticleID]
		if !ok {
			i = len(out)
			index[r.ArticleID] = i
			out = append(out, ArticleDetail{
				ArticleID:                    r.ArticleID,
				ArticleName:                  r.ArticleName,
				Category:                     r.CategoryName,
				SubCategory:                  r.SubCategoryName,
				ContributingSurplusLocations: []string{},
				ContributingDeficitLocations: []string{},
			})
		}
		d := &out[i]
		if status == entity.StockStatusSurplus {
			d.TotalSurplusQty += Surplus(r.StockRecord)
			d.ContributingSurplusLocations = append(d.ContributingSurplusLocations, r.LocationName)
		} else {
			d.TotalDeficitQty += Deficit(r.StockRecord)
			d.ContributingDeficitLocations = append(d.ContributingDeficitLocations, r.LocationName)
		}
	}

	for i := range out {
		d := &out[i]
		sort.Strings(d.ContributingSurplusLocations)
		sort.Strings(d.ContributingDeficitLocations)
		switch {
		case d.TotalSurplusQty > 0 && d.TotalDeficitQty > 0:
			d.GlobalStatus = GlobalRebalancePossible
		case d.TotalDeficitQty > 0:
			d.GlobalStatus = GlobalDeficit
		default:
			d.GlobalStatus = GlobalSurplus
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].ArticleName, out[i].ArticleID, out[j].ArticleName, out[j].ArticleID)
	})
	return out
}
