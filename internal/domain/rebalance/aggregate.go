package rebalance

import (
	"sort"

	"github.com/jhoicas/Equilibrio-api/internal/domain/entity"
)

// StatusCounters contadores por estado de un grupo de registros.
type StatusCounters struct {
	TotalItems   int `json:"total_items"`
	SurplusCount int `json:"surplus_count"`
	DeficitCount int `json:"deficit_count"`
	NormalCount  int `json:"normal_count"`
}

func (c *StatusCounters) add(status entity.StockStatus) {
	c.TotalItems++
	switch status {
	case entity.StockStatusSurplus:
		c.SurplusCount++
	case entity.StockStatusDeficit:
		c.DeficitCount++
	default:
		c.NormalCount++
	}
}

// LocationCounters contadores de un grupo restringidos a una tienda.
type LocationCounters struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location"`
	StatusCounters
}

// LocationStock situación de un artículo en una tienda.
type LocationStock struct {
	LocationID   string             `json:"location_id"`
	LocationName string             `json:"location"`
	Quantity     int64              `json:"quantity"`
	Min          int64              `json:"min"`
	Max          int64              `json:"max"`
	Status       entity.StockStatus `json:"status"`
}

// GroupStats contadores de una categoría, subcategoría o artículo, con desglose por tienda.
// Parent es la categoría de una subcategoría; Category/SubCategory solo se rellenan en artículos.
type GroupStats struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Parent      string `json:"parent,omitempty"`
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
	StatusCounters
	Locations []LocationCounters `json:"locations"`
	Stock     []LocationStock    `json:"stock,omitempty"`
}

// Analysis agregación jerárquica de una corrida. Solo informativa: no influye en el emparejamiento.
type Analysis struct {
	Categories    []GroupStats `json:"categories"`
	SubCategories []GroupStats `json:"sub_categories"`
	Articles      []GroupStats `json:"articles"`
}

// Aggregate recorre el snapshot una vez y acumula los contadores por categoría, subcategoría y
// artículo. Los registros sin categoría (o subcategoría) no cuentan en ese nivel; todos cuentan
// en el nivel artículo. El resultado no depende del orden de los registros.
func Aggregate(rows []entity.SnapshotRow) Analysis {
	categories := newArena()
	subCategories := newArena()
	articles := newArena()

	for _, r := range rows {
		status := ClassifyRecord(r.StockRecord)

		if r.CategoryID != "" {
			categories.slot(r.CategoryID, r.CategoryName).count(r, status)
		}
		if r.SubCategoryID != "" {
			sc := subCategories.slot(r.SubCategoryID, r.SubCategoryName)
			sc.Parent = r.CategoryName
			sc.count(r, status)
		}
		a := articles.slot(r.ArticleID, r.ArticleName)
		a.Category = r.CategoryName
		a.SubCategory = r.SubCategoryName
		a.count(r, status)
		a.Stock = append(a.Stock, LocationStock{
			LocationID:   r.LocationID,
			LocationName: r.LocationName,
			Quantity:     r.QuantityOnHand,
			Min:          r.MinThreshold,
			Max:          r.MaxThreshold,
			Status:       status,
		})
	}

	return Analysis{
		Categories:    categories.stats(),
		SubCategories: subCategories.stats(),
		Articles:      articles.stats(),
	}
}

// arena entradas clave → contadores en un slice, con índices en mapas.
type arena struct {
	index   map[string]int
	entries []*groupEntry
}

type groupEntry struct {
	GroupStats
	locIndex map[string]int
}

func newArena() *arena {
	return &arena{index: make(map[string]int)}
}

func (a *arena) slot(id, name string) *groupEntry {
	if i, ok := a.index[id]; ok {
		return a.entries[i]
	}
	e := &groupEntry{GroupStats: GroupStats{ID: id, Name: name}, locIndex: make(map[string]int)}
	a.index[id] = len(a.entries)
	a.entries = append(a.entries, e)
	return e
}

func (e *groupEntry) count(r entity.SnapshotRow, status entity.StockStatus) {
	e.add(status)
	i, ok := e.locIndex[r.LocationID]
	if !ok {
		i = len(e.Locations)
		e.locIndex[r.LocationID] = i
		e.Locations = append(e.Locations, LocationCounters{LocationID: r.LocationID, LocationName: r.LocationName})
	}
	e.Locations[i].add(status)
}

// stats copia las entradas ordenadas por nombre e id, con tiendas y stock en el mismo orden.
func (a *arena) stats() []GroupStats {
	out := make([]GroupStats, 0, len(a.entries))
	for _, e := range a.entries {
		g := e.GroupStats
		g.Locations = append([]LocationCounters(nil), e.Locations...)
		sort.Slice(g.Locations, func(i, j int) bool {
			return lessByName(g.Locations[i].LocationName, g.Locations[i].LocationID, g.Locations[j].LocationName, g.Locations[j].LocationID)
		})
		if len(e.Stock) > 0 {
			g.Stock = append([]LocationStock(nil), e.Stock...)
			sort.Slice(g.Stock, func(i, j int) bool {
				return lessByName(g.Stock[i].LocationName, g.Stock[i].LocationID, g.Stock[j].LocationName, g.Stock[j].LocationID)
			})
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessByName(out[i].Name, out[i].ID, out[j].Name, out[j].ID)
	})
	return out
}

func lessByName(nameA, idA, nameB, idB string) bool {
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}
