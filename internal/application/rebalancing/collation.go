package rebalancing

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// nameOrder ordena por nombre según el idioma configurado (acentos y mayúsculas incluidos) y
// desempata por id. Un Collator no es seguro para uso concurrente: crear uno por operación.
type nameOrder struct {
	col *collate.Collator
}

func newNameOrder(locale string) *nameOrder {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &nameOrder{col: collate.New(tag, collate.IgnoreCase)}
}

func (o *nameOrder) less(nameA, idA, nameB, idB string) bool {
	if c := o.col.CompareString(nameA, nameB); c != 0 {
		return c < 0
	}
	return idA < idB
}

// sortByName ordena items de forma estable con la clave (nombre, id) que devuelve key.
func sortByName[T any](o *nameOrder, items []T, key func(T) (name, id string)) {
	sort.SliceStable(items, func(i, j int) bool {
		nameA, idA := key(items[i])
		nameB, idB := key(items[j])
		return o.less(nameA, idA, nameB, idB)
	})
}
