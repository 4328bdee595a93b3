// Package rebalance contiene el motor de equilibrado de stock entre tiendas: clasificación de
// cada registro, rotación media, agregación jerárquica y emparejamiento excedente → faltante.
// Todo es puro y en memoria; la persistencia vive en los casos de uso.
package rebalance

import "github.com/jhoicas/Equilibrio-api/internal/domain/entity"

// Classify devuelve el estado de un stock frente a sus umbrales.
// q > max ⇒ surplus; q < min ⇒ deficit; en otro caso normal (incluye q == min y q == max).
// Umbrales incoherentes (min > max) se aceptan tal cual; se validan en la importación.
func Classify(quantity, min, max int64) entity.StockStatus {
	switch {
	case quantity > max:
		return entity.StockStatusSurplus
	case quantity < min:
		return entity.StockStatusDeficit
	default:
		return entity.StockStatusNormal
	}
}

// ClassifyRecord aplica Classify a un registro de stock.
func ClassifyRecord(r entity.StockRecord) entity.StockStatus {
	return Classify(r.QuantityOnHand, r.MinThreshold, r.MaxThreshold)
}

// Surplus cantidad transferible por encima del máximo (0 si no hay excedente).
func Surplus(r entity.StockRecord) int64 {
	if r.QuantityOnHand > r.MaxThreshold {
		return r.QuantityOnHand - r.MaxThreshold
	}
	return 0
}

// Deficit necesidad hasta el mínimo (0 si no hay faltante).
func Deficit(r entity.StockRecord) int64 {
	if r.QuantityOnHand < r.MinThreshold {
		return r.MinThreshold - r.QuantityOnHand
	}
	return 0
}
