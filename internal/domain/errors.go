package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrProposalNotPending = errors.New("la propuesta ya fue resuelta")

	// ErrCommitUncertain: el commit falló y no se sabe si la transacción quedó aplicada.
	ErrCommitUncertain = errors.New("resultado del commit desconocido")
	// ErrPartialAccept: aceptación cuyo efecto sobre stock/historial no está garantizado; requiere conciliación manual.
	ErrPartialAccept = errors.New("aceptación parcial de transferencia")
)
