package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrRangeExhausted el rango de numeración no tiene consecutivos disponibles.
	ErrRangeExhausted = errors.New("rango de numeración agotado")
	// ErrNoActiveRange no existe rango activo para el tipo de documento solicitado.
	ErrNoActiveRange = errors.New("no hay rango de numeración activo")
)
