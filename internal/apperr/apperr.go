package apperr

import (
	"errors"
	"fmt"
)

// Errores centinela del dominio. El adaptador HTTP los traduce a códigos de
// estado: 404, 400, 403 y 503 respectivamente.
var (
	ErrNoEncontrado         = errors.New("no encontrado")
	ErrValidacion           = errors.New("validación fallida")
	ErrProhibido            = errors.New("operación prohibida")
	ErrUpstreamNoDisponible = errors.New("servicio externo no disponible")
)

// ErrConflicto es una violación de unicidad: para la taxonomía es una
// validación fallida, pero la capa HTTP lo distingue (409 en vez de 400).
var ErrConflicto = fmt.Errorf("%w: conflicto", ErrValidacion)

func Conflicto(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflicto, fmt.Sprintf(format, args...))
}

func NoEncontrado(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoEncontrado, fmt.Sprintf(format, args...))
}

func Validacion(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidacion, fmt.Sprintf(format, args...))
}

func Prohibido(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProhibido, fmt.Sprintf(format, args...))
}

func Upstream(causa error) error {
	return fmt.Errorf("%w: %v", ErrUpstreamNoDisponible, causa)
}
