package ctxutil

import (
	"context"
	"time"
)

// claves privadas para evitar colisiones
type key int

const (
	keyUsuarioID key = iota
	keyOpName
)

// WithUsuarioID / UsuarioID — id del usuario autenticado, puesto por la capa externa.
func WithUsuarioID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, keyUsuarioID, id)
}

func UsuarioID(ctx context.Context) (int64, bool) {
	v := ctx.Value(keyUsuarioID)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// WithOp / Op — nombre de la operación (para logs).
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

var DefaultDBTimeout = 5 * time.Second

// WithDBTimeout — timeout estándar para la base; respeta el deadline del padre
// si es más corto.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
