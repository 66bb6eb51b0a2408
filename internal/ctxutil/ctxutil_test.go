package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestUsuarioID(t *testing.T) {
	ctx := context.Background()
	if _, ok := UsuarioID(ctx); ok {
		t.Fatal("un contexto sin usuario no devuelve id")
	}
	ctx = WithUsuarioID(ctx, 7)
	id, ok := UsuarioID(ctx)
	if !ok || id != 7 {
		t.Fatalf("esperaba 7, obtuve %d (ok=%v)", id, ok)
	}
}

func TestOp(t *testing.T) {
	ctx := WithOp(context.Background(), "POST /api/turnos")
	op, ok := Op(ctx)
	if !ok || op != "POST /api/turnos" {
		t.Fatalf("esperaba la operación, obtuve %q (ok=%v)", op, ok)
	}
}

func TestWithDBTimeoutRespetaDeadlineDelPadre(t *testing.T) {
	corto := 50 * time.Millisecond
	padre, cancel := context.WithTimeout(context.Background(), corto)
	defer cancel()

	ctx, cancel2 := WithDBTimeout(padre)
	defer cancel2()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("esperaba un deadline")
	}
	if time.Until(dl) > corto {
		t.Fatalf("el deadline no puede superar al del padre: %v", time.Until(dl))
	}
}

func TestWithDBTimeoutPorDefecto(t *testing.T) {
	ctx, cancel := WithDBTimeout(context.Background())
	defer cancel()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("esperaba un deadline")
	}
	restante := time.Until(dl)
	if restante <= 0 || restante > DefaultDBTimeout {
		t.Fatalf("deadline fuera del rango esperado: %v", restante)
	}
}
