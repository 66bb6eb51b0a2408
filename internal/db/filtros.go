package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// FiltroActividades: todos los campos son opcionales y se combinan con AND.
// Desde/Hasta son fechas calendario; se expanden al inicio y fin del día en
// la zona horaria configurada.
type FiltroActividades struct {
	Desde            *time.Time
	Hasta            *time.Time
	IncluirInactivas bool
	// CarrerasVisibles: nil ⇒ sin filtro; no-nil ⇒ pasan las actividades
	// públicas o cuya restricción esté en el conjunto.
	CarrerasVisibles []int64
}

// condicion aporta un fragmento de WHERE. idx es el número del próximo
// placeholder posicional; devuelve el fragmento y sus argumentos.
type condicion func(idx int) (string, []any)

func (f FiltroActividades) condiciones(loc *time.Location) []condicion {
	return []condicion{
		f.condicionFecha(loc),
		f.condicionActivas(),
		f.condicionVisibilidad(),
	}
}

func (f FiltroActividades) condicionFecha(loc *time.Location) condicion {
	return func(idx int) (string, []any) {
		switch {
		case f.Desde != nil && f.Hasta != nil:
			return fmt.Sprintf("a.fecha_hora_inicio BETWEEN $%d AND $%d", idx, idx+1),
				[]any{inicioDelDia(*f.Desde, loc), finDelDia(*f.Hasta, loc)}
		case f.Desde != nil:
			return fmt.Sprintf("a.fecha_hora_inicio >= $%d", idx),
				[]any{inicioDelDia(*f.Desde, loc)}
		case f.Hasta != nil:
			return fmt.Sprintf("a.fecha_hora_inicio <= $%d", idx),
				[]any{finDelDia(*f.Hasta, loc)}
		}
		return "", nil
	}
}

func (f FiltroActividades) condicionActivas() condicion {
	return func(int) (string, []any) {
		if f.IncluirInactivas {
			return "", nil
		}
		return "a.activa", nil
	}
}

func (f FiltroActividades) condicionVisibilidad() condicion {
	return func(idx int) (string, []any) {
		if f.CarrerasVisibles == nil {
			return "", nil
		}
		return fmt.Sprintf("(a.restriccion_id IS NULL OR a.restriccion_id = ANY($%d::bigint[]))", idx),
			[]any{pq.Array(f.CarrerasVisibles)}
	}
}

// where arma la cláusula completa (o "" si no hay filtros activos).
func (f FiltroActividades) where(loc *time.Location) (string, []any) {
	var frags []string
	var args []any
	idx := 1
	for _, c := range f.condiciones(loc) {
		frag, fargs := c(idx)
		if frag == "" {
			continue
		}
		frags = append(frags, frag)
		args = append(args, fargs...)
		idx += len(fargs)
	}
	if len(frags) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(frags, " AND "), args
}

func inicioDelDia(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func finDelDia(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
}
