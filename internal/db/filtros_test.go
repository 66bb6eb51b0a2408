package db

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func fecha(t *testing.T, s string) *time.Time {
	t.Helper()
	f, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	return &f
}

func TestFiltroVacio(t *testing.T) {
	f := FiltroActividades{IncluirInactivas: true}
	where, args := f.where(time.UTC)
	if where != "" || args != nil {
		t.Fatalf("esperaba cláusula vacía, obtuve %q con %v", where, args)
	}
}

func TestFiltroPorDefectoExcluyeInactivas(t *testing.T) {
	f := FiltroActividades{}
	where, args := f.where(time.UTC)
	if where != " WHERE a.activa" {
		t.Fatalf("cláusula inesperada: %q", where)
	}
	if len(args) != 0 {
		t.Fatalf("no esperaba argumentos, obtuve %v", args)
	}
}

func TestFiltroRangoCompleto(t *testing.T) {
	f := FiltroActividades{
		Desde:            fecha(t, "2021-03-01"),
		Hasta:            fecha(t, "2021-03-05"),
		IncluirInactivas: true,
	}
	where, args := f.where(time.UTC)
	if where != " WHERE a.fecha_hora_inicio BETWEEN $1 AND $2" {
		t.Fatalf("cláusula inesperada: %q", where)
	}
	inicio := args[0].(time.Time)
	fin := args[1].(time.Time)
	if inicio.Hour() != 0 || inicio.Minute() != 0 || inicio.Second() != 0 {
		t.Fatalf("el límite inferior no es inicio de día: %v", inicio)
	}
	if fin.Hour() != 23 || fin.Minute() != 59 || fin.Second() != 59 {
		t.Fatalf("el límite superior no es fin de día: %v", fin)
	}
	if fin.Day() != 5 {
		t.Fatalf("día del límite superior: %v", fin)
	}
}

func TestFiltroSoloDesde(t *testing.T) {
	f := FiltroActividades{Desde: fecha(t, "2021-03-01"), IncluirInactivas: true}
	where, args := f.where(time.UTC)
	if where != " WHERE a.fecha_hora_inicio >= $1" {
		t.Fatalf("cláusula inesperada: %q", where)
	}
	if len(args) != 1 {
		t.Fatalf("argumentos: %v", args)
	}
}

func TestFiltroSoloHasta(t *testing.T) {
	f := FiltroActividades{Hasta: fecha(t, "2021-03-05"), IncluirInactivas: true}
	where, _ := f.where(time.UTC)
	if where != " WHERE a.fecha_hora_inicio <= $1" {
		t.Fatalf("cláusula inesperada: %q", where)
	}
}

func TestFiltroVisibilidad(t *testing.T) {
	f := FiltroActividades{
		IncluirInactivas: true,
		CarrerasVisibles: []int64{21, 34},
	}
	where, args := f.where(time.UTC)
	quiero := " WHERE (a.restriccion_id IS NULL OR a.restriccion_id = ANY($1::bigint[]))"
	if where != quiero {
		t.Fatalf("cláusula inesperada: %q", where)
	}
	if len(args) != 1 {
		t.Fatalf("argumentos: %v", args)
	}
}

func TestFiltroVisibilidadVacia(t *testing.T) {
	// conjunto vacío no es lo mismo que sin filtro: sólo pasan las públicas
	f := FiltroActividades{IncluirInactivas: true, CarrerasVisibles: []int64{}}
	where, _ := f.where(time.UTC)
	if !strings.Contains(where, "restriccion_id IS NULL") {
		t.Fatalf("cláusula inesperada: %q", where)
	}
}

func TestFiltroCombinadoNumeraPlaceholders(t *testing.T) {
	f := FiltroActividades{
		Desde:            fecha(t, "2021-03-01"),
		Hasta:            fecha(t, "2021-03-05"),
		CarrerasVisibles: []int64{7},
	}
	where, args := f.where(time.UTC)
	quiero := " WHERE a.fecha_hora_inicio BETWEEN $1 AND $2" +
		" AND a.activa" +
		" AND (a.restriccion_id IS NULL OR a.restriccion_id = ANY($3::bigint[]))"
	if where != quiero {
		t.Fatalf("cláusula inesperada:\n  got  %q\n  want %q", where, quiero)
	}
	if len(args) != 3 {
		t.Fatalf("esperaba 3 argumentos, obtuve %d", len(args))
	}
}

func TestInicioYFinDelDiaRespetanZona(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Skip("tzdata no disponible")
	}
	d := time.Date(2021, 3, 1, 15, 30, 0, 0, time.UTC)
	inicio := inicioDelDia(d, loc)
	if !reflect.DeepEqual(inicio, time.Date(2021, 3, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("inicio del día: %v", inicio)
	}
	fin := finDelDia(d, loc)
	if fin.Hour() != 23 || fin.Location() != loc {
		t.Fatalf("fin del día: %v", fin)
	}
}
