package export

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mlorenzatti/turnero-campus/internal/models"
)

func actividadDePrueba(nombre string) models.ActividadConEspacio {
	inicio := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	return models.ActividadConEspacio{
		Actividad: models.Actividad{
			ID: 1, Nombre: nombre, FechaHoraInicio: inicio, FechaHoraFin: inicio.Add(2 * time.Hour),
		},
		Espacio: models.EspacioResumen{Nombre: "Laboratorio 3", Edificio: models.EdificioResumen{Nombre: "Malvinas"}},
	}
}

func TestPlanillaAsistencia(t *testing.T) {
	checkIn := time.Date(2026, 9, 14, 10, 12, 0, 0, time.UTC)
	turnos := []models.TurnoConUsuario{
		{
			Turno:   models.Turno{ID: 1, EstuvoEnContacto: true, FechaCheckIn: &checkIn},
			Usuario: models.UsuarioResumen{Nombre: "Ana", Apellido: "García", DNI: 30111222},
		},
		{
			Turno:   models.Turno{ID: 2},
			Usuario: models.UsuarioResumen{Nombre: "Juan", Apellido: "Pérez", DNI: 28999000},
		},
	}

	f, err := PlanillaAsistencia(actividadDePrueba("Trámite de título"), turnos)
	if err != nil {
		t.Fatal(err)
	}

	hoja := f.GetSheetName(0)
	if hoja != "Trámite de título" {
		t.Fatalf("nombre de hoja inesperado: %q", hoja)
	}

	leer := func(celda string) string {
		t.Helper()
		v, err := f.GetCellValue(hoja, celda)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	if leer("A1") != "Apellido" || leer("E1") != "Check-in" {
		t.Errorf("encabezado inesperado: %q / %q", leer("A1"), leer("E1"))
	}
	if leer("A2") != "García" || leer("C2") != "30111222" {
		t.Errorf("primera fila inesperada: %q / %q", leer("A2"), leer("C2"))
	}
	if leer("D2") != "Sí" || leer("E2") != "2026-09-14 10:12" {
		t.Errorf("contacto y check-in: %q / %q", leer("D2"), leer("E2"))
	}
	if leer("D3") != "No" || leer("E3") != "" {
		t.Errorf("fila sin check-in: %q / %q", leer("D3"), leer("E3"))
	}
}

func TestPlanillaVacia(t *testing.T) {
	f, err := PlanillaAsistencia(actividadDePrueba("Mesa de examen"), nil)
	if err != nil {
		t.Fatal(err)
	}
	filas, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(filas) != 1 {
		t.Fatalf("esperaba sólo el encabezado, obtuve %d filas", len(filas))
	}
}

func TestNombreHoja(t *testing.T) {
	if nombreHoja("") != "Asistencia" {
		t.Error("una actividad sin nombre usa el nombre por defecto")
	}
	largo := strings.Repeat("a", 40)
	if len(nombreHoja(largo)) != 31 {
		t.Errorf("el nombre de hoja se recorta a 31: %d", len(nombreHoja(largo)))
	}
	// el corte es por runas: un nombre con tildes no puede quedar partido
	// en un byte a medias
	acentuado := nombreHoja(strings.Repeat("ñ", 40))
	if !utf8.ValidString(acentuado) {
		t.Fatalf("nombre de hoja con UTF-8 inválido: %q", acentuado)
	}
	if utf8.RuneCountInString(acentuado) != 31 {
		t.Errorf("esperaba 31 runas, obtuve %d", utf8.RuneCountInString(acentuado))
	}
}

func TestNombreArchivo(t *testing.T) {
	got := NombreArchivo(actividadDePrueba("Trámite de título"))
	want := "asistencia_trámite_de_título_2026-09-14.xlsx"
	if got != want {
		t.Errorf("nombre de archivo: %q, esperaba %q", got, want)
	}
}

func TestColName(t *testing.T) {
	casos := map[int]string{1: "A", 5: "E", 26: "Z", 27: "AA"}
	for n, want := range casos {
		if got := colName(n); got != want {
			t.Errorf("colName(%d) = %q, esperaba %q", n, got, want)
		}
	}
}
