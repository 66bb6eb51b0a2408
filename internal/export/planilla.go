// Package export arma la planilla de asistencia de una actividad: la lista
// que el bedel imprime en la puerta y la evidencia de contactos si la
// actividad requiere control.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mlorenzatti/turnero-campus/internal/models"
)

var encabezado = []string{"Apellido", "Nombre", "DNI", "Estuvo en contacto", "Check-in"}

// PlanillaAsistencia genera un workbook con una hoja por actividad.
func PlanillaAsistencia(actividad models.ActividadConEspacio, turnos []models.TurnoConUsuario) (*excelize.File, error) {
	f := excelize.NewFile()
	hoja := nombreHoja(actividad.Nombre)
	if err := f.SetSheetName("Sheet1", hoja); err != nil {
		return nil, fmt.Errorf("renombrando hoja: %w", err)
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range encabezado {
		celda := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(hoja, celda, h); err != nil {
			return nil, fmt.Errorf("celda %s: %w", celda, err)
		}
	}
	fin := colName(len(encabezado)) + "1"
	_ = f.SetCellStyle(hoja, "A1", fin, bold)
	_ = f.AutoFilter(hoja, "A1:"+fin, nil)

	for fila, t := range turnos {
		valores := []string{
			t.Usuario.Apellido,
			t.Usuario.Nombre,
			fmt.Sprintf("%d", t.Usuario.DNI),
			siNo(t.EstuvoEnContacto),
			horaCheckIn(t.FechaCheckIn),
		}
		for col, v := range valores {
			celda := fmt.Sprintf("%s%d", colName(col+1), fila+2)
			if err := f.SetCellStr(hoja, celda, v); err != nil {
				return nil, fmt.Errorf("celda %s: %w", celda, err)
			}
		}
	}

	// ancho heurístico por largo de encabezado y primeras filas
	for c := 1; c <= len(encabezado); c++ {
		maxim := len(encabezado[c-1])
		for r := 0; r < minim(50, len(turnos)); r++ {
			t := turnos[r]
			largo := len(t.Usuario.Apellido)
			if c == 2 {
				largo = len(t.Usuario.Nombre)
			}
			if largo > maxim {
				maxim = largo
			}
		}
		w := float64(maxim) * 0.9
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(hoja, colName(c), colName(c), w)
	}
	return f, nil
}

func NombreArchivo(actividad models.ActividadConEspacio) string {
	return fmt.Sprintf("asistencia_%s_%s.xlsx",
		strings.ReplaceAll(strings.ToLower(actividad.Nombre), " ", "_"),
		actividad.FechaHoraInicio.Format("2006-01-02"))
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func horaCheckIn(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// excelize limita los nombres de hoja a 31 caracteres. El corte es por
// runas: un byte a medias en un nombre con tildes rompe la hoja.
func nombreHoja(nombre string) string {
	if nombre == "" {
		return "Asistencia"
	}
	runas := []rune(nombre)
	if len(runas) > 31 {
		return string(runas[:31])
	}
	return nombre
}

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
