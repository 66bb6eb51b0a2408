package guarani

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
)

func TestCarreras(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/carreras" {
			t.Errorf("path inesperado: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":21,"nombre":"Ingeniería Electromecánica"},{"id":34,"nombre":"Enfermería"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	carreras, err := c.Carreras(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(carreras) != 2 || carreras[0].ID != 21 || carreras[1].Nombre != "Enfermería" {
		t.Fatalf("respuesta inesperada: %+v", carreras)
	}
}

func TestCarrerasUpstreamCaido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Carreras(context.Background())
	if !errors.Is(err, apperr.ErrUpstreamNoDisponible) {
		t.Fatalf("esperaba upstream no disponible, obtuve %v", err)
	}
}

func TestInscripcionesPara(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inscripciones/30123456" {
			t.Errorf("path inesperado: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"carreras":[21,34]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	carreras, err := c.InscripcionesPara(context.Background(), 30123456)
	if err != nil {
		t.Fatal(err)
	}
	if len(carreras) != 2 || carreras[0] != 21 {
		t.Fatalf("respuesta inesperada: %v", carreras)
	}
}

func TestInscripcionesPara404EsVacio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no existe", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	carreras, err := c.InscripcionesPara(context.Background(), 99999999)
	if err != nil {
		t.Fatalf("un 404 no es una falla: %v", err)
	}
	if len(carreras) != 0 {
		t.Fatalf("esperaba vacío, obtuve %v", carreras)
	}
}

func TestInscripcionesParaErrorDuro(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "en el horno", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.InscripcionesPara(context.Background(), 30123456)
	if !errors.Is(err, apperr.ErrUpstreamNoDisponible) {
		t.Fatalf("esperaba upstream no disponible, obtuve %v", err)
	}
}
