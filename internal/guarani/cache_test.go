package guarani

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mlorenzatti/turnero-campus/internal/models"
)

type fuenteFake struct {
	llamadas int32
	listo    chan struct{} // si no es nil, espera antes de contestar
	valor    []models.Carrera
	err      error
}

func (f *fuenteFake) Carreras(ctx context.Context) ([]models.Carrera, error) {
	atomic.AddInt32(&f.llamadas, 1)
	if f.listo != nil {
		<-f.listo
	}
	return f.valor, f.err
}

func unasCarreras() []models.Carrera {
	return []models.Carrera{
		{ID: 34, Nombre: "enfermería"},
		{ID: 21, Nombre: "Ingeniería Electromecánica"},
		{ID: 7, Nombre: "Biotecnología"},
	}
}

func cacheDePrueba(f *fuenteFake, ttl time.Duration) *CacheCarreras {
	return NewCacheCarreras(f, ttl, zap.NewNop().Sugar())
}

func TestTodasOrdenaPorNombreCaseFold(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras()}
	c := cacheDePrueba(f, time.Hour)

	carreras, err := c.Todas(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if carreras[0].Nombre != "Biotecnología" || carreras[1].Nombre != "enfermería" {
		t.Fatalf("orden inesperado: %+v", carreras)
	}
}

func TestTodasDentroDelTTLNoVuelveUpstream(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras()}
	c := cacheDePrueba(f, time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := c.Todas(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&f.llamadas); n != 1 {
		t.Fatalf("esperaba 1 llamada upstream, hubo %d", n)
	}
}

func TestTodasRefrescaAlVencer(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras()}
	c := cacheDePrueba(f, time.Hour)

	reloj := time.Now()
	c.ahora = func() time.Time { return reloj }

	if _, err := c.Todas(context.Background()); err != nil {
		t.Fatal(err)
	}
	reloj = reloj.Add(2 * time.Hour)
	if _, err := c.Todas(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&f.llamadas); n != 2 {
		t.Fatalf("esperaba refresco al vencer, llamadas = %d", n)
	}
}

func TestLecturasFriasConcurrentesSeFusionan(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras(), listo: make(chan struct{})}
	c := cacheDePrueba(f, time.Hour)

	const lectores = 8
	var wg sync.WaitGroup
	errs := make([]error, lectores)
	for i := 0; i < lectores; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Todas(context.Background())
		}(i)
	}

	// dejamos que todos lleguen al cache frío antes de liberar el upstream
	time.Sleep(50 * time.Millisecond)
	close(f.listo)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("lector %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&f.llamadas); n != 1 {
		t.Fatalf("esperaba exactamente 1 pedido upstream, hubo %d", n)
	}
}

func TestFallaUpstreamSirveValorViejo(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras()}
	c := cacheDePrueba(f, time.Hour)

	reloj := time.Now()
	c.ahora = func() time.Time { return reloj }

	if _, err := c.Todas(context.Background()); err != nil {
		t.Fatal(err)
	}

	reloj = reloj.Add(2 * time.Hour)
	f.err = errors.New("guaraní en el horno")

	carreras, err := c.Todas(context.Background())
	if err != nil {
		t.Fatalf("con valor previo la falla no se propaga: %v", err)
	}
	if len(carreras) != 3 {
		t.Fatalf("esperaba el valor viejo, obtuve %+v", carreras)
	}

	// la falla no envenena: el próximo llamador reintenta upstream
	f.err = nil
	if _, err := c.Todas(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&f.llamadas); n != 3 {
		t.Fatalf("esperaba reintento tras la falla, llamadas = %d", n)
	}
}

func TestFallaUpstreamConCacheFrioEsError(t *testing.T) {
	f := &fuenteFake{err: errors.New("timeout")}
	c := cacheDePrueba(f, time.Hour)

	if _, err := c.Todas(context.Background()); err == nil {
		t.Fatal("sin valor previo la falla se propaga")
	}
}

func TestPorID(t *testing.T) {
	f := &fuenteFake{valor: unasCarreras()}
	c := cacheDePrueba(f, time.Hour)

	carrera, err := c.PorID(context.Background(), 21)
	if err != nil {
		t.Fatal(err)
	}
	if carrera == nil || carrera.Nombre != "Ingeniería Electromecánica" {
		t.Fatalf("carrera inesperada: %+v", carrera)
	}

	desconocida, err := c.PorID(context.Background(), 999)
	if err != nil {
		t.Fatal(err)
	}
	if desconocida != nil {
		t.Fatalf("un id desconocido es (nil, nil), obtuve %+v", desconocida)
	}

	// PorID nunca dispara un pedido por id suelto
	if n := atomic.LoadInt32(&f.llamadas); n != 1 {
		t.Fatalf("llamadas upstream: %d", n)
	}
}
