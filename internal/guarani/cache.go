package guarani

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mlorenzatti/turnero-campus/internal/metrics"
	"github.com/mlorenzatti/turnero-campus/internal/models"
	"github.com/mlorenzatti/turnero-campus/internal/observability"
)

// FuenteCarreras es lo único que el cache necesita del cliente.
type FuenteCarreras interface {
	Carreras(ctx context.Context) ([]models.Carrera, error)
}

// CacheCarreras envuelve la llamada "todas las carreras" con un TTL.
// Lecturas concurrentes con cache frío se fusionan en un único pedido
// upstream (singleflight). Si el refresco falla y hay un valor anterior, se
// sirve el valor viejo; la falla se reporta a Sentry y no envenena los
// próximos intentos.
type CacheCarreras struct {
	fuente FuenteCarreras
	ttl    time.Duration
	ahora  func() time.Time
	log    *zap.SugaredLogger

	grupo singleflight.Group

	mu      sync.RWMutex
	valor   []models.Carrera
	vence   time.Time
	cargado bool
}

func NewCacheCarreras(fuente FuenteCarreras, ttl time.Duration, log *zap.SugaredLogger) *CacheCarreras {
	return &CacheCarreras{
		fuente: fuente,
		ttl:    ttl,
		ahora:  time.Now,
		log:    log,
	}
}

// Todas devuelve el catálogo ordenado por nombre (case-fold).
func (c *CacheCarreras) Todas(ctx context.Context) ([]models.Carrera, error) {
	if carreras, ok := c.vigente(); ok {
		return carreras, nil
	}

	// Una sola clave: hay una sola lista. Los que llegan durante un refresco
	// en vuelo se cuelgan del mismo resultado.
	v, err, _ := c.grupo.Do("carreras", func() (any, error) {
		if carreras, ok := c.vigente(); ok {
			return carreras, nil
		}
		carreras, err := c.fuente.Carreras(ctx)
		if err != nil {
			metrics.GuaraniErrores.Inc()
			observability.CaptureErr(err)
			c.log.Warnw("falló el refresco de carreras contra Guaraní", "error", err)

			// Valor viejo antes que nada: el vencimiento queda como está,
			// así el próximo llamador vuelve a intentar el refresco.
			c.mu.RLock()
			defer c.mu.RUnlock()
			if c.cargado {
				metrics.CarrerasServidasStale.Inc()
				return c.valor, nil
			}
			return nil, err
		}

		sort.Slice(carreras, func(i, j int) bool {
			return strings.ToLower(carreras[i].Nombre) < strings.ToLower(carreras[j].Nombre)
		})

		c.mu.Lock()
		c.valor = carreras
		c.vence = c.ahora().Add(c.ttl)
		c.cargado = true
		c.mu.Unlock()
		metrics.CarrerasRefrescos.Inc()
		return carreras, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Carrera), nil
}

// PorID busca sobre la lista cacheada; nunca pega a Guaraní por un id suelto.
// Un id desconocido es (nil, nil): "no existe", no una falla.
func (c *CacheCarreras) PorID(ctx context.Context, id int64) (*models.Carrera, error) {
	carreras, err := c.Todas(ctx)
	if err != nil {
		return nil, err
	}
	for _, carrera := range carreras {
		if carrera.ID == id {
			return &carrera, nil
		}
	}
	return nil, nil
}

func (c *CacheCarreras) vigente() ([]models.Carrera, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cargado && c.ahora().Before(c.vence) {
		return c.valor, true
	}
	return nil, false
}
