package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnosCreados = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "turnero", Name: "turnos_creados_total", Help: "Turnos otorgados",
	})
	TurnosRechazados = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "turnero", Name: "turnos_rechazados_total", Help: "Pedidos de turno rechazados",
	}, []string{"motivo"})
	GuaraniErrores = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "turnero", Name: "guarani_errores_total", Help: "Fallas contra la API de Guaraní",
	})
	CarrerasRefrescos = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "turnero", Name: "carreras_refrescos_total", Help: "Refrescos del cache de carreras",
	})
	CarrerasServidasStale = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "turnero", Name: "carreras_stale_total", Help: "Lecturas servidas con cache vencido por falla upstream",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "turnero", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(TurnosCreados, TurnosRechazados, GuaraniErrores,
		CarrerasRefrescos, CarrerasServidasStale, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
