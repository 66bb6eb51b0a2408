package jobs

import "github.com/prometheus/client_golang/prometheus"

var (
	jobCorridas = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turnero_job_corridas_total",
			Help: "Corridas de jobs de fondo",
		},
		[]string{"job"},
	)

	jobErrores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turnero_job_errores_total",
			Help: "Corridas de jobs terminadas en error",
		},
		[]string{"job"},
	)

	jobDuracion = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turnero_job_duracion_segundos",
			Help:    "Duración de cada corrida en segundos",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobCorridas, jobErrores, jobDuracion)
}
