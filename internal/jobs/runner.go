// Package jobs corre las tareas periódicas del turnero. Cada job es una
// función con contexto; el runner las repite a intervalo fijo y publica
// corridas, errores y duración en prometheus.
package jobs

import (
	"context"
	"time"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

// Every lanza el job en su propia goroutine. Corre una vez al arrancar y
// después en cada tick; termina cuando el contexto del runner se cancela.
func (r *Runner) Every(intervalo time.Duration, nombre string, fn Job) {
	go func() {
		r.correr(nombre, fn)
		t := time.NewTicker(intervalo)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.correr(nombre, fn)
			}
		}
	}()
}

func (r *Runner) correr(nombre string, fn Job) {
	inicio := time.Now()
	if err := fn(r.ctx); err != nil {
		jobErrores.WithLabelValues(nombre).Inc()
	}
	jobCorridas.WithLabelValues(nombre).Inc()
	jobDuracion.WithLabelValues(nombre).Observe(time.Since(inicio).Seconds())
}
