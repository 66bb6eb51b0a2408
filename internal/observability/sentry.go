// Package observability concentra el reporte de errores a Sentry. Cumple el
// rol que Rollbar cumplía en la versión anterior del turnero: los errores de
// Guaraní y de los jobs de fondo se reportan sin frenar la operación.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry devuelve la función de flush para diferir en main. Sin DSN el
// reporte queda deshabilitado y todo es un no-op.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr reporta sin bloquear al llamador; con DSN vacío es un no-op.
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}
