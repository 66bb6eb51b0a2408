package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mlorenzatti/turnero-campus/internal/models"
	"github.com/mlorenzatti/turnero-campus/internal/observability"
)

type AlmacenInscripciones interface {
	UsuariosParaSincronizar(ctx context.Context, antesDe time.Time, limite int) ([]models.Usuario, error)
	ReemplazarInscripciones(ctx context.Context, usuarioID int64, carreras []int64) error
}

type FuenteInscripciones interface {
	InscripcionesPara(ctx context.Context, dni int64) ([]int64, error)
}

const tandaSync = 50

// SincronizarInscripciones copia las inscripciones de Guaraní a la base
// local, de a tandas, priorizando a quienes nunca se sincronizaron. La
// elegibilidad siempre se decide contra la copia local; este job es el que la
// mantiene fresca. Una falla por usuario se reporta y se sigue con el resto.
func SincronizarInscripciones(almacen AlmacenInscripciones, fuente FuenteInscripciones, frescura time.Duration, log *zap.SugaredLogger) Job {
	return func(ctx context.Context) error {
		usuarios, err := almacen.UsuariosParaSincronizar(ctx, time.Now().Add(-frescura), tandaSync)
		if err != nil {
			observability.CaptureErr(err)
			return err
		}

		var ultimoErr error
		for _, u := range usuarios {
			carreras, err := fuente.InscripcionesPara(ctx, u.DNI)
			if err != nil {
				log.Warnw("no se pudieron traer inscripciones de Guaraní",
					"usuario_id", u.ID, "error", err)
				observability.CaptureErr(err)
				ultimoErr = err
				continue
			}
			if err := almacen.ReemplazarInscripciones(ctx, u.ID, carreras); err != nil {
				log.Errorw("no se pudieron guardar las inscripciones",
					"usuario_id", u.ID, "error", err)
				observability.CaptureErr(err)
				ultimoErr = err
			}
		}
		return ultimoErr
	}
}
