// Package turnos concentra las reglas de autorización sobre turnos: quién
// puede pedir uno, quién puede borrarlo y la transición de check-in.
package turnos

import (
	"context"

	"go.uber.org/zap"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/metrics"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

type Almacen interface {
	CrearTurno(ctx context.Context, t models.Turno) (int64, error)
	TurnoPorID(ctx context.Context, id int64) (*models.Turno, error)
	BorrarTurno(ctx context.Context, id int64) error
	ExisteTurno(ctx context.Context, usuarioID, actividadID int64) (bool, error)
	ContarTurnos(ctx context.Context, actividadID int64) (int, error)
	MarcarCheckIn(ctx context.Context, id int64) (*models.Turno, bool, error)
	ListarTurnosDeUsuario(ctx context.Context, usuarioID int64) ([]models.TurnoConActividad, error)
	ListarTurnosDeActividad(ctx context.Context, actividadID int64) ([]models.TurnoConUsuario, error)
}

type FuenteActividades interface {
	ActividadPorID(ctx context.Context, id int64) (*models.ActividadConEspacio, error)
}

type FuenteUsuarios interface {
	UsuarioPorID(ctx context.Context, id int64) (*models.Usuario, error)
	UsuarioPorDNI(ctx context.Context, dni int64) (*models.Usuario, error)
	CarrerasDeUsuario(ctx context.Context, usuarioID int64) ([]int64, error)
}

type Service struct {
	almacen     Almacen
	actividades FuenteActividades
	usuarios    FuenteUsuarios
	log         *zap.SugaredLogger
}

func New(almacen Almacen, actividades FuenteActividades, usuarios FuenteUsuarios, log *zap.SugaredLogger) *Service {
	return &Service{almacen: almacen, actividades: actividades, usuarios: usuarios, log: log}
}

// PuedePedirTurno: pública, o restringida a una carrera en la que el usuario
// está inscripto según la base local. Nunca consulta a Guaraní acá: la
// elegibilidad no depende de que el registral esté vivo.
func PuedePedirTurno(actividad models.Actividad, inscripciones []int64) bool {
	if actividad.EsPublica() {
		return true
	}
	for _, carreraID := range inscripciones {
		if carreraID == *actividad.RestriccionID {
			return true
		}
	}
	return false
}

type Accion string

const (
	AccionBorrar Accion = "borrar"
)

type Decision struct {
	Permitido bool
	Motivo    string
}

func permitir() Decision            { return Decision{Permitido: true} }
func denegar(motivo string) Decision { return Decision{Motivo: motivo} }

// Autorizar centraliza las reglas por acción sobre un turno ajeno o propio.
func Autorizar(actor models.Usuario, accion Accion, turno models.Turno) Decision {
	switch accion {
	case AccionBorrar:
		if actor.EsAdmin() || turno.UsuarioID == actor.ID {
			return permitir()
		}
		return denegar("el turno pertenece a otro usuario")
	default:
		return denegar("acción desconocida")
	}
}

// Crear corre los chequeos en orden y corta en el primero que falla:
// actividad existente, sin turno previo, elegibilidad, aforo.
func (s *Service) Crear(ctx context.Context, usuarioID, actividadID int64, estuvoEnContacto bool) (*models.Turno, error) {
	actividad, err := s.actividades.ActividadPorID(ctx, actividadID)
	if err != nil {
		return nil, err
	}

	yaTiene, err := s.almacen.ExisteTurno(ctx, usuarioID, actividadID)
	if err != nil {
		return nil, err
	}
	if yaTiene {
		metrics.TurnosRechazados.WithLabelValues("duplicado").Inc()
		return nil, apperr.Conflicto("el usuario ya tiene un turno para esta actividad")
	}

	inscripciones, err := s.usuarios.CarrerasDeUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if !PuedePedirTurno(actividad.Actividad, inscripciones) {
		metrics.TurnosRechazados.WithLabelValues("restriccion").Inc()
		return nil, apperr.Prohibido("El usuario no puede pedir turno para esta actividad")
	}

	if actividad.Espacio.Aforo > 0 {
		ocupados, err := s.almacen.ContarTurnos(ctx, actividadID)
		if err != nil {
			return nil, err
		}
		if ocupados >= actividad.Espacio.Aforo {
			metrics.TurnosRechazados.WithLabelValues("aforo").Inc()
			return nil, apperr.Prohibido("se alcanzó el aforo del espacio")
		}
	}

	id, err := s.almacen.CrearTurno(ctx, models.Turno{
		UsuarioID:        usuarioID,
		ActividadID:      actividadID,
		EstuvoEnContacto: estuvoEnContacto,
	})
	if err != nil {
		return nil, err
	}
	metrics.TurnosCreados.Inc()
	return &models.Turno{
		ID:               id,
		UsuarioID:        usuarioID,
		ActividadID:      actividadID,
		EstuvoEnContacto: estuvoEnContacto,
	}, nil
}

// Borrar chequea existencia antes que autorización: un turno inexistente es
// 404, pertenezca a quien pertenezca.
func (s *Service) Borrar(ctx context.Context, actorID, turnoID int64) error {
	turno, err := s.almacen.TurnoPorID(ctx, turnoID)
	if err != nil {
		return err
	}
	actor, err := s.usuarios.UsuarioPorID(ctx, actorID)
	if err != nil {
		return err
	}
	if d := Autorizar(*actor, AccionBorrar, *turno); !d.Permitido {
		return apperr.Prohibido("%s", d.Motivo)
	}
	return s.almacen.BorrarTurno(ctx, turnoID)
}

// RegistrarCheckIn marca la llegada. El segundo check-in sobre el mismo
// turno se rechaza: la transición es de una sola vía.
func (s *Service) RegistrarCheckIn(ctx context.Context, turnoID int64) (*models.Turno, error) {
	turno, marcado, err := s.almacen.MarcarCheckIn(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	if marcado {
		return turno, nil
	}
	// No se marcó: o no existe, o ya tenía check-in.
	if _, err := s.almacen.TurnoPorID(ctx, turnoID); err != nil {
		return nil, err
	}
	return nil, apperr.Validacion("el turno ya tiene el check-in registrado")
}

func (s *Service) PorID(ctx context.Context, id int64) (*models.Turno, error) {
	return s.almacen.TurnoPorID(ctx, id)
}

func (s *Service) DeUsuario(ctx context.Context, usuarioID int64) ([]models.TurnoConActividad, error) {
	return s.almacen.ListarTurnosDeUsuario(ctx, usuarioID)
}

// DeUsuarioPorDNI es la búsqueda de mostrador: el bedel pide el documento y
// ve los turnos de esa persona.
func (s *Service) DeUsuarioPorDNI(ctx context.Context, dni int64) (*models.Usuario, []models.TurnoConActividad, error) {
	usuario, err := s.usuarios.UsuarioPorDNI(ctx, dni)
	if err != nil {
		return nil, nil, err
	}
	lista, err := s.almacen.ListarTurnosDeUsuario(ctx, usuario.ID)
	if err != nil {
		return nil, nil, err
	}
	return usuario, lista, nil
}

func (s *Service) DeActividad(ctx context.Context, actividadID int64) ([]models.TurnoConUsuario, error) {
	return s.almacen.ListarTurnosDeActividad(ctx, actividadID)
}
