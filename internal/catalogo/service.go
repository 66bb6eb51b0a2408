// Package catalogo arma las consultas del catálogo de actividades y valida
// las mutaciones administrativas (espacio existente, restricción válida).
package catalogo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/db"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

type Almacen interface {
	ListarActividades(ctx context.Context, f db.FiltroActividades) ([]models.ActividadConTurnos, error)
	ActividadPorID(ctx context.Context, id int64) (*models.ActividadConEspacio, error)
	CrearActividad(ctx context.Context, a models.Actividad) (int64, error)
	ActualizarActividad(ctx context.Context, a models.Actividad) error
	BorrarActividad(ctx context.Context, id int64) error

	ListarEdificios(ctx context.Context) ([]models.Edificio, error)
	EdificioPorID(ctx context.Context, id int64) (*models.Edificio, error)
	CrearEdificio(ctx context.Context, e models.Edificio) (int64, error)
	BorrarEdificio(ctx context.Context, id int64) error

	ListarEspacios(ctx context.Context, edificioID *int64) ([]models.Espacio, error)
	EspacioPorID(ctx context.Context, id int64) (*models.Espacio, error)
	CrearEspacio(ctx context.Context, e models.Espacio) (int64, error)
	ActualizarEspacio(ctx context.Context, e models.Espacio) error
	BorrarEspacio(ctx context.Context, id int64) error

	UsuarioPorID(ctx context.Context, id int64) (*models.Usuario, error)
	CarrerasDeUsuario(ctx context.Context, usuarioID int64) ([]int64, error)
}

type Carreras interface {
	Todas(ctx context.Context) ([]models.Carrera, error)
	PorID(ctx context.Context, id int64) (*models.Carrera, error)
}

type Service struct {
	almacen  Almacen
	carreras Carreras
	log      *zap.SugaredLogger
}

func New(almacen Almacen, carreras Carreras, log *zap.SugaredLogger) *Service {
	return &Service{almacen: almacen, carreras: carreras, log: log}
}

func (s *Service) Listar(ctx context.Context, f db.FiltroActividades) ([]models.ActividadConTurnos, error) {
	return s.almacen.ListarActividades(ctx, f)
}

// ListarParaUsuario aplica la visibilidad por rol: un asistente ve las
// actividades públicas más las restringidas a sus carreras; bedel y admin
// ven todo.
func (s *Service) ListarParaUsuario(ctx context.Context, usuario models.Usuario, f db.FiltroActividades) ([]models.ActividadConTurnos, error) {
	if usuario.Rol == models.Asistente {
		carreras, err := s.almacen.CarrerasDeUsuario(ctx, usuario.ID)
		if err != nil {
			return nil, err
		}
		if carreras == nil {
			carreras = []int64{}
		}
		f.CarrerasVisibles = carreras
	}
	return s.almacen.ListarActividades(ctx, f)
}

// ListarParaActor resuelve el usuario y delega en ListarParaUsuario.
func (s *Service) ListarParaActor(ctx context.Context, actorID int64, f db.FiltroActividades) ([]models.ActividadConTurnos, error) {
	usuario, err := s.almacen.UsuarioPorID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.ListarParaUsuario(ctx, *usuario, f)
}

func (s *Service) PorID(ctx context.Context, id int64) (*models.ActividadConEspacio, error) {
	return s.almacen.ActividadPorID(ctx, id)
}

// Crear valida y persiste. Si la restricción apunta a una carrera que
// Guaraní no conoce (o Guaraní está caído), la restricción se descarta y la
// actividad queda pública; se devuelve la advertencia en vez de fallar.
func (s *Service) Crear(ctx context.Context, a models.Actividad) (*models.Actividad, string, error) {
	if err := s.validarBase(ctx, a); err != nil {
		return nil, "", err
	}
	a, advertencia := s.validarRestriccion(ctx, a)

	id, err := s.almacen.CrearActividad(ctx, a)
	if err != nil {
		return nil, "", err
	}
	a.ID = id
	return &a, advertencia, nil
}

func (s *Service) Actualizar(ctx context.Context, a models.Actividad) (*models.Actividad, string, error) {
	if _, err := s.almacen.ActividadPorID(ctx, a.ID); err != nil {
		return nil, "", err
	}
	if err := s.validarBase(ctx, a); err != nil {
		return nil, "", err
	}
	a, advertencia := s.validarRestriccion(ctx, a)

	if err := s.almacen.ActualizarActividad(ctx, a); err != nil {
		return nil, "", err
	}
	return &a, advertencia, nil
}

func (s *Service) Borrar(ctx context.Context, id int64) error {
	return s.almacen.BorrarActividad(ctx, id)
}

// ListarCarreras expone el catálogo cacheado para la pantalla de asignación
// de restricciones.
func (s *Service) ListarCarreras(ctx context.Context) ([]models.Carrera, error) {
	return s.carreras.Todas(ctx)
}

func (s *Service) ListarEdificios(ctx context.Context) ([]models.Edificio, error) {
	return s.almacen.ListarEdificios(ctx)
}

func (s *Service) EdificioPorID(ctx context.Context, id int64) (*models.Edificio, error) {
	return s.almacen.EdificioPorID(ctx, id)
}

func (s *Service) CrearEdificio(ctx context.Context, e models.Edificio) (*models.Edificio, error) {
	if e.Nombre == "" {
		return nil, apperr.Validacion("el edificio necesita un nombre")
	}
	id, err := s.almacen.CrearEdificio(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

func (s *Service) BorrarEdificio(ctx context.Context, id int64) error {
	return s.almacen.BorrarEdificio(ctx, id)
}

// ListarEspacios filtra por edificio cuando se pide; con nil lista todos.
func (s *Service) ListarEspacios(ctx context.Context, edificioID *int64) ([]models.Espacio, error) {
	return s.almacen.ListarEspacios(ctx, edificioID)
}

func (s *Service) CrearEspacio(ctx context.Context, e models.Espacio) (*models.Espacio, error) {
	if err := s.validarEspacio(ctx, e); err != nil {
		return nil, err
	}
	id, err := s.almacen.CrearEspacio(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

func (s *Service) ActualizarEspacio(ctx context.Context, e models.Espacio) (*models.Espacio, error) {
	if _, err := s.almacen.EspacioPorID(ctx, e.ID); err != nil {
		return nil, err
	}
	if err := s.validarEspacio(ctx, e); err != nil {
		return nil, err
	}
	if err := s.almacen.ActualizarEspacio(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Service) BorrarEspacio(ctx context.Context, id int64) error {
	return s.almacen.BorrarEspacio(ctx, id)
}

func (s *Service) validarEspacio(ctx context.Context, e models.Espacio) error {
	if e.Nombre == "" {
		return apperr.Validacion("el espacio necesita un nombre")
	}
	if e.Aforo < 0 {
		return apperr.Validacion("el aforo no puede ser negativo")
	}
	if _, err := s.almacen.EdificioPorID(ctx, e.EdificioID); err != nil {
		return apperr.Validacion("no existe un edificio con el id %d", e.EdificioID)
	}
	return nil
}

func (s *Service) validarBase(ctx context.Context, a models.Actividad) error {
	if a.Nombre == "" {
		return apperr.Validacion("la actividad necesita un nombre")
	}
	if !a.FechaHoraInicio.Before(a.FechaHoraFin) {
		return apperr.Validacion("la fecha de inicio debe ser anterior a la de fin")
	}
	if _, err := s.almacen.EspacioPorID(ctx, a.EspacioID); err != nil {
		return apperr.Validacion("no existe un espacio con el id %d", a.EspacioID)
	}
	return nil
}

// validarRestriccion devuelve la actividad posiblemente corregida más una
// advertencia. La restricción referencia un catálogo externo que puede estar
// desactualizado: preferimos disponibilidad a rechazar la creación.
func (s *Service) validarRestriccion(ctx context.Context, a models.Actividad) (models.Actividad, string) {
	if a.RestriccionID == nil {
		return a, ""
	}
	carrera, err := s.carreras.PorID(ctx, *a.RestriccionID)
	if err != nil {
		advertencia := fmt.Sprintf(
			"no se pudo validar la carrera %d contra Guaraní; la actividad queda pública", *a.RestriccionID)
		s.log.Warnw("restricción descartada por falla de Guaraní",
			"carrera_id", *a.RestriccionID, "error", err)
		a.RestriccionID = nil
		return a, advertencia
	}
	if carrera == nil {
		advertencia := fmt.Sprintf(
			"no existe una carrera con el id %d; la actividad queda pública", *a.RestriccionID)
		s.log.Warnw("restricción descartada por carrera inexistente",
			"carrera_id", *a.RestriccionID)
		a.RestriccionID = nil
		return a, advertencia
	}
	return a, ""
}
