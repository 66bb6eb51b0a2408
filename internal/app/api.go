package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/catalogo"
	"github.com/mlorenzatti/turnero-campus/internal/ctxutil"
	"github.com/mlorenzatti/turnero-campus/internal/db"
	"github.com/mlorenzatti/turnero-campus/internal/export"
	"github.com/mlorenzatti/turnero-campus/internal/models"
	"github.com/mlorenzatti/turnero-campus/internal/turnos"
)

// API es el adaptador fino entre HTTP y los servicios de dominio. La
// autenticación vive afuera: se asume que un middleware previo validó la
// sesión y dejó el id del actor en la cabecera X-Usuario-Id.
type API struct {
	catalogo *catalogo.Service
	turnos   *turnos.Service
	loc      *time.Location
	log      *zap.SugaredLogger
}

func NewAPI(cat *catalogo.Service, tur *turnos.Service, loc *time.Location, log *zap.SugaredLogger) *API {
	return &API{catalogo: cat, turnos: tur, loc: loc, log: log}
}

func (a *API) Mount(mux *http.ServeMux) {
	rutas := map[string]http.HandlerFunc{
		"GET /api/actividades":               a.listarActividades,
		"GET /api/actividades/{id}":          a.actividadPorID,
		"POST /api/actividades":              a.crearActividad,
		"PUT /api/actividades/{id}":          a.actualizarActividad,
		"DELETE /api/actividades/{id}":       a.borrarActividad,
		"GET /api/actividades/{id}/planilla": a.planillaActividad,
		"GET /api/carreras":                  a.listarCarreras,
		"GET /api/edificios":                 a.listarEdificios,
		"GET /api/edificios/{id}":            a.edificioPorID,
		"POST /api/edificios":                a.crearEdificio,
		"DELETE /api/edificios/{id}":         a.borrarEdificio,
		"GET /api/espacios":                  a.listarEspacios,
		"POST /api/espacios":                 a.crearEspacio,
		"PUT /api/espacios/{id}":             a.actualizarEspacio,
		"DELETE /api/espacios/{id}":          a.borrarEspacio,
		"POST /api/turnos":                   a.crearTurno,
		"GET /api/turnos/{id}":               a.turnoPorID,
		"DELETE /api/turnos/{id}":            a.borrarTurno,
		"POST /api/turnos/{id}/checkin":      a.checkIn,
		"GET /api/usuarios/{id}/turnos":      a.turnosDeUsuario,
		"GET /api/usuarios/dni/{dni}":        a.usuarioPorDNI,
	}
	for patron, h := range rutas {
		mux.HandleFunc(patron, a.operacion(patron, h))
	}
}

// operacion prepara el contexto de cada request: timeout estándar de base,
// nombre de la operación para los logs y el id del actor si vino en la
// cabecera.
func (a *API) operacion(nombre string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := ctxutil.WithDBTimeout(r.Context())
		defer cancel()
		ctx = ctxutil.WithOp(ctx, nombre)
		if id, err := strconv.ParseInt(r.Header.Get("X-Usuario-Id"), 10, 64); err == nil {
			ctx = ctxutil.WithUsuarioID(ctx, id)
		}
		h(w, r.WithContext(ctx))
	}
}

func (a *API) listarActividades(w http.ResponseWriter, r *http.Request) {
	var f db.FiltroActividades
	q := r.URL.Query()
	if v := q.Get("desde"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, a.loc)
		if err != nil {
			a.errorJSON(w, r, apperr.Validacion("desde: fecha inválida %q", v))
			return
		}
		f.Desde = &t
	}
	if v := q.Get("hasta"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, a.loc)
		if err != nil {
			a.errorJSON(w, r, apperr.Validacion("hasta: fecha inválida %q", v))
			return
		}
		f.Hasta = &t
	}
	f.IncluirInactivas = q.Get("inactivas") == "true"

	// con actor identificado la visibilidad depende de su rol; una consulta
	// anónima ve el catálogo completo (la pantalla pública de difusión)
	var data []models.ActividadConTurnos
	var err error
	if actorID, ok := ctxutil.UsuarioID(r.Context()); ok {
		data, err = a.catalogo.ListarParaActor(r.Context(), actorID, f)
	} else {
		data, err = a.catalogo.Listar(r.Context(), f)
	}
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) actividadPorID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	data, err := a.catalogo.PorID(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

type actividadPayload struct {
	EspacioID          int64     `json:"espacioId"`
	Nombre             string    `json:"nombre"`
	FechaHoraInicio    time.Time `json:"fechaHoraInicio"`
	FechaHoraFin       time.Time `json:"fechaHoraFin"`
	Responsable        string    `json:"responsable"`
	TelefonoDeContacto string    `json:"telefonoDeContactoResponsable"`
	Activa             *bool     `json:"activa"`
	RequiereControl    bool      `json:"requiereControl"`
	RestriccionID      *int64    `json:"restriccionId"`
}

func (p actividadPayload) aModelo() models.Actividad {
	activa := true
	if p.Activa != nil {
		activa = *p.Activa
	}
	return models.Actividad{
		EspacioID:          p.EspacioID,
		Nombre:             p.Nombre,
		FechaHoraInicio:    p.FechaHoraInicio,
		FechaHoraFin:       p.FechaHoraFin,
		Responsable:        p.Responsable,
		TelefonoDeContacto: p.TelefonoDeContacto,
		Activa:             activa,
		RequiereControl:    p.RequiereControl,
		RestriccionID:      p.RestriccionID,
	}
}

func (a *API) crearActividad(w http.ResponseWriter, r *http.Request) {
	var p actividadPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	data, advertencia, err := a.catalogo.Crear(r.Context(), p.aModelo())
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosConAdvertencia(w, http.StatusCreated, data, advertencia)
}

func (a *API) actualizarActividad(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	var p actividadPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	actividad := p.aModelo()
	actividad.ID = id
	data, advertencia, err := a.catalogo.Actualizar(r.Context(), actividad)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosConAdvertencia(w, http.StatusOK, data, advertencia)
}

func (a *API) borrarActividad(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	if err := a.catalogo.Borrar(r.Context(), id); err != nil {
		a.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) planillaActividad(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	actividad, err := a.catalogo.PorID(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	lista, err := a.turnos.DeActividad(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	f, err := export.PlanillaAsistencia(*actividad, lista)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.NombreArchivo(*actividad)+`"`)
	if err := f.Write(w); err != nil {
		a.log.Errorw("escribiendo planilla", "error", err)
	}
}

func (a *API) listarCarreras(w http.ResponseWriter, r *http.Request) {
	data, err := a.catalogo.ListarCarreras(r.Context())
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) listarEdificios(w http.ResponseWriter, r *http.Request) {
	data, err := a.catalogo.ListarEdificios(r.Context())
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) edificioPorID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	data, err := a.catalogo.EdificioPorID(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) crearEdificio(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Nombre string `json:"nombre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	data, err := a.catalogo.CrearEdificio(r.Context(), models.Edificio{Nombre: p.Nombre})
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusCreated, data)
}

func (a *API) borrarEdificio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	if err := a.catalogo.BorrarEdificio(r.Context(), id); err != nil {
		a.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type espacioPayload struct {
	EdificioID int64  `json:"edificioId"`
	Nombre     string `json:"nombre"`
	Piso       int    `json:"piso"`
	Habilitado *bool  `json:"habilitado"`
	Aforo      int    `json:"aforo"`
}

func (p espacioPayload) aModelo() models.Espacio {
	habilitado := true
	if p.Habilitado != nil {
		habilitado = *p.Habilitado
	}
	return models.Espacio{
		EdificioID: p.EdificioID,
		Nombre:     p.Nombre,
		Piso:       p.Piso,
		Habilitado: habilitado,
		Aforo:      p.Aforo,
	}
}

func (a *API) listarEspacios(w http.ResponseWriter, r *http.Request) {
	var edificioID *int64
	if v := r.URL.Query().Get("edificio"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			a.errorJSON(w, r, apperr.Validacion("edificio: id inválido %q", v))
			return
		}
		edificioID = &id
	}
	data, err := a.catalogo.ListarEspacios(r.Context(), edificioID)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) crearEspacio(w http.ResponseWriter, r *http.Request) {
	var p espacioPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	data, err := a.catalogo.CrearEspacio(r.Context(), p.aModelo())
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusCreated, data)
}

func (a *API) actualizarEspacio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	var p espacioPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	espacio := p.aModelo()
	espacio.ID = id
	data, err := a.catalogo.ActualizarEspacio(r.Context(), espacio)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) borrarEspacio(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	if err := a.catalogo.BorrarEspacio(r.Context(), id); err != nil {
		a.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type turnoPayload struct {
	ActividadID      int64 `json:"actividadId"`
	EstuvoEnContacto bool  `json:"estuvoEnContacto"`
}

// El turno se crea siempre a nombre del actor: la cabecera es la única
// fuente de identidad del adaptador.
func (a *API) crearTurno(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	var p turnoPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		a.errorJSON(w, r, apperr.Validacion("cuerpo inválido: %v", err))
		return
	}
	data, err := a.turnos.Crear(r.Context(), actorID, p.ActividadID, p.EstuvoEnContacto)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusCreated, data)
}

func (a *API) turnoPorID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	data, err := a.turnos.PorID(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) borrarTurno(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	actorID, err := actor(r)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	if err := a.turnos.Borrar(r.Context(), actorID, id); err != nil {
		a.errorJSON(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) checkIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	data, err := a.turnos.RegistrarCheckIn(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

func (a *API) turnosDeUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	data, err := a.turnos.DeUsuario(r.Context(), id)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, data)
}

// usuarioPorDNI es la búsqueda de mostrador: documento → usuario + turnos.
func (a *API) usuarioPorDNI(w http.ResponseWriter, r *http.Request) {
	dni, err := pathID(r, "dni")
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	usuario, lista, err := a.turnos.DeUsuarioPorDNI(r.Context(), dni)
	if err != nil {
		a.errorJSON(w, r, err)
		return
	}
	a.datosJSON(w, http.StatusOK, map[string]any{
		"usuario": usuario,
		"turnos":  lista,
	})
}

func pathID(r *http.Request, nombre string) (int64, error) {
	raw := r.PathValue(nombre)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validacion("%s inválido %q", nombre, raw)
	}
	return id, nil
}

func actor(r *http.Request) (int64, error) {
	id, ok := ctxutil.UsuarioID(r.Context())
	if !ok {
		return 0, apperr.Validacion("falta la cabecera X-Usuario-Id")
	}
	return id, nil
}

func (a *API) datosJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": data}); err != nil {
		a.log.Errorw("codificando respuesta", "error", err)
	}
}

func (a *API) datosConAdvertencia(w http.ResponseWriter, status int, data any, advertencia string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	cuerpo := map[string]any{"data": data}
	if advertencia != "" {
		cuerpo["advertencia"] = advertencia
	}
	if err := json.NewEncoder(w).Encode(cuerpo); err != nil {
		a.log.Errorw("codificando respuesta", "error", err)
	}
}

// errorJSON traduce la taxonomía del dominio a códigos HTTP. El orden
// importa: conflicto es-un error de validación.
func (a *API) errorJSON(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNoEncontrado):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrConflicto):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrProhibido):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrValidacion):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrUpstreamNoDisponible):
		status = http.StatusServiceUnavailable
	default:
		op, _ := ctxutil.Op(r.Context())
		a.log.Errorw("error no mapeado", "operacion", op, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
