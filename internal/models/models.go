package models

import "time"

type Rol string

const (
	Asistente Rol = "asistente"
	Bedel     Rol = "bedel"
	Admin     Rol = "admin"
)

type Edificio struct {
	ID     int64
	Nombre string
}

type Espacio struct {
	ID         int64
	EdificioID int64
	Nombre     string
	Piso       int
	Habilitado bool
	Aforo      int
}

type Usuario struct {
	ID                         int64
	Nombre                     string
	Apellido                   string
	DNI                        int64
	Telefono                   *string
	Email                      string
	Rol                        Rol
	FechaSincronizacionGuarani *time.Time
}

func (u Usuario) EsAdmin() bool { return u.Rol == Admin }

type Actividad struct {
	ID                 int64
	EspacioID          int64
	Nombre             string
	FechaHoraInicio    time.Time
	FechaHoraFin       time.Time
	Responsable        string
	TelefonoDeContacto string
	Activa             bool
	RequiereControl    bool
	RestriccionID      *int64
}

// EsPublica: sin restricción de carrera, cualquiera puede pedir turno.
func (a Actividad) EsPublica() bool { return a.RestriccionID == nil }

type Turno struct {
	ID               int64
	UsuarioID        int64
	ActividadID      int64
	EstuvoEnContacto bool
	FechaCheckIn     *time.Time
}

// Carrera vive en Guaraní; acá sólo se cachea.
type Carrera struct {
	ID     int64
	Nombre string
}

// Proyección anidada que devuelve el catálogo.
type EdificioResumen struct {
	ID     int64
	Nombre string
}

type EspacioResumen struct {
	ID       int64
	Nombre   string
	Aforo    int
	Edificio EdificioResumen
}

// ActividadConEspacio es una actividad con su espacio/edificio anidados.
type ActividadConEspacio struct {
	Actividad
	Espacio EspacioResumen
}

// ActividadConTurnos agrega la cantidad de turnos ya pedidos.
type ActividadConTurnos struct {
	ActividadConEspacio
	Turnos int
}

// ActividadResumen acompaña a un turno en "mis turnos".
type ActividadResumen struct {
	ID              int64
	Nombre          string
	FechaHoraInicio time.Time
	FechaHoraFin    time.Time
	Responsable     string
	Espacio         string
	Edificio        string
}

type TurnoConActividad struct {
	Turno
	Actividad ActividadResumen
}

// UsuarioResumen acompaña a un turno en la planilla de asistencia.
type UsuarioResumen struct {
	Nombre   string
	Apellido string
	DNI      int64
}

type TurnoConUsuario struct {
	Turno
	Usuario UsuarioResumen
}
