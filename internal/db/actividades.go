package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

// ListarActividades devuelve actividades con espacio/edificio anidados y la
// cantidad de turnos pedidos. El LEFT JOIN + GROUP BY garantiza que una
// actividad sin turnos aparezca con 0.
func (s *Store) ListarActividades(ctx context.Context, f FiltroActividades) ([]models.ActividadConTurnos, error) {
	where, args := f.where(s.loc)
	q := `
SELECT a.id, a.espacio_id, a.nombre, a.fecha_hora_inicio, a.fecha_hora_fin,
       a.responsable, a.telefono_responsable, a.activa, a.requiere_control, a.restriccion_id,
       e.id, e.nombre, e.aforo,
       ed.id, ed.nombre,
       COUNT(t.id)::integer AS turnos
FROM actividades a
JOIN espacios e ON e.id = a.espacio_id
JOIN edificios ed ON ed.id = e.edificio_id
LEFT JOIN turnos t ON t.actividad_id = a.id` + where + `
GROUP BY a.id, e.id, ed.id
ORDER BY a.fecha_hora_inicio ASC, a.nombre ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ActividadConTurnos, 0)
	for rows.Next() {
		var a models.ActividadConTurnos
		var restriccion sql.NullInt64
		if err := rows.Scan(
			&a.ID, &a.EspacioID, &a.Nombre, &a.FechaHoraInicio, &a.FechaHoraFin,
			&a.Responsable, &a.TelefonoDeContacto, &a.Activa, &a.RequiereControl, &restriccion,
			&a.Espacio.ID, &a.Espacio.Nombre, &a.Espacio.Aforo,
			&a.Espacio.Edificio.ID, &a.Espacio.Edificio.Nombre,
			&a.Turnos,
		); err != nil {
			return nil, err
		}
		if restriccion.Valid {
			a.RestriccionID = &restriccion.Int64
		}
		a.FechaHoraInicio = a.FechaHoraInicio.In(s.loc)
		a.FechaHoraFin = a.FechaHoraFin.In(s.loc)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ActividadPorID(ctx context.Context, id int64) (*models.ActividadConEspacio, error) {
	var a models.ActividadConEspacio
	var restriccion sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
SELECT a.id, a.espacio_id, a.nombre, a.fecha_hora_inicio, a.fecha_hora_fin,
       a.responsable, a.telefono_responsable, a.activa, a.requiere_control, a.restriccion_id,
       e.id, e.nombre, e.aforo,
       ed.id, ed.nombre
FROM actividades a
JOIN espacios e ON e.id = a.espacio_id
JOIN edificios ed ON ed.id = e.edificio_id
WHERE a.id = $1`, id).Scan(
		&a.ID, &a.EspacioID, &a.Nombre, &a.FechaHoraInicio, &a.FechaHoraFin,
		&a.Responsable, &a.TelefonoDeContacto, &a.Activa, &a.RequiereControl, &restriccion,
		&a.Espacio.ID, &a.Espacio.Nombre, &a.Espacio.Aforo,
		&a.Espacio.Edificio.ID, &a.Espacio.Edificio.Nombre,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NoEncontrado("no existe una actividad con el id %d", id)
	}
	if err != nil {
		return nil, err
	}
	if restriccion.Valid {
		a.RestriccionID = &restriccion.Int64
	}
	a.FechaHoraInicio = a.FechaHoraInicio.In(s.loc)
	a.FechaHoraFin = a.FechaHoraFin.In(s.loc)
	return &a, nil
}

func (s *Store) CrearActividad(ctx context.Context, a models.Actividad) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO actividades (espacio_id, nombre, fecha_hora_inicio, fecha_hora_fin,
                         responsable, telefono_responsable, activa, requiere_control, restriccion_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`,
		a.EspacioID, a.Nombre, a.FechaHoraInicio, a.FechaHoraFin,
		a.Responsable, a.TelefonoDeContacto, a.Activa, a.RequiereControl, a.RestriccionID,
	).Scan(&id)
	return id, err
}

func (s *Store) ActualizarActividad(ctx context.Context, a models.Actividad) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE actividades
SET espacio_id = $1, nombre = $2, fecha_hora_inicio = $3, fecha_hora_fin = $4,
    responsable = $5, telefono_responsable = $6, activa = $7,
    requiere_control = $8, restriccion_id = $9
WHERE id = $10`,
		a.EspacioID, a.Nombre, a.FechaHoraInicio, a.FechaHoraFin,
		a.Responsable, a.TelefonoDeContacto, a.Activa, a.RequiereControl, a.RestriccionID,
		a.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe una actividad con el id %d", a.ID)
	}
	return nil
}

func (s *Store) BorrarActividad(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM actividades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe una actividad con el id %d", id)
	}
	return nil
}
