package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

const codigoUniqueViolation = "23505"

// CrearTurno inserta el turno. El índice único (usuario_id, actividad_id)
// respalda la regla de "un turno por usuario por actividad" también bajo
// creación concurrente.
func (s *Store) CrearTurno(ctx context.Context, t models.Turno) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO turnos (usuario_id, actividad_id, estuvo_en_contacto)
VALUES ($1, $2, $3)
RETURNING id`, t.UsuarioID, t.ActividadID, t.EstuvoEnContacto).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codigoUniqueViolation {
		return 0, apperr.Conflicto("el usuario ya tiene un turno para esta actividad")
	}
	return id, err
}

func (s *Store) TurnoPorID(ctx context.Context, id int64) (*models.Turno, error) {
	var t models.Turno
	var checkIn sql.NullTime
	err := s.db.QueryRowContext(ctx, `
SELECT id, usuario_id, actividad_id, estuvo_en_contacto, fecha_check_in
FROM turnos WHERE id = $1`, id).Scan(
		&t.ID, &t.UsuarioID, &t.ActividadID, &t.EstuvoEnContacto, &checkIn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NoEncontrado("no existe un turno con el id %d", id)
	}
	if err != nil {
		return nil, err
	}
	if checkIn.Valid {
		hora := checkIn.Time.In(s.loc)
		t.FechaCheckIn = &hora
	}
	return &t, nil
}

func (s *Store) BorrarTurno(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM turnos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe un turno con el id %d", id)
	}
	return nil
}

func (s *Store) ExisteTurno(ctx context.Context, usuarioID, actividadID int64) (bool, error) {
	var existe bool
	err := s.db.QueryRowContext(ctx, `
SELECT EXISTS(SELECT 1 FROM turnos WHERE usuario_id = $1 AND actividad_id = $2)`,
		usuarioID, actividadID).Scan(&existe)
	return existe, err
}

func (s *Store) ContarTurnos(ctx context.Context, actividadID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM turnos WHERE actividad_id = $1`, actividadID).Scan(&n)
	return n, err
}

// MarcarCheckIn es una transición de una sola vía: sólo pisa filas sin
// check-in previo. Devuelve false si la fila existía pero ya estaba marcada.
func (s *Store) MarcarCheckIn(ctx context.Context, id int64) (*models.Turno, bool, error) {
	var t models.Turno
	var checkIn sql.NullTime
	err := s.db.QueryRowContext(ctx, `
UPDATE turnos SET fecha_check_in = now()
WHERE id = $1 AND fecha_check_in IS NULL
RETURNING id, usuario_id, actividad_id, estuvo_en_contacto, fecha_check_in`,
		id).Scan(&t.ID, &t.UsuarioID, &t.ActividadID, &t.EstuvoEnContacto, &checkIn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if checkIn.Valid {
		hora := checkIn.Time.In(s.loc)
		t.FechaCheckIn = &hora
	}
	return &t, true, nil
}

// ListarTurnosDeUsuario trae los turnos del usuario con la info de la
// actividad que ve en "mis turnos".
func (s *Store) ListarTurnosDeUsuario(ctx context.Context, usuarioID int64) ([]models.TurnoConActividad, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.id, t.usuario_id, t.actividad_id, t.estuvo_en_contacto, t.fecha_check_in,
       a.nombre, a.fecha_hora_inicio, a.fecha_hora_fin, a.responsable,
       e.nombre, ed.nombre
FROM turnos t
JOIN actividades a ON a.id = t.actividad_id
JOIN espacios e ON e.id = a.espacio_id
JOIN edificios ed ON ed.id = e.edificio_id
WHERE t.usuario_id = $1
ORDER BY a.fecha_hora_inicio`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TurnoConActividad
	for rows.Next() {
		var t models.TurnoConActividad
		var checkIn sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.UsuarioID, &t.ActividadID, &t.EstuvoEnContacto, &checkIn,
			&t.Actividad.Nombre, &t.Actividad.FechaHoraInicio, &t.Actividad.FechaHoraFin,
			&t.Actividad.Responsable, &t.Actividad.Espacio, &t.Actividad.Edificio,
		); err != nil {
			return nil, err
		}
		if checkIn.Valid {
			hora := checkIn.Time.In(s.loc)
			t.FechaCheckIn = &hora
		}
		t.Actividad.ID = t.ActividadID
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListarTurnosDeActividad: asistentes anotados a una actividad, ordenados por
// apellido (la planilla que mira el bedel en la puerta).
func (s *Store) ListarTurnosDeActividad(ctx context.Context, actividadID int64) ([]models.TurnoConUsuario, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT t.id, t.usuario_id, t.actividad_id, t.estuvo_en_contacto, t.fecha_check_in,
       u.nombre, u.apellido, u.dni
FROM turnos t
JOIN usuarios u ON u.id = t.usuario_id
WHERE t.actividad_id = $1
ORDER BY u.apellido, u.nombre`, actividadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TurnoConUsuario
	for rows.Next() {
		var t models.TurnoConUsuario
		var checkIn sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.UsuarioID, &t.ActividadID, &t.EstuvoEnContacto, &checkIn,
			&t.Usuario.Nombre, &t.Usuario.Apellido, &t.Usuario.DNI,
		); err != nil {
			return nil, err
		}
		if checkIn.Valid {
			hora := checkIn.Time.In(s.loc)
			t.FechaCheckIn = &hora
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
