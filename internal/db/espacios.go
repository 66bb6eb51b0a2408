package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

func (s *Store) ListarEspacios(ctx context.Context, edificioID *int64) ([]models.Espacio, error) {
	q := `SELECT id, edificio_id, nombre, piso, habilitado, aforo FROM espacios`
	var args []any
	if edificioID != nil {
		q += ` WHERE edificio_id = $1`
		args = append(args, *edificioID)
	}
	q += ` ORDER BY nombre`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Espacio
	for rows.Next() {
		var e models.Espacio
		if err := rows.Scan(&e.ID, &e.EdificioID, &e.Nombre, &e.Piso, &e.Habilitado, &e.Aforo); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) EspacioPorID(ctx context.Context, id int64) (*models.Espacio, error) {
	var e models.Espacio
	err := s.db.QueryRowContext(ctx, `
SELECT id, edificio_id, nombre, piso, habilitado, aforo
FROM espacios WHERE id = $1`, id).Scan(
		&e.ID, &e.EdificioID, &e.Nombre, &e.Piso, &e.Habilitado, &e.Aforo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NoEncontrado("no existe un espacio con el id %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CrearEspacio(ctx context.Context, e models.Espacio) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO espacios (edificio_id, nombre, piso, habilitado, aforo)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, e.EdificioID, e.Nombre, e.Piso, e.Habilitado, e.Aforo).Scan(&id)
	return id, err
}

func (s *Store) ActualizarEspacio(ctx context.Context, e models.Espacio) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE espacios SET edificio_id = $1, nombre = $2, piso = $3, habilitado = $4, aforo = $5
WHERE id = $6`, e.EdificioID, e.Nombre, e.Piso, e.Habilitado, e.Aforo, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe un espacio con el id %d", e.ID)
	}
	return nil
}

func (s *Store) BorrarEspacio(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM espacios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe un espacio con el id %d", id)
	}
	return nil
}
