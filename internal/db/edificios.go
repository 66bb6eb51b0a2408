package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

func (s *Store) ListarEdificios(ctx context.Context) ([]models.Edificio, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre FROM edificios ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Edificio
	for rows.Next() {
		var e models.Edificio
		if err := rows.Scan(&e.ID, &e.Nombre); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) EdificioPorID(ctx context.Context, id int64) (*models.Edificio, error) {
	var e models.Edificio
	err := s.db.QueryRowContext(ctx,
		`SELECT id, nombre FROM edificios WHERE id = $1`, id).Scan(&e.ID, &e.Nombre)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NoEncontrado("no existe un edificio con el id %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CrearEdificio(ctx context.Context, e models.Edificio) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO edificios (nombre) VALUES ($1) RETURNING id`, e.Nombre).Scan(&id)
	return id, err
}

func (s *Store) BorrarEdificio(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edificios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NoEncontrado("no existe un edificio con el id %d", id)
	}
	return nil
}
