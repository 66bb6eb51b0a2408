package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mlorenzatti/turnero-campus/internal/apperr"
	"github.com/mlorenzatti/turnero-campus/internal/models"
)

func (s *Store) UsuarioPorID(ctx context.Context, id int64) (*models.Usuario, error) {
	return s.unUsuario(ctx, `WHERE id = $1`, id)
}

func (s *Store) UsuarioPorDNI(ctx context.Context, dni int64) (*models.Usuario, error) {
	return s.unUsuario(ctx, `WHERE dni = $1`, dni)
}

func (s *Store) unUsuario(ctx context.Context, where string, arg any) (*models.Usuario, error) {
	var u models.Usuario
	var telefono sql.NullString
	var sync sql.NullTime
	err := s.db.QueryRowContext(ctx, `
SELECT id, nombre, apellido, dni, telefono, email, rol, fecha_sincronizacion_guarani
FROM usuarios `+where, arg).Scan(
		&u.ID, &u.Nombre, &u.Apellido, &u.DNI, &telefono, &u.Email, &u.Rol, &sync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NoEncontrado("no existe el usuario")
	}
	if err != nil {
		return nil, err
	}
	if telefono.Valid {
		u.Telefono = &telefono.String
	}
	if sync.Valid {
		fecha := sync.Time.In(s.loc)
		u.FechaSincronizacionGuarani = &fecha
	}
	return &u, nil
}

// CarrerasDeUsuario lee el conjunto local de inscripciones: es el ancla de
// confianza para la elegibilidad, independiente de que Guaraní esté caído.
func (s *Store) CarrerasDeUsuario(ctx context.Context, usuarioID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT carrera_id FROM inscripciones_carreras WHERE usuario_id = $1`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReemplazarInscripciones pisa el conjunto local con lo que contestó Guaraní
// y estampa la fecha de sincronización, todo en una transacción.
func (s *Store) ReemplazarInscripciones(ctx context.Context, usuarioID int64, carreras []int64) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM inscripciones_carreras WHERE usuario_id = $1`, usuarioID); err != nil {
		return err
	}
	for _, carreraID := range carreras {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO inscripciones_carreras (usuario_id, carrera_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`, usuarioID, carreraID); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE usuarios SET fecha_sincronizacion_guarani = now() WHERE id = $1`, usuarioID); err != nil {
		return err
	}
	return tx.Commit()
}

// UsuariosParaSincronizar: nunca sincronizados o con la marca más vieja que
// antesDe, limitado para que el job avance de a tandas.
func (s *Store) UsuariosParaSincronizar(ctx context.Context, antesDe time.Time, limite int) ([]models.Usuario, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, nombre, apellido, dni, telefono, email, rol, fecha_sincronizacion_guarani
FROM usuarios
WHERE fecha_sincronizacion_guarani IS NULL OR fecha_sincronizacion_guarani < $1
ORDER BY fecha_sincronizacion_guarani NULLS FIRST
LIMIT $2`, antesDe, limite)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Usuario
	for rows.Next() {
		var u models.Usuario
		var telefono sql.NullString
		var sync sql.NullTime
		if err := rows.Scan(&u.ID, &u.Nombre, &u.Apellido, &u.DNI, &telefono,
			&u.Email, &u.Rol, &sync); err != nil {
			return nil, err
		}
		if telefono.Valid {
			u.Telefono = &telefono.String
		}
		if sync.Valid {
			fecha := sync.Time.In(s.loc)
			u.FechaSincronizacionGuarani = &fecha
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
