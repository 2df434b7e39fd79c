// README: Address store backed by PostgreSQL.
package address

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridedispatch/internal/types"
)

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Save(ctx context.Context, a *Address) error {
	if err := a.Position.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = types.NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO addresses (id, user_id, label, street, city, lat, lng, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET
            label = EXCLUDED.label,
            street = EXCLUDED.street,
            city = EXCLUDED.city,
            lat = EXCLUDED.lat,
            lng = EXCLUDED.lng`,
		string(a.ID), string(a.UserID), a.Label, a.Street, a.City,
		a.Position.Lat, a.Position.Lng, a.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Address, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, label, street, city, lat, lng, created_at
        FROM addresses WHERE id = $1`, string(id))
	var a Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City,
		&a.Position.Lat, &a.Position.Lng, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) ListByUser(ctx context.Context, userID types.ID) ([]Address, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, label, street, city, lat, lng, created_at
        FROM addresses WHERE user_id = $1 ORDER BY id`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City,
			&a.Position.Lat, &a.Position.Lng, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
