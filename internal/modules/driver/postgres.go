// README: Driver store backed by PostgreSQL; reservation is a guarded UPDATE.
package driver

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

func (s *PGStore) Save(ctx context.Context, d *Driver) error {
	if d.Availability == "" {
		d.Availability = StatusAvailable
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (
            id, user_id, vehicle_plate, vehicle_model, vehicle_year, vehicle_color,
            rating, current_lat, current_lng, availability, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        ON CONFLICT (id) DO UPDATE SET
            vehicle_plate = EXCLUDED.vehicle_plate,
            vehicle_model = EXCLUDED.vehicle_model,
            vehicle_year  = EXCLUDED.vehicle_year,
            vehicle_color = EXCLUDED.vehicle_color,
            rating        = EXCLUDED.rating,
            current_lat   = EXCLUDED.current_lat,
            current_lng   = EXCLUDED.current_lng,
            updated_at    = NOW()`,
		string(d.ID), string(d.UserID),
		d.VehiclePlate, d.VehicleModel, d.VehicleYear, d.VehicleColor,
		d.Rating, d.Position.Lat, d.Position.Lng, string(d.Availability),
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, vehicle_plate, vehicle_model, vehicle_year, vehicle_color,
               rating, current_lat, current_lng, availability, updated_at
        FROM drivers
        WHERE id = $1`, string(id),
	)
	return scanDriver(row)
}

func (s *PGStore) GetByUserID(ctx context.Context, userID types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, vehicle_plate, vehicle_model, vehicle_year, vehicle_color,
               rating, current_lat, current_lng, availability, updated_at
        FROM drivers
        WHERE user_id = $1`, string(userID),
	)
	return scanDriver(row)
}

func (s *PGStore) ListAvailable(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, vehicle_plate, vehicle_model, vehicle_year, vehicle_color,
               rating, current_lat, current_lng, availability, updated_at
        FROM drivers
        WHERE availability = $1
        ORDER BY id`, string(StatusAvailable),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// TryReserve claims the driver with a single conditional UPDATE. The WHERE
// guard on availability makes two concurrent claims resolve to exactly one
// affected row.
func (s *PGStore) TryReserve(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET availability = $1, updated_at = NOW()
        WHERE id = $2 AND availability = $3`,
		string(StatusReserved), string(id), string(StatusAvailable),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Release is idempotent: zero affected rows means the driver was already
// available (or unknown), which is not an error.
func (s *PGStore) Release(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET availability = $1, updated_at = NOW()
        WHERE id = $2 AND availability = $3`,
		string(StatusAvailable), string(id), string(StatusReserved),
	)
	return err
}

func (s *PGStore) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET current_lat = $1, current_lng = $2, updated_at = NOW()
        WHERE id = $3`,
		p.Lat, p.Lng, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	var updatedAt time.Time
	err := row.Scan(
		&d.ID, &d.UserID, &d.VehiclePlate, &d.VehicleModel, &d.VehicleYear,
		&d.VehicleColor, &d.Rating, &d.Position.Lat, &d.Position.Lng,
		&d.Availability, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = updatedAt
	return &d, nil
}
