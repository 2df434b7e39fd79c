// README: Service record store backed by PostgreSQL.
package service

import (
	"context"
	"database/sql"
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

const recordColumns = `
        id, requester_id, driver_id, pickup_lat, pickup_lng,
        status, status_version, distance_km, eta_minutes,
        cancellation_reason, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, r *Record) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
        INSERT INTO services (
            id, requester_id, driver_id, pickup_lat, pickup_lng,
            status, status_version, distance_km, eta_minutes,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(r.ID), string(r.RequesterID), string(r.DriverID),
		r.Pickup.Lat, r.Pickup.Lng,
		string(r.Status), r.StatusVersion, r.DistanceKm, r.ETAMinutes,
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM services WHERE id = $1`, string(id))
	return scanRecord(row)
}

func (s *PGStore) ListByRequester(ctx context.Context, requesterID types.ID) ([]Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM services WHERE requester_id = $1 ORDER BY created_at DESC`, string(requesterID))
}

func (s *PGStore) ListByDriver(ctx context.Context, driverID types.ID) ([]Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM services WHERE driver_id = $1 ORDER BY created_at DESC`, string(driverID))
}

func (s *PGStore) ListAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, `SELECT ` + recordColumns + ` FROM services ORDER BY created_at DESC`)
}

func (s *PGStore) query(ctx context.Context, sqlText string, args ...any) ([]Record, error) {
	rows, err := s.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateStatus is the optimistic-concurrency guard: the WHERE clause on
// (status, status_version) makes exactly one of two racing transitions win.
func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE services
        SET status = $1,
            status_version = status_version + 1,
            cancellation_reason = COALESCE($2, cancellation_reason),
            updated_at = NOW()
        WHERE id = $3 AND status = $4 AND status_version = $5`,
		string(to), reason, string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	var actorID *string
	if e.ActorID != nil {
		v := string(*e.ActorID)
		actorID = &v
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO service_state_events (
            record_id, from_status, to_status, actor_role, actor_id, reason, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.RecordID), string(e.FromStatus), string(e.ToStatus),
		string(e.ActorRole), actorID, e.Reason, e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var reason sql.NullString
	err := row.Scan(
		&r.ID, &r.RequesterID, &r.DriverID, &r.Pickup.Lat, &r.Pickup.Lng,
		&r.Status, &r.StatusVersion, &r.DistanceKm, &r.ETAMinutes,
		&reason, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		r.CancelReason = &reason.String
	}
	return &r, nil
}
