package flow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ajabadia/TRYaG-sub000/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Stay Repository ===========

type stayRepoPG struct{ pool *pgxpool.Pool }

func NewStayRepoPG(pool *pgxpool.Pool) StayRepository { return &stayRepoPG{pool: pool} }

func (r *stayRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const stayCols = `id, flow_id, patient_id, sequence, location_code, location_type,
	location_subtype, state, active, entered_at, exited_at, duration_minutes, note`

func (r *stayRepoPG) scanStay(row pgx.Row) (*Stay, error) {
	var s Stay
	err := row.Scan(&s.ID, &s.FlowID, &s.PatientID, &s.Sequence, &s.LocationCode, &s.LocationType,
		&s.LocationSubtype, &s.State, &s.Active, &s.EnteredAt, &s.ExitedAt, &s.DurationMinutes, &s.Note)
	return &s, err
}

func (r *stayRepoPG) Create(ctx context.Context, s *Stay) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_stay (id, flow_id, patient_id, sequence, location_code, location_type,
			location_subtype, state, active, entered_at, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.FlowID, s.PatientID, s.Sequence, s.LocationCode, s.LocationType,
		s.LocationSubtype, s.State, s.Active, s.EnteredAt, s.Note)
	return err
}

func (r *stayRepoPG) Close(ctx context.Context, id uuid.UUID, state string, exitedAt time.Time, durationMinutes int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_stay SET state=$2, active=FALSE, exited_at=$3, duration_minutes=$4
		WHERE id = $1 AND active`,
		id, state, exitedAt, durationMinutes)
	return err
}

func (r *stayRepoPG) GetActive(ctx context.Context, patientID uuid.UUID) (*Stay, error) {
	s, err := r.scanStay(r.conn(ctx).QueryRow(ctx,
		`SELECT `+stayCols+` FROM patient_stay WHERE patient_id = $1 AND active`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *stayRepoPG) ListActive(ctx context.Context) ([]*Stay, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stayCols+` FROM patient_stay WHERE active ORDER BY entered_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Stay
	for rows.Next() {
		s, err := r.scanStay(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *stayRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Stay, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_stay WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stayCols+` FROM patient_stay WHERE patient_id = $1
		 ORDER BY entered_at DESC, sequence DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Stay
	for rows.Next() {
		s, err := r.scanStay(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *stayRepoPG) ListByFlow(ctx context.Context, flowID uuid.UUID) ([]*Stay, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stayCols+` FROM patient_stay WHERE flow_id = $1 ORDER BY sequence`, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Stay
	for rows.Next() {
		s, err := r.scanStay(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// =========== Room Repository ===========

type roomRepoPG struct{ pool *pgxpool.Pool }

func NewRoomRepoPG(pool *pgxpool.Pool) RoomRepository { return &roomRepoPG{pool: pool} }

func (r *roomRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const roomCols = `code, type, subtype, total_slots, available_slots, active, created_at, updated_at`

func (r *roomRepoPG) scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(&rm.Code, &rm.Type, &rm.Subtype, &rm.TotalSlots, &rm.AvailableSlots,
		&rm.Active, &rm.CreatedAt, &rm.UpdatedAt)
	return &rm, err
}

func (r *roomRepoPG) Create(ctx context.Context, rm *Room) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO room (code, type, subtype, total_slots, available_slots, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rm.Code, rm.Type, rm.Subtype, rm.TotalSlots, rm.AvailableSlots, rm.Active)
	return err
}

func (r *roomRepoPG) GetByCode(ctx context.Context, code string) (*Room, error) {
	return r.scanRoom(r.conn(ctx).QueryRow(ctx,
		`SELECT `+roomCols+` FROM room WHERE code = $1`, code))
}

func (r *roomRepoPG) List(ctx context.Context) ([]*Room, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+roomCols+` FROM room ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Room
	for rows.Next() {
		rm, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rm)
	}
	return items, rows.Err()
}

func (r *roomRepoPG) Update(ctx context.Context, rm *Room) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE room SET type=$2, subtype=$3, total_slots=$4, active=$5, updated_at=NOW()
		WHERE code = $1`,
		rm.Code, rm.Type, rm.Subtype, rm.TotalSlots, rm.Active)
	return err
}

func (r *roomRepoPG) AdjustCapacity(ctx context.Context, code string, delta int) error {
	// No lower bound: negative available_slots records overbooking.
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE room SET available_slots = available_slots + $2, updated_at=NOW()
		WHERE code = $1`,
		code, delta)
	return err
}
