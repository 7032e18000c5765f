package flow

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ajabadia/TRYaG-sub000/internal/platform/db"
)

// Result codes for invalid flow transitions. Callers decide whether to
// retry, recover, or surface them; the ledger itself never panics on them.
var (
	ErrNoActiveStay     = errors.New("no active stay for patient")
	ErrActiveStayExists = errors.New("patient already has an active stay")
)

// Service is the patient flow ledger: an append-only chain of stays per
// patient with room-capacity accounting. Every transition runs under a
// per-patient mutex and, when a pool is attached, inside a single
// transaction, so a stay close/open and its paired capacity adjustments
// are never separate commits.
// lockStripes bounds the lock table: patients hash onto a fixed set of
// mutexes instead of one entry per patient ever seen.
const lockStripes = 64

type Service struct {
	stays   StayRepository
	rooms   RoomRepository
	auditor *Auditor
	pool    *pgxpool.Pool
	logger  zerolog.Logger

	locks [lockStripes]sync.Mutex
}

func NewService(stays StayRepository, rooms RoomRepository, logger zerolog.Logger) *Service {
	return &Service{
		stays:   stays,
		rooms:   rooms,
		auditor: NewAuditor(stays, rooms),
		logger:  logger,
	}
}

// SetPool attaches the connection pool used to wrap transitions in a
// transaction. Without one (unit tests) transitions run directly against
// the repositories.
func (s *Service) SetPool(pool *pgxpool.Pool) {
	s.pool = pool
}

func (s *Service) patientLock(patientID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(patientID[:])
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	txCtx, tx, err := db.WithTx(ctx, s.pool)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// OpenFlow starts a new flow for a patient at the given location. It fails
// with ErrActiveStayExists when the patient already has an active stay;
// use RecoverOpenFlow when the stale stay should be force-closed instead.
func (s *Service) OpenFlow(ctx context.Context, patientID uuid.UUID, loc Location, state string) (*Stay, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if loc.Code == "" {
		return nil, fmt.Errorf("location code is required")
	}
	if state == "" {
		state = StateWaiting
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	var stay *Stay
	err := s.inTx(ctx, func(ctx context.Context) error {
		active, err := s.stays.GetActive(ctx, patientID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrActiveStayExists
		}
		stay = &Stay{
			FlowID:          uuid.New(),
			PatientID:       patientID,
			Sequence:        1,
			LocationCode:    loc.Code,
			LocationType:    loc.Type,
			LocationSubtype: loc.Subtype,
			State:           state,
			Active:          true,
			EnteredAt:       time.Now(),
		}
		if err := s.stays.Create(ctx, stay); err != nil {
			return err
		}
		return s.rooms.AdjustCapacity(ctx, loc.Code, -1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("flow_id", stay.FlowID.String()).
		Str("location", loc.Code).
		Msg("flow opened")
	return stay, nil
}

// RecoverOpenFlow force-closes a stale active stay and appends the next
// sequence of the same flow at the given location. The forced close is an
// explicit recovery action, stamped on the stay and logged, so a stay is
// never silently orphaned. Without a stale stay it degrades to a plain
// open on a new flow.
func (s *Service) RecoverOpenFlow(ctx context.Context, patientID uuid.UUID, loc Location, state, reason string) (*Stay, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if loc.Code == "" {
		return nil, fmt.Errorf("location code is required")
	}
	if state == "" {
		state = StateWaiting
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	var stay *Stay
	var recovered *Stay
	err := s.inTx(ctx, func(ctx context.Context) error {
		active, err := s.stays.GetActive(ctx, patientID)
		if err != nil {
			return err
		}
		flowID := uuid.New()
		sequence := 1
		if active != nil {
			now := time.Now()
			dur := minutesBetween(active.EnteredAt, now)
			if err := s.stays.Close(ctx, active.ID, StateRecovered, now, dur); err != nil {
				return err
			}
			if err := s.rooms.AdjustCapacity(ctx, active.LocationCode, +1); err != nil {
				return err
			}
			recovered = active
			flowID = active.FlowID
			sequence = active.Sequence + 1
		}
		stay = &Stay{
			FlowID:          flowID,
			PatientID:       patientID,
			Sequence:        sequence,
			LocationCode:    loc.Code,
			LocationType:    loc.Type,
			LocationSubtype: loc.Subtype,
			State:           state,
			Active:          true,
			EnteredAt:       time.Now(),
		}
		if err := s.stays.Create(ctx, stay); err != nil {
			return err
		}
		return s.rooms.AdjustCapacity(ctx, loc.Code, -1)
	})
	if err != nil {
		return nil, err
	}

	if recovered != nil {
		s.logger.Warn().
			Str("patient_id", patientID.String()).
			Str("stale_flow_id", recovered.FlowID.String()).
			Str("stale_location", recovered.LocationCode).
			Str("reason", reason).
			Msg("stale stay force-closed during flow recovery")
	}
	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("flow_id", stay.FlowID.String()).
		Str("location", loc.Code).
		Msg("flow opened")
	return stay, nil
}

// Move closes the patient's active stay and opens the next sequence at the
// new location, adjusting both room counters. From the ledger's point of
// view the transition is atomic: no reader observes zero or two active
// stays for the patient. With no active stay it reports ErrNoActiveStay
// and writes nothing.
func (s *Service) Move(ctx context.Context, patientID uuid.UUID, newLoc Location, newState string) (*Stay, error) {
	if newLoc.Code == "" {
		return nil, fmt.Errorf("location code is required")
	}
	if newState == "" {
		newState = StateOccupied
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	var next *Stay
	err := s.inTx(ctx, func(ctx context.Context) error {
		active, err := s.stays.GetActive(ctx, patientID)
		if err != nil {
			return err
		}
		if active == nil {
			return ErrNoActiveStay
		}

		now := time.Now()
		dur := minutesBetween(active.EnteredAt, now)
		if err := s.stays.Close(ctx, active.ID, active.State, now, dur); err != nil {
			return err
		}

		next = &Stay{
			FlowID:          active.FlowID,
			PatientID:       patientID,
			Sequence:        active.Sequence + 1,
			LocationCode:    newLoc.Code,
			LocationType:    newLoc.Type,
			LocationSubtype: newLoc.Subtype,
			State:           newState,
			Active:          true,
			EnteredAt:       now,
		}
		if err := s.stays.Create(ctx, next); err != nil {
			return err
		}

		if err := s.rooms.AdjustCapacity(ctx, active.LocationCode, +1); err != nil {
			return err
		}
		return s.rooms.AdjustCapacity(ctx, newLoc.Code, -1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("flow_id", next.FlowID.String()).
		Int("sequence", next.Sequence).
		Str("location", newLoc.Code).
		Msg("patient moved")
	return next, nil
}

// CloseFlow closes the active stay with a terminal state and no successor.
// With no active stay it reports ErrNoActiveStay and writes nothing.
func (s *Service) CloseFlow(ctx context.Context, patientID uuid.UUID, terminalState string) (*Stay, error) {
	if terminalState == "" {
		terminalState = StateDischarged
	}

	l := s.patientLock(patientID)
	l.Lock()
	defer l.Unlock()

	var closed *Stay
	err := s.inTx(ctx, func(ctx context.Context) error {
		active, err := s.stays.GetActive(ctx, patientID)
		if err != nil {
			return err
		}
		if active == nil {
			return ErrNoActiveStay
		}

		now := time.Now()
		dur := minutesBetween(active.EnteredAt, now)
		if err := s.stays.Close(ctx, active.ID, terminalState, now, dur); err != nil {
			return err
		}
		closed = active
		return s.rooms.AdjustCapacity(ctx, active.LocationCode, +1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("flow_id", closed.FlowID.String()).
		Str("state", terminalState).
		Msg("flow closed")
	return closed, nil
}

// GetActive returns the patient's active stay, or ErrNoActiveStay.
func (s *Service) GetActive(ctx context.Context, patientID uuid.UUID) (*Stay, error) {
	active, err := s.stays.GetActive(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveStay
	}
	return active, nil
}

func (s *Service) ListStaysByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Stay, int, error) {
	return s.stays.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListStaysByFlow(ctx context.Context, flowID uuid.UUID) ([]*Stay, error) {
	return s.stays.ListByFlow(ctx, flowID)
}

// -- Capacity --

// AdjustCapacity applies a manual correction to a room's available-slot
// counter. Negative results are preserved to record overbooking.
func (s *Service) AdjustCapacity(ctx context.Context, roomCode string, delta int) error {
	if roomCode == "" {
		return fmt.Errorf("room code is required")
	}
	return s.rooms.AdjustCapacity(ctx, roomCode, delta)
}

// -- Room directory --

// CreateRoom registers a room. availableSlots nil means "all slots free";
// an explicit value is kept as-is, zero included, so a room can be created
// already full.
func (s *Service) CreateRoom(ctx context.Context, r *Room, availableSlots *int) error {
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if r.Type == "" {
		return fmt.Errorf("type is required")
	}
	if availableSlots != nil {
		r.AvailableSlots = *availableSlots
	} else {
		r.AvailableSlots = r.TotalSlots
	}
	return s.rooms.Create(ctx, r)
}

func (s *Service) GetRoom(ctx context.Context, code string) (*Room, error) {
	return s.rooms.GetByCode(ctx, code)
}

func (s *Service) ListRooms(ctx context.Context) ([]*Room, error) {
	return s.rooms.List(ctx)
}

func (s *Service) UpdateRoom(ctx context.Context, r *Room) error {
	return s.rooms.Update(ctx, r)
}

// -- Consistency audit --

// Audit scans active stays against the room directory and logs each
// finding; it performs no mutation.
func (s *Service) Audit(ctx context.Context) ([]Finding, error) {
	findings, err := s.auditor.Audit(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range findings {
		s.logger.Warn().
			Str("patient_id", f.PatientID.String()).
			Str("location", f.LocationCode).
			Str("severity", f.Severity).
			Str("reason", f.Reason).
			Msg("flow consistency finding")
	}
	return findings, nil
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}
