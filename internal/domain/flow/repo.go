package flow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type StayRepository interface {
	Create(ctx context.Context, s *Stay) error
	// Close stamps the exit time and duration on a stay and clears its
	// active flag. The stay is immutable afterwards.
	Close(ctx context.Context, id uuid.UUID, state string, exitedAt time.Time, durationMinutes int) error
	GetActive(ctx context.Context, patientID uuid.UUID) (*Stay, error)
	ListActive(ctx context.Context) ([]*Stay, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Stay, int, error)
	ListByFlow(ctx context.Context, flowID uuid.UUID) ([]*Stay, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	GetByCode(ctx context.Context, code string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
	Update(ctx context.Context, r *Room) error
	// AdjustCapacity mutates available_slots by delta with no lower bound.
	AdjustCapacity(ctx context.Context, code string, delta int) error
}
