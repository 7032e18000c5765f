package flow

import (
	"time"

	"github.com/google/uuid"
)

// Stay states. A stay opens in StateOccupied (or whatever state the move
// supplies) and is terminal once Active is false.
const (
	StateWaiting    = "waiting"
	StateOccupied   = "occupied"
	StateInTransit  = "in_transit"
	StateDischarged = "discharged"
	StateRecovered  = "recovered" // force-closed by an explicit recovery action
)

// Stay is one contiguous interval a patient spends at a single location.
// Stays form an append-only, sequence-numbered chain per flow; a closed
// stay is never edited again. At most one stay per patient is active at
// any instant.
type Stay struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	FlowID          uuid.UUID  `db:"flow_id" json:"flow_id"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	Sequence        int        `db:"sequence" json:"sequence"`
	LocationCode    string     `db:"location_code" json:"location_code"`
	LocationType    string     `db:"location_type" json:"location_type"`
	LocationSubtype *string    `db:"location_subtype" json:"location_subtype,omitempty"`
	State           string     `db:"state" json:"state"`
	Active          bool       `db:"active" json:"active"`
	EnteredAt       time.Time  `db:"entered_at" json:"entered_at"`
	ExitedAt        *time.Time `db:"exited_at" json:"exited_at,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Note            *string    `db:"note" json:"note,omitempty"`
}

// Location identifies a care location a stay points at.
type Location struct {
	Code    string  `json:"code"`
	Type    string  `json:"type"`
	Subtype *string `json:"subtype,omitempty"`
}

// Room is one entry of the room directory, including its capacity
// counters. AvailableSlots is adjusted independently on each transition
// and may go negative: overbooking is intentional and preserved.
type Room struct {
	Code           string    `db:"code" json:"code"`
	Type           string    `db:"type" json:"type"`
	Subtype        *string   `db:"subtype" json:"subtype,omitempty"`
	TotalSlots     int       `db:"total_slots" json:"total_slots"`
	AvailableSlots int       `db:"available_slots" json:"available_slots"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Finding severities reported by the consistency audit.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
)

// Finding flags an active stay whose location reference is stale or
// invalid. Findings are produced for manual correction; the audit itself
// mutates nothing.
type Finding struct {
	PatientID    uuid.UUID `json:"patient_id"`
	LocationCode string    `json:"location_code"`
	State        string    `json:"state"`
	Severity     string    `json:"severity"`
	Reason       string    `json:"reason"`
	EnteredAt    time.Time `json:"entered_at"`
}
