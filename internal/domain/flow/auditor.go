package flow

import (
	"context"
	"fmt"
)

// Auditor flags active stays whose location reference no longer matches
// the room directory. A missing room is critical (the reference points at
// nothing); a deactivated room is high severity (the room exists but
// should hold no patients). Findings feed a manual correction workflow.
type Auditor struct {
	stays StayRepository
	rooms RoomRepository
}

func NewAuditor(stays StayRepository, rooms RoomRepository) *Auditor {
	return &Auditor{stays: stays, rooms: rooms}
}

func (a *Auditor) Audit(ctx context.Context) ([]Finding, error) {
	active, err := a.stays.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active stays: %w", err)
	}
	rooms, err := a.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	directory := make(map[string]*Room, len(rooms))
	for _, r := range rooms {
		directory[r.Code] = r
	}

	var findings []Finding
	for _, s := range active {
		room, ok := directory[s.LocationCode]
		switch {
		case !ok:
			findings = append(findings, Finding{
				PatientID:    s.PatientID,
				LocationCode: s.LocationCode,
				State:        s.State,
				Severity:     SeverityCritical,
				Reason:       "location missing from room directory",
				EnteredAt:    s.EnteredAt,
			})
		case !room.Active:
			findings = append(findings, Finding{
				PatientID:    s.PatientID,
				LocationCode: s.LocationCode,
				State:        s.State,
				Severity:     SeverityHigh,
				Reason:       "location is deactivated",
				EnteredAt:    s.EnteredAt,
			})
		}
	}
	return findings, nil
}
