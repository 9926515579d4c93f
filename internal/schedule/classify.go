package schedule

import (
	"strings"

	"github.com/google/uuid"
)

// Slot is a requested [Start, End) interval on one day.
type Slot struct {
	Date  Date
	Start Clock
	End   Clock
}

// Occupant is an appointment already booked in the same day and service line.
type Occupant struct {
	ID          uuid.UUID
	PatientName string
	Start       Clock
	End         Clock
	Cancelled   bool
}

type Verdict int

const (
	Free Verdict = iota
	Reclaimable
	RejectExact
	RejectOverlap
)

func (v Verdict) String() string {
	switch v {
	case Free:
		return "free"
	case Reclaimable:
		return "reclaimable"
	case RejectExact:
		return "exact"
	case RejectOverlap:
		return "overlap"
	default:
		return "unknown"
	}
}

// Classification is the outcome of Classify. Reclaim lists the cancelled
// appointments sitting on the exact start time; Occupant is set on rejection.
type Classification struct {
	Verdict  Verdict
	Reclaim  []uuid.UUID
	Occupant *Occupant
}

// Overlaps reports whether [start, end) collides with the existing [s, e).
func Overlaps(start, end, s, e Clock) bool {
	return (s <= start && start < e) ||
		(s < end && end <= e) ||
		(start <= s && e <= end)
}

// Classify decides whether slot can be booked on a calendar holding
// occupants. Occupants must already be scoped to the slot's date and
// service line and must not include the appointment being edited.
func Classify(slot Slot, occupants []Occupant) Classification {
	var reclaim []uuid.UUID
	for i := range occupants {
		o := occupants[i]
		if o.Start != slot.Start {
			continue
		}
		if !o.Cancelled {
			return Classification{Verdict: RejectExact, Occupant: &o}
		}
		reclaim = append(reclaim, o.ID)
	}

	if o := FindOverlap(slot, occupants); o != nil {
		return Classification{Verdict: RejectOverlap, Occupant: o}
	}

	if len(reclaim) > 0 {
		return Classification{Verdict: Reclaimable, Reclaim: reclaim}
	}
	return Classification{Verdict: Free}
}

// FindOverlap returns the first active occupant whose interval collides
// with slot, or nil.
func FindOverlap(slot Slot, occupants []Occupant) *Occupant {
	for i := range occupants {
		o := occupants[i]
		if o.Cancelled {
			continue
		}
		if Overlaps(slot.Start, slot.End, o.Start, o.End) {
			return &o
		}
	}
	return nil
}

// DisplayName joins a patient's first and last name for conflict messages.
func DisplayName(first, last string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return "Unknown"
	}
	return name
}
