package store

import (
	"time"

	"carwash-backend/models"
)

// Allowed predecessor states per target status. COMPLETED and CANCELLED
// never appear as a target's predecessor once reached, which makes them
// terminal.
var transitionMap = map[string][]string{
	models.StatusInService: {models.StatusWaiting},
	models.StatusCompleted: {models.StatusInService},
	models.StatusCancelled: {models.StatusWaiting, models.StatusInService},
}

// ValidTransition reports whether a ticket may move from one status to
// another. Re-entering the current status is always allowed; ApplyStatus
// treats it as a no-op.
func ValidTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitionMap[to]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// ApplyStatus moves the ticket to the requested status, stamping
// startedAt/completedAt on first entry only. Timestamps are set-once:
// repeating a transition never overwrites them.
func ApplyStatus(t *models.Ticket, to string, now time.Time) error {
	if !models.ValidStatus(to) || !ValidTransition(t.Status, to) {
		return ErrInvalidTransition
	}

	t.Status = to

	if to == models.StatusInService && t.StartedAt == nil {
		ts := now
		t.StartedAt = &ts
	}
	if to == models.StatusCompleted && t.CompletedAt == nil {
		ts := now
		t.CompletedAt = &ts
	}
	return nil
}
