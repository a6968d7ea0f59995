// Package queue derives the live queue view from a day's active
// tickets. It is recomputed on every poll, so everything here is a pure
// function over the slice the store returns.
package queue

import (
	"sort"

	"carwash-backend/models"
)

type Summary struct {
	WaitingCount          int  `json:"waitingCount"`
	CurrentInServiceToken *int `json:"currentInServiceToken"`
}

// Active filters to WAITING and IN_SERVICE tickets ordered by ascending
// number. Numbers are the persisted allocation, never recomputed from
// rank, so a ticket keeps its printed token while others finish.
func Active(tickets []models.Ticket) []models.Ticket {
	active := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Number < active[j].Number
	})
	return active
}

// Summarize computes the shop-card view: how many tickets are still in
// the queue and which number is on the bay right now. More than one
// IN_SERVICE ticket should not happen, but if it does the earliest
// startedAt wins, then the lowest number.
func Summarize(tickets []models.Ticket) Summary {
	summary := Summary{}
	var current *models.Ticket

	for i := range tickets {
		t := tickets[i]
		if !t.IsActive() {
			continue
		}
		summary.WaitingCount++

		if t.Status != models.StatusInService {
			continue
		}
		if current == nil || startedBefore(t, *current) {
			current = &tickets[i]
		}
	}

	if current != nil {
		number := current.Number
		summary.CurrentInServiceToken = &number
	}
	return summary
}

func startedBefore(a, b models.Ticket) bool {
	switch {
	case a.StartedAt == nil && b.StartedAt == nil:
		return a.Number < b.Number
	case a.StartedAt == nil:
		return false
	case b.StartedAt == nil:
		return true
	case a.StartedAt.Equal(*b.StartedAt):
		return a.Number < b.Number
	default:
		return a.StartedAt.Before(*b.StartedAt)
	}
}
