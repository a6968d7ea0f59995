package queue

import (
	"testing"
	"time"

	"carwash-backend/models"
)

func ticket(number int, status string, startedAt *time.Time) models.Ticket {
	return models.Ticket{Number: number, Status: status, StartedAt: startedAt}
}

func TestActiveOrdering(t *testing.T) {
	// 1 COMPLETED, 2 WAITING, 3 IN_SERVICE, 4 WAITING. Listed out of
	// order on purpose, the projector must sort by number.
	now := time.Now()
	tickets := []models.Ticket{
		ticket(4, models.StatusWaiting, nil),
		ticket(1, models.StatusCompleted, &now),
		ticket(3, models.StatusInService, &now),
		ticket(2, models.StatusWaiting, nil),
	}

	active := Active(tickets)
	if len(active) != 3 {
		t.Fatalf("got %d active tickets, want 3", len(active))
	}

	var waiting []int
	for _, a := range active {
		if a.Status == models.StatusWaiting {
			waiting = append(waiting, a.Number)
		}
	}
	if len(waiting) != 2 || waiting[0] != 2 || waiting[1] != 4 {
		t.Fatalf("waiting order = %v, want [2 4]", waiting)
	}

	summary := Summarize(tickets)
	if summary.WaitingCount != 3 {
		t.Fatalf("waitingCount = %d, want 3", summary.WaitingCount)
	}
	if summary.CurrentInServiceToken == nil || *summary.CurrentInServiceToken != 3 {
		t.Fatalf("currentInServiceToken = %v, want 3", summary.CurrentInServiceToken)
	}
}

func TestSummarizeEmptyQueue(t *testing.T) {
	summary := Summarize(nil)
	if summary.WaitingCount != 0 {
		t.Fatalf("waitingCount = %d, want 0", summary.WaitingCount)
	}
	if summary.CurrentInServiceToken != nil {
		t.Fatalf("currentInServiceToken = %v, want nil", summary.CurrentInServiceToken)
	}
}

func TestSummarizeTieBreak(t *testing.T) {
	// Two tickets marked IN_SERVICE (guard should prevent this, the
	// projector handles it anyway): earliest startedAt wins.
	early := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(10 * time.Minute)

	summary := Summarize([]models.Ticket{
		ticket(5, models.StatusInService, &late),
		ticket(7, models.StatusInService, &early),
	})
	if summary.CurrentInServiceToken == nil || *summary.CurrentInServiceToken != 7 {
		t.Fatalf("currentInServiceToken = %v, want 7 (earliest startedAt)", summary.CurrentInServiceToken)
	}

	// Same startedAt: lowest number wins.
	summary = Summarize([]models.Ticket{
		ticket(9, models.StatusInService, &early),
		ticket(4, models.StatusInService, &early),
	})
	if summary.CurrentInServiceToken == nil || *summary.CurrentInServiceToken != 4 {
		t.Fatalf("currentInServiceToken = %v, want 4 (lowest number)", summary.CurrentInServiceToken)
	}
}
