package store

import (
	"context"
	"time"

	"carwash-backend/models"

	"github.com/google/uuid"
)

type CreateTicketInput struct {
	ShopID          uuid.UUID
	Day             string
	CustomerName    string
	VehicleNumber   string
	Phone           string
	CreatedByUserID *uuid.UUID
	CreatedAt       time.Time
}

type UpdateTicketInput struct {
	TicketID   uuid.UUID
	Status     *string
	ServiceBay *string
	Now        time.Time
}

// Store is the persistence boundary for tickets and the shop lookups
// the ticket endpoints need. CreateTicket allocates the daily token
// number internally and returns ErrConflictExhausted when the bounded
// retry budget is spent. UpdateTicket applies the transition guard and
// reports whether the status actually changed, decided under the same
// lock as the write so concurrent patches cannot both claim the
// transition.
type Store interface {
	CreateTicket(ctx context.Context, input CreateTicketInput) (models.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error)
	ListTickets(ctx context.Context, shopID uuid.UUID, status string) ([]models.Ticket, error)
	ListActiveTickets(ctx context.Context, shopID uuid.UUID, day string) ([]models.Ticket, error)
	ListTicketsByCreator(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error)
	UpdateTicket(ctx context.Context, input UpdateTicketInput) (models.Ticket, bool, error)
	DeleteTicket(ctx context.Context, id uuid.UUID) error
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetShop(ctx context.Context, id uuid.UUID) (models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
}

// MaxAllocateAttempts bounds the compare-and-insert retry loop in
// CreateTicket implementations.
const MaxAllocateAttempts = 5
