// Package memstore keeps the whole store in process memory. It mirrors
// the gormstore semantics exactly, including the compare-and-insert
// allocation loop against a uniqueness check, so handler and property
// tests can run without a database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"carwash-backend/models"
	"carwash-backend/store"

	"github.com/google/uuid"
)

type Store struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]models.Ticket
	shops   map[uuid.UUID]models.Shop
}

func New() *Store {
	return &Store{
		tickets: make(map[uuid.UUID]models.Ticket),
		shops:   make(map[uuid.UUID]models.Shop),
	}
}

// AddShop seeds a shop. Registration normally does this through gorm;
// tests call it directly.
func (s *Store) AddShop(shop models.Shop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shops[shop.ID] = shop
}

func (s *Store) CreateTicket(ctx context.Context, input store.CreateTicketInput) (models.Ticket, error) {
	for attempt := 0; attempt < store.MaxAllocateAttempts; attempt++ {
		number := s.maxNumber(input.ShopID, input.Day) + 1

		ticket := models.Ticket{
			ID:              uuid.New(),
			ShopID:          input.ShopID,
			Day:             input.Day,
			Number:          number,
			CustomerName:    input.CustomerName,
			VehicleNumber:   input.VehicleNumber,
			Phone:           input.Phone,
			CreatedByUserID: input.CreatedByUserID,
			Status:          models.StatusWaiting,
			CreatedAt:       input.CreatedAt,
		}

		if s.insertUnique(ticket) {
			return ticket, nil
		}
	}
	return models.Ticket{}, store.ErrConflictExhausted
}

// maxNumber and insertUnique take the lock separately on purpose: the
// gap between read and insert is where concurrent allocators collide,
// the same window the database store has between MAX(number) and the
// unique-index insert.
func (s *Store) maxNumber(shopID uuid.UUID, day string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := 0
	for _, t := range s.tickets {
		if t.ShopID == shopID && t.Day == day && t.Number > max {
			max = t.Number
		}
	}
	return max
}

func (s *Store) insertUnique(ticket models.Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.ShopID == ticket.ShopID && t.Day == ticket.Day && t.Number == ticket.Number {
			return false
		}
	}
	s.tickets[ticket.ID] = ticket
	return true
}

func (s *Store) GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[id]
	if !ok {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	return ticket, nil
}

func (s *Store) ListTickets(ctx context.Context, shopID uuid.UUID, status string) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []models.Ticket
	for _, t := range s.tickets {
		if t.ShopID != shopID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (s *Store) ListActiveTickets(ctx context.Context, shopID uuid.UUID, day string) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []models.Ticket
	for _, t := range s.tickets {
		if t.ShopID == shopID && t.Day == day && t.IsActive() {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].Number < tickets[j].Number
	})
	return tickets, nil
}

func (s *Store) ListTicketsByCreator(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []models.Ticket
	for _, t := range s.tickets {
		if t.CreatedByUserID != nil && *t.CreatedByUserID == userID {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (s *Store) UpdateTicket(ctx context.Context, input store.UpdateTicketInput) (models.Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[input.TicketID]
	if !ok {
		return models.Ticket{}, false, store.ErrTicketNotFound
	}

	// Terminal tickets accept no mutation of any kind, deletion aside.
	if ticket.IsTerminal() && input.ServiceBay != nil {
		return models.Ticket{}, false, store.ErrInvalidTransition
	}

	var changed bool
	if input.Status != nil {
		changed = *input.Status != ticket.Status
		if err := store.ApplyStatus(&ticket, *input.Status, input.Now); err != nil {
			return models.Ticket{}, false, err
		}
	}
	if input.ServiceBay != nil {
		ticket.ServiceBay = input.ServiceBay
	}

	s.tickets[ticket.ID] = ticket
	return ticket, changed, nil
}

func (s *Store) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[id]; !ok {
		return store.ErrTicketNotFound
	}
	delete(s.tickets, id)
	return nil
}

func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, t := range s.tickets {
		if t.IsTerminal() && t.CreatedAt.Before(cutoff) {
			delete(s.tickets, id)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) GetShop(ctx context.Context, id uuid.UUID) (models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return models.Shop{}, store.ErrShopNotFound
	}
	return shop, nil
}

func (s *Store) ListShops(ctx context.Context) ([]models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shops := make([]models.Shop, 0, len(s.shops))
	for _, shop := range s.shops {
		shops = append(shops, shop)
	}
	sort.Slice(shops, func(i, j int) bool {
		return shops[i].CreatedAt.Before(shops[j].CreatedAt)
	})
	return shops, nil
}
