// Package gormstore is the Postgres-backed store. The token allocator
// leans on the (shop_id, day, number) unique index: read the current
// max, insert max+1, and retry on a duplicate-key error from a
// concurrent writer.
package gormstore

import (
	"context"
	"errors"
	"time"

	"carwash-backend/models"
	"carwash-backend/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateTicket(ctx context.Context, input store.CreateTicketInput) (models.Ticket, error) {
	db := s.db.WithContext(ctx)

	for attempt := 0; attempt < store.MaxAllocateAttempts; attempt++ {
		var max int
		err := db.Model(&models.Ticket{}).
			Where("shop_id = ? AND day = ?", input.ShopID, input.Day).
			Select("COALESCE(MAX(number), 0)").
			Scan(&max).Error
		if err != nil {
			return models.Ticket{}, err
		}

		ticket := models.Ticket{
			ID:              uuid.New(),
			ShopID:          input.ShopID,
			Day:             input.Day,
			Number:          max + 1,
			CustomerName:    input.CustomerName,
			VehicleNumber:   input.VehicleNumber,
			Phone:           input.Phone,
			CreatedByUserID: input.CreatedByUserID,
			Status:          models.StatusWaiting,
			CreatedAt:       input.CreatedAt,
		}

		err = db.Create(&ticket).Error
		if err == nil {
			return ticket, nil
		}
		// A concurrent creator won the same number; read a fresh max
		// and try again. Requires TranslateError on the gorm config.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return models.Ticket{}, err
	}

	return models.Ticket{}, store.ErrConflictExhausted
}

func (s *Store) GetTicket(ctx context.Context, id uuid.UUID) (models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Ticket{}, store.ErrTicketNotFound
	}
	if err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) ListTickets(ctx context.Context, shopID uuid.UUID, status string) ([]models.Ticket, error) {
	query := s.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []models.Ticket
	if err := query.Order("created_at ASC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) ListActiveTickets(ctx context.Context, shopID uuid.UUID, day string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("shop_id = ? AND day = ? AND status IN ?", shopID, day,
			[]string{models.StatusWaiting, models.StatusInService}).
		Order("number ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *Store) ListTicketsByCreator(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("created_by_user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// UpdateTicket applies a status change through the transition guard
// and/or sets the service bay. The row is locked for the read-modify-
// write so two admins cannot interleave transitions; the returned flag
// says whether this call moved the status. Terminal tickets accept no
// mutation of any kind.
func (s *Store) UpdateTicket(ctx context.Context, input store.UpdateTicketInput) (models.Ticket, bool, error) {
	var ticket models.Ticket
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(forUpdate()).First(&ticket, "id = ?", input.TicketID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrTicketNotFound
		}
		if err != nil {
			return err
		}

		if ticket.IsTerminal() && input.ServiceBay != nil {
			return store.ErrInvalidTransition
		}

		if input.Status != nil {
			changed = *input.Status != ticket.Status
			if err := store.ApplyStatus(&ticket, *input.Status, input.Now); err != nil {
				return err
			}
		}
		if input.ServiceBay != nil {
			ticket.ServiceBay = input.ServiceBay
		}

		return tx.Save(&ticket).Error
	})
	if err != nil {
		return models.Ticket{}, false, err
	}
	return ticket, changed, nil
}

func (s *Store) DeleteTicket(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Ticket{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrTicketNotFound
	}
	return nil
}

func (s *Store) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]string{models.StatusCompleted, models.StatusCancelled}, cutoff).
		Delete(&models.Ticket{})
	return result.RowsAffected, result.Error
}

func (s *Store) GetShop(ctx context.Context, id uuid.UUID) (models.Shop, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).First(&shop, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Shop{}, store.ErrShopNotFound
	}
	if err != nil {
		return models.Shop{}, err
	}
	return shop, nil
}

func (s *Store) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}
