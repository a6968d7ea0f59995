package controllers

import (
	"errors"
	"net/http"
	"time"

	"carwash-backend/models"
	"carwash-backend/queue"
	"carwash-backend/store"
	"carwash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatusNotifier is told when a ticket enters service. Implemented by
// services.NotifyService; nil disables notifications.
type StatusNotifier interface {
	TicketStarted(ticket models.Ticket)
}

type TicketController struct {
	Store    store.Store
	Notifier StatusNotifier
}

// CreateTicketInput defines the expected JSON structure for issuing a token
type CreateTicketInput struct {
	ShopID        string `json:"shopId" binding:"required"`
	CustomerName  string `json:"customerName"`
	VehicleNumber string `json:"vehicleNumber"`
	Phone         string `json:"phone"`
}

// UpdateTicketStatusInput defines the expected JSON structure for a status patch
type UpdateTicketStatusInput struct {
	Status     *string `json:"status"`
	ServiceBay *string `json:"serviceBay"`
}

// CreateTicket issues the next daily token for a shop. Walk-ins need no
// credential; an authenticated customer gets the ticket attached to
// their account.
func (tc *TicketController) CreateTicket(c *gin.Context) {
	var input CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	shopID, err := uuid.Parse(input.ShopID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid shop ID format")
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	if _, err := tc.Store.GetShop(c.Request.Context(), shopID); err != nil {
		if errors.Is(err, store.ErrShopNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Optional identity: anonymous walk-ins fall back to "Guest".
	var createdBy *uuid.UUID
	customerName := input.CustomerName
	if userID, exists := c.Get("userId"); exists {
		if parsed, err := uuid.Parse(userID.(string)); err == nil {
			createdBy = &parsed
		}
		if customerName == "" {
			if email, ok := c.Get("email"); ok {
				customerName, _ = email.(string)
			}
		}
	}
	if customerName == "" {
		customerName = "Guest"
	}

	ticket, err := tc.Store.CreateTicket(c.Request.Context(), store.CreateTicketInput{
		ShopID:          shopID,
		Day:             utils.Today(),
		CustomerName:    customerName,
		VehicleNumber:   input.VehicleNumber,
		Phone:           input.Phone,
		CreatedByUserID: createdBy,
		CreatedAt:       time.Now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflictExhausted) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Could not allocate a token number, please retry")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket")
		}
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// GetTickets lists tickets for the admin's own shop, optionally
// filtered by status.
func (tc *TicketController) GetTickets(c *gin.Context) {
	shopID, ok := actorShopID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusForbidden, "No shop assigned to this account")
		return
	}

	status := c.Query("status")
	if status != "" && !models.ValidStatus(status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown status filter")
		return
	}

	tickets, err := tc.Store.ListTickets(c.Request.Context(), shopID, status)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// GetQueue is the public poll endpoint for display screens: today's
// active tickets for a shop, plus the waiting count and the number
// currently in service.
func (tc *TicketController) GetQueue(c *gin.Context) {
	shopParam := c.Query("shopId")
	if shopParam == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "shopId query parameter is required")
		return
	}
	shopID, err := uuid.Parse(shopParam)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid shop ID format")
		return
	}

	day := utils.Today()
	tickets, err := tc.Store.ListActiveTickets(c.Request.Context(), shopID, day)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve queue")
		return
	}

	active := queue.Active(tickets)
	summary := queue.Summarize(tickets)

	c.JSON(http.StatusOK, gin.H{
		"shopId":                shopID,
		"day":                   day,
		"tickets":               active,
		"waitingCount":          summary.WaitingCount,
		"currentInServiceToken": summary.CurrentInServiceToken,
	})
}

// UpdateTicketStatus applies a status transition and/or assigns a
// service bay. Admins may only touch tickets of their own shop.
func (tc *TicketController) UpdateTicketStatus(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID format")
		return
	}

	var input UpdateTicketStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if _, ok := tc.ownedTicket(c, ticketID); !ok {
		return
	}

	updated, statusChanged, err := tc.Store.UpdateTicket(c.Request.Context(), store.UpdateTicketInput{
		TicketID:   ticketID,
		Status:     input.Status,
		ServiceBay: input.ServiceBay,
		Now:        time.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidTransition):
			utils.RespondWithError(c, http.StatusConflict, "Invalid status transition")
		case errors.Is(err, store.ErrTicketNotFound):
			utils.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket")
		}
		return
	}

	// statusChanged comes from the store's locked read-modify-write, so
	// of two concurrent IN_SERVICE patches only the winner notifies.
	if tc.Notifier != nil && statusChanged && updated.Status == models.StatusInService {
		go tc.Notifier.TicketStarted(updated)
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTicket removes a ticket entirely (the admin "clear" action).
func (tc *TicketController) DeleteTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID format")
		return
	}

	if _, ok := tc.ownedTicket(c, ticketID); !ok {
		return
	}

	if err := tc.Store.DeleteTicket(c.Request.Context(), ticketID); err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ticket")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket deleted successfully"})
}

// ownedTicket loads the ticket and enforces that it belongs to the
// acting admin's shop. Writes the error response itself on failure.
func (tc *TicketController) ownedTicket(c *gin.Context, ticketID uuid.UUID) (models.Ticket, bool) {
	shopID, ok := actorShopID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusForbidden, "No shop assigned to this account")
		return models.Ticket{}, false
	}

	ticket, err := tc.Store.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Ticket not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return models.Ticket{}, false
	}

	if ticket.ShopID != shopID {
		utils.RespondWithError(c, http.StatusForbidden, "Ticket belongs to another shop")
		return models.Ticket{}, false
	}
	return ticket, true
}

func actorShopID(c *gin.Context) (uuid.UUID, bool) {
	claim, exists := c.Get("shopId")
	if !exists {
		return uuid.Nil, false
	}
	raw, ok := claim.(string)
	if !ok {
		return uuid.Nil, false
	}
	shopID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return shopID, true
}
