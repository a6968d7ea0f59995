package controllers

import (
	"net/http"

	"carwash-backend/store"
	"carwash-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderController struct {
	Store store.Store
}

// GetUserOrders returns the authenticated customer's ticket history,
// newest first.
func (oc *OrderController) GetUserOrders(c *gin.Context) {
	claim, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(claim.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	tickets, err := oc.Store.ListTicketsByCreator(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, tickets)
}
