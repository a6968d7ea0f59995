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

type ShopController struct {
	Store store.Store
}

// ShopSummary is the public shop card: the shop plus today's queue
// counters.
type ShopSummary struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Address               string    `json:"address"`
	ManagerUserID         uuid.UUID `json:"managerUserId"`
	WaitingCount          int       `json:"waitingCount"`
	CurrentInServiceToken *int      `json:"currentInServiceToken"`
	CreatedAt             time.Time `json:"createdAt"`
}

// GetShops lists every shop with its live queue summary.
func (sc *ShopController) GetShops(c *gin.Context) {
	shops, err := sc.Store.ListShops(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shops")
		return
	}

	day := utils.Today()
	summaries := make([]ShopSummary, 0, len(shops))
	for _, shop := range shops {
		summary, err := sc.summarize(c, shop, day)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve queue state")
			return
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, summaries)
}

// GetShop returns a single shop with its queue summary.
func (sc *ShopController) GetShop(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid shop ID format")
		return
	}

	shop, err := sc.Store.GetShop(c.Request.Context(), shopID)
	if err != nil {
		if errors.Is(err, store.ErrShopNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	summary, err := sc.summarize(c, shop, utils.Today())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve queue state")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (sc *ShopController) summarize(c *gin.Context, shop models.Shop, day string) (ShopSummary, error) {
	tickets, err := sc.Store.ListActiveTickets(c.Request.Context(), shop.ID, day)
	if err != nil {
		return ShopSummary{}, err
	}
	q := queue.Summarize(tickets)

	return ShopSummary{
		ID:                    shop.ID,
		Name:                  shop.Name,
		Address:               shop.Address,
		ManagerUserID:         shop.ManagerUserID,
		WaitingCount:          q.WaitingCount,
		CurrentInServiceToken: q.CurrentInServiceToken,
		CreatedAt:             shop.CreatedAt,
	}, nil
}
