package routes

import (
	"net/http"
	"os"
	"strings"

	"carwash-backend/config"
	"carwash-backend/controllers"
	"carwash-backend/models"
	"carwash-backend/store"
	"carwash-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(st store.Store, notifier controllers.StatusNotifier) *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	// Health check
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Car Wash Token & Queue API is running")
	})

	tickets := &controllers.TicketController{Store: st, Notifier: notifier}
	shops := &controllers.ShopController{Store: st}
	orders := &controllers.OrderController{Store: st}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/me", utils.AuthMiddleware(), controllers.Me)
		}

		// Issue new token - walk-ins allowed, customers get history
		api.POST("/tickets", utils.OptionalAuth(), tickets.CreateTicket)

		// Today's active queue for a shop - public, polled by displays
		api.GET("/queue", tickets.GetQueue)

		// Public shop directory with queue summaries
		api.GET("/shops", shops.GetShops)
		api.GET("/shops/:id", shops.GetShop)

		// Customer's own ticket history
		api.GET("/orders", utils.AuthMiddleware(), orders.GetUserOrders)

		admin := api.Group("", utils.AuthMiddleware(), utils.RequireRole(models.RoleAdmin))
		{
			admin.GET("/tickets", tickets.GetTickets)
			admin.PATCH("/tickets/:id/status", tickets.UpdateTicketStatus)
			admin.DELETE("/tickets/:id", tickets.DeleteTicket)
		}
	}

	return r
}
