package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/handlers"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

func RegisterRoutes(router *gin.Engine, orderService *service.OrderService) {
	orderHandler := handlers.NewOrderHandler(orderService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.PlaceOrder)
		api.DELETE("/orders/:id", orderHandler.CancelOrder)
		api.GET("/orders/:id", orderHandler.GetOrderStatus)
		api.GET("/orders", orderHandler.ListUserOrders)
		api.GET("/orderbook", orderHandler.GetOrderBook)
		api.GET("/trades", orderHandler.ListTrades)

		api.GET("/bonds", orderHandler.ListBonds)
		api.POST("/bonds", orderHandler.CreateBond)
		api.GET("/bonds/:id", orderHandler.GetBond)

		api.POST("/users", orderHandler.CreateUser)
		api.GET("/portfolio/:userId", orderHandler.GetPortfolio)
	}
}
