// Package router wires the flatwise HTTP handlers into a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/flatwise/internal/handler"
	"github.com/mmynk/flatwise/internal/metrics"
	"github.com/mmynk/flatwise/internal/middleware"
	"github.com/mmynk/flatwise/internal/service"
)

// Services bundles everything the routes call into.
type Services struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Flats        *service.FlatService
	Items        *service.ItemService
	Transactions *service.TransactionService
	Metrics      *metrics.Metrics
}

// Setup configures the gin engine. mode is a gin mode ("debug", "release", "test");
// empty keeps the current mode.
func Setup(mode string, s Services) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logging(), middleware.Metrics(s.Metrics), middleware.CORS())

	authHandler := handler.NewAuthHandler(s.Auth)
	userHandler := handler.NewUserHandler(s.Users)
	flatHandler := handler.NewFlatHandler(s.Flats)
	itemHandler := handler.NewItemHandler(s.Items)
	transactionHandler := handler.NewTransactionHandler(s.Transactions)
	exportHandler := handler.NewExportHandler(s.Users)

	// Public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	r.POST("/users", authHandler.Register)
	r.POST("/token", authHandler.Token)

	// Authenticated
	protected := r.Group("")
	protected.Use(middleware.RequireAuth(s.Auth, handler.Error))

	protected.GET("/me", authHandler.Me)

	protected.GET("/users", userHandler.List)
	protected.GET("/users/:id", userHandler.Get)
	protected.PATCH("/users/:id", userHandler.Update)
	protected.DELETE("/users/:id", userHandler.Delete)
	protected.GET("/users/:id/transactions", userHandler.Transactions)
	protected.GET("/users/:id/balances", userHandler.Balances)

	protected.POST("/flats", flatHandler.Create)
	protected.GET("/flats", flatHandler.List)
	protected.GET("/flats/:id", flatHandler.Get)
	protected.PATCH("/flats/:id", flatHandler.Update)
	protected.DELETE("/flats/:id", flatHandler.Delete)
	protected.GET("/flats/:id/balances", flatHandler.Balances)
	protected.POST("/flats/:id/move_in/:user_id", flatHandler.MoveIn)
	protected.POST("/flats/:id/move_out/:user_id", flatHandler.MoveOut)

	protected.POST("/items", itemHandler.Create)
	protected.GET("/items", itemHandler.List)
	protected.GET("/items/:id", itemHandler.Get)
	protected.PATCH("/items/:id", itemHandler.Update)
	protected.DELETE("/items/:id", itemHandler.Delete)
	protected.GET("/items/:id/transactions", itemHandler.Transactions)
	protected.GET("/items/:id/value", itemHandler.Value)
	protected.PATCH("/items/:id/add/:user_id", itemHandler.AddUser)
	protected.PATCH("/items/:id/remove/:user_id", itemHandler.RemoveUser)

	protected.POST("/transactions", transactionHandler.Create)
	protected.PATCH("/transactions/:id", transactionHandler.Pay)
	protected.GET("/transactions/:id/debts", userHandler.Debts)
	protected.GET("/transactions/:id/credits", userHandler.Credits)
	protected.GET("/transactions/:id/export.xlsx", exportHandler.Export)

	return r
}
