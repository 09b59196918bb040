package api

import (
	"net/http"
	"strconv"
	"time"

	"bistro/internal/config"
	"bistro/internal/live"
	"bistro/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// API represents the main HTTP handler for the ordering service
type API struct {
	Router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	hub    *live.Hub
}

// New creates the API, wires middleware and registers all routes.
func New(db *gorm.DB, cfg *config.Config, hub *live.Hub) *API {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), measure())

	a := &API{
		Router: router,
		db:     db,
		cfg:    cfg,
		hub:    hub,
	}

	a.setupRoutes()
	return a
}

// setupRoutes configures all API endpoints
func (a *API) setupRoutes() {
	r := a.Router

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Accounts and token exchange
	r.POST("/users", a.Register)
	r.POST("/token/login", a.Login)
	r.GET("/users/me", a.Authenticate(), a.Me)

	// Catalog reads, open to anonymous callers when public_menu is set
	read := r.Group("/")
	if a.cfg.PublicMenu {
		read.Use(a.MaybeAuthenticate())
	} else {
		read.Use(a.Authenticate())
	}
	{
		read.GET("/categories", a.ListCategories)
		read.GET("/categories/:id", a.GetCategory)
		read.GET("/menu-items", a.ListMenuItems)
		read.GET("/menu-items/:id", a.GetMenuItem)
	}

	// Catalog mutations
	catalog := r.Group("/", a.Authenticate(), a.Require(isAdminOrManager))
	{
		catalog.POST("/categories", a.CreateCategory)
		catalog.PUT("/categories/:id", a.UpdateCategory)
		catalog.PATCH("/categories/:id", a.UpdateCategory)
		catalog.DELETE("/categories/:id", a.DeleteCategory)
		catalog.POST("/menu-items", a.CreateMenuItem)
		catalog.PUT("/menu-items/:id", a.UpdateMenuItem)
		catalog.PATCH("/menu-items/:id", a.UpdateMenuItem)
		catalog.DELETE("/menu-items/:id", a.DeleteMenuItem)
	}

	// Cart
	cart := r.Group("/cart", a.Authenticate())
	{
		cart.GET("/menu-items", a.ListCart)
		cart.POST("/menu-items", a.AddToCart)
		cart.DELETE("/menu-items/clear", a.ClearCart)
	}

	// Orders
	orders := r.Group("/orders", a.Authenticate())
	{
		orders.GET("", a.ListOrders)
		orders.POST("", a.CreateOrder)
		orders.GET("/:order_id", a.GetOrder)
		orders.PUT("/:order_id", a.UpdateOrder)
		orders.PATCH("/:order_id", a.UpdateOrder)
		orders.DELETE("/:order_id", a.DeleteOrder)
	}

	// Staff group management
	manager := r.Group("/groups/manager/users", a.Authenticate(), a.Require(isAdminOrManager))
	{
		manager.GET("", a.listGroupUsers(groupManagers))
		manager.POST("", a.addGroupUser(groupManagers))
		manager.DELETE("/:id", a.removeGroupUser(groupManagers))
	}
	crew := r.Group("/groups/delivery-crew/users", a.Authenticate(), a.Require(isManagerOrDeliveryCrew))
	{
		crew.GET("", a.listGroupUsers(groupDeliveryCrew))
		crew.POST("", a.addGroupUser(groupDeliveryCrew))
		crew.DELETE("/:id", a.removeGroupUser(groupDeliveryCrew))
	}

	// Live order feed
	if a.hub != nil {
		r.GET("/ws/orders", a.Authenticate(), a.hub.Handle)
	}
}

// measure records request durations for prometheus.
func measure() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
