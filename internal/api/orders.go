package api

import (
	"net/http"

	"bistro/internal/authz"
	"bistro/internal/metrics"
	"bistro/internal/models"
	"bistro/internal/ordering"

	"github.com/gin-gonic/gin"
)

type orderView struct {
	OrderID        string   `json:"order_id"`
	CustomerID     uint     `json:"customer_id"`
	DeliveryCrewID *uint    `json:"delivery_crew_id"`
	Status         bool     `json:"status"`
	Items          []string `json:"items"`
	Total          float64  `json:"total"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// viewOrder builds the derived representation: items and total are computed
// from live cart lines at current menu prices on every call.
func (a *API) viewOrder(order *models.Order) (orderView, error) {
	lines, err := ordering.LoadLines(a.db, order.ID)
	if err != nil {
		return orderView{}, err
	}
	return orderView{
		OrderID:        order.OrderID,
		CustomerID:     order.CustomerID,
		DeliveryCrewID: order.DelivererID,
		Status:         order.Delivered,
		Items:          ordering.Displays(lines),
		Total:          ordering.Total(lines),
		CreatedAt:      order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      order.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}

// ListOrders returns the orders visible to the caller: managers see all,
// delivery crew their assignments, customers their own.
func (a *API) ListOrders(c *gin.Context) {
	user := a.currentUser(c)

	var orders []models.Order
	if err := authz.ScopeOrders(a.db, user).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		view, err := a.viewOrder(&orders[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, views)
}

// CreateOrder resolves or creates the caller's open order. 201 when a new
// order was opened, 200 when the existing one was returned.
func (a *API) CreateOrder(c *gin.Context) {
	user := a.currentUser(c)

	order, created, err := ordering.OpenOrderFor(a.db, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	view, err := a.viewOrder(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		metrics.OrdersOpened.Inc()
		if a.hub != nil {
			a.hub.Publish("order_opened", order.OrderID)
		}
	}
	c.JSON(status, view)
}

// findVisibleOrder looks an order up by its opaque token within the
// caller's visibility scope. Invisible orders read as not found.
func (a *API) findVisibleOrder(c *gin.Context, user *models.User) (*models.Order, bool) {
	var order models.Order
	err := authz.ScopeOrders(a.db, user).
		Where("order_id = ?", c.Param("order_id")).
		First(&order).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "order not found"})
		return nil, false
	}
	return &order, true
}

func (a *API) GetOrder(c *gin.Context) {
	user := a.currentUser(c)
	order, ok := a.findVisibleOrder(c, user)
	if !ok {
		return
	}
	view, err := a.viewOrder(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateOrder handles deliverer assignment (managers) and the delivered
// transition (managers or the order's assigned crew member).
func (a *API) UpdateOrder(c *gin.Context) {
	user := a.currentUser(c)
	order, ok := a.findVisibleOrder(c, user)
	if !ok {
		return
	}

	var req struct {
		DeliveryCrewID *uint `json:"delivery_crew_id"`
		Status         *bool `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if req.DeliveryCrewID != nil {
		if !authz.IsAdminOrManager(user) {
			c.JSON(http.StatusForbidden, gin.H{"detail": "only managers may assign delivery crew"})
			return
		}
		if err := ordering.AssignDeliverer(a.db, order, *req.DeliveryCrewID); err != nil {
			writeDomainError(c, err)
			return
		}
		if a.hub != nil {
			a.hub.Publish("crew_assigned", order.OrderID)
		}
	}

	if req.Status != nil {
		if !*req.Status {
			c.JSON(http.StatusBadRequest, gin.H{"status": []string{"a delivered order cannot be reopened"}})
			return
		}
		assignedCrew := user.InGroup(models.GroupDeliveryCrew) &&
			order.DelivererID != nil && *order.DelivererID == user.ID
		if !authz.IsAdminOrManager(user) && !assignedCrew {
			c.JSON(http.StatusForbidden, gin.H{"detail": "only managers or the assigned crew member may mark delivery"})
			return
		}
		if err := ordering.MarkDelivered(a.db, order); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		metrics.OrdersDelivered.Inc()
		if a.hub != nil {
			a.hub.Publish("order_delivered", order.OrderID)
		}
	}

	view, err := a.viewOrder(order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteOrder removes an order. Customers cannot delete orders, not even
// their own.
func (a *API) DeleteOrder(c *gin.Context) {
	user := a.currentUser(c)
	if !authz.IsAdminOrManager(user) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "you do not have permission to perform this action"})
		return
	}
	order, ok := a.findVisibleOrder(c, user)
	if !ok {
		return
	}
	if err := a.db.Delete(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "order deleted"})
}
