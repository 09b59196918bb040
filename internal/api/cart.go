package api

import (
	"net/http"

	"bistro/internal/authz"
	"bistro/internal/metrics"
	"bistro/internal/models"
	"bistro/internal/ordering"

	"github.com/gin-gonic/gin"
)

type cartLineView struct {
	ID         uint    `json:"id"`
	MenuItemID uint    `json:"menu_item_id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Subtotal   float64 `json:"subtotal"`
}

func viewCartLine(l *models.CartLine) cartLineView {
	return cartLineView{
		ID:         l.ID,
		MenuItemID: l.MenuItemID,
		Title:      l.MenuItem.Title,
		Quantity:   l.Quantity,
		UnitPrice:  l.MenuItem.Price,
		Subtotal:   l.Subtotal(),
	}
}

// ListCart returns the caller's cart lines with the derived count and
// total. Staff see every line in the system.
func (a *API) ListCart(c *gin.Context) {
	user := a.currentUser(c)

	var lines []models.CartLine
	query := authz.ScopeCartLines(a.db.Preload("MenuItem"), user)
	if err := query.Find(&lines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	views := make([]cartLineView, 0, len(lines))
	for i := range lines {
		views = append(views, viewCartLine(&lines[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(lines),
		"total": ordering.Total(lines),
		"lines": views,
	})
}

// AddToCart folds the requested quantity into the caller's open order,
// creating the order on a first add.
func (a *API) AddToCart(c *gin.Context) {
	user := a.currentUser(c)

	var req struct {
		MenuItemID uint `json:"menu_item_id"`
		Quantity   *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, order, created, err := ordering.AddToCart(a.db, user.ID, req.MenuItemID, quantity)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	metrics.CartAdds.Inc()
	if created {
		metrics.OrdersOpened.Inc()
		if a.hub != nil {
			a.hub.Publish("order_opened", order.OrderID)
		}
	}

	c.JSON(http.StatusOK, viewCartLine(line))
}

// ClearCart deletes every line on the caller's orders. Safe to repeat.
func (a *API) ClearCart(c *gin.Context) {
	user := a.currentUser(c)
	if err := ordering.ClearCart(a.db, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "cart cleared"})
}
