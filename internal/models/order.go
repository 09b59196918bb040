package models

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
)

// Order is the container a customer's cart lines live in. An order with
// Delivered=false is the customer's open cart; at most one open order per
// customer exists (backed by a partial unique index, see database.Migrate).
// Totals are never stored on the order: they are recomputed from live cart
// lines and current menu prices on every read.
type Order struct {
	gorm.Model
	OrderID     string     `gorm:"unique_index;not null" json:"order_id"`
	CustomerID  uint       `gorm:"index;not null" json:"customer_id"`
	Customer    User       `json:"-"`
	DelivererID *uint      `gorm:"index" json:"delivery_crew_id"`
	Deliverer   *User      `gorm:"foreignkey:DelivererID" json:"-"`
	Delivered   bool       `gorm:"index" json:"status"`
	Lines       []CartLine `gorm:"foreignkey:OrderID" json:"-"`
}

// CartLine links an order to a menu item with a quantity. The
// (order, menu item) pair is unique: re-adding an item bumps the quantity
// of the existing line instead of inserting a second row. Lines delete for
// real rather than soft-delete: a tombstone would keep occupying the
// unique index and block re-adding the item after a cart clear.
type CartLine struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	OrderID    uint      `gorm:"unique_index:idx_order_item;not null" json:"order_id"`
	MenuItemID uint      `gorm:"unique_index:idx_order_item;not null" json:"menu_item_id"`
	MenuItem   MenuItem  `json:"-"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Subtotal is the line's price at current menu prices. Never persisted.
func (l *CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.MenuItem.Price
}

// Display renders the line the way order listings show it.
func (l *CartLine) Display() string {
	return fmt.Sprintf("%d x %s", l.Quantity, l.MenuItem.Title)
}

// ValidateCartLine validates a cart line before it is written.
func ValidateCartLine(l *CartLine) error {
	if l.Quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return nil
}
