// Package ordering implements the cart aggregator and the order lifecycle:
// resolving a customer's open order, folding repeated adds into a single
// line per menu item, and computing the derived totals that are never
// stored anywhere.
package ordering

import (
	"math"

	"bistro/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// OpenOrderFor resolves or creates the customer's open order. The partial
// unique index on orders(customer_id) guarantees a single winner when two
// first adds race; the loser re-selects the winner's order.
func OpenOrderFor(db *gorm.DB, customerID uint) (*models.Order, bool, error) {
	var order models.Order
	err := db.Where("customer_id = ? AND delivered = ?", customerID, false).First(&order).Error
	if err == nil {
		return &order, false, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, false, err
	}

	order = models.Order{OrderID: uuid.New().String(), CustomerID: customerID}
	if createErr := db.Create(&order).Error; createErr != nil {
		if isUniqueViolation(createErr) {
			if err := db.Where("customer_id = ? AND delivered = ?", customerID, false).
				First(&order).Error; err == nil {
				return &order, false, nil
			}
		}
		return nil, false, createErr
	}
	return &order, true, nil
}

// AddToCart upserts a cart line on the customer's open order. An existing
// line for the same menu item has its quantity incremented, never a second
// row inserted. The returned flag reports whether a new open order had to
// be created for this add.
func AddToCart(db *gorm.DB, customerID, menuItemID uint, quantity int) (*models.CartLine, *models.Order, bool, error) {
	if quantity <= 0 {
		return nil, nil, false, &FieldError{Field: "quantity", Message: "quantity must be greater than 0"}
	}

	var item models.MenuItem
	if err := db.First(&item, menuItemID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil, false, ErrMenuItemNotFound
		}
		return nil, nil, false, err
	}

	order, created, err := OpenOrderFor(db, customerID)
	if err != nil {
		return nil, nil, false, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, nil, false, tx.Error
	}

	var line models.CartLine
	err = tx.Where("order_id = ? AND menu_item_id = ?", order.ID, item.ID).First(&line).Error
	switch {
	case err == nil:
		if err := tx.Model(&line).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			tx.Rollback()
			return nil, nil, false, err
		}
		line.Quantity += quantity
	case gorm.IsRecordNotFoundError(err):
		line = models.CartLine{OrderID: order.ID, MenuItemID: item.ID, Quantity: quantity}
		if err := tx.Create(&line).Error; err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				return nil, nil, false, ErrAlreadyInCart
			}
			return nil, nil, false, err
		}
	default:
		tx.Rollback()
		return nil, nil, false, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, false, err
	}

	line.MenuItem = item
	return &line, order, created, nil
}

// ClearCart deletes every cart line on the customer's orders. Calling it
// on an already empty cart is a no-op that still succeeds.
func ClearCart(db *gorm.DB, customerID uint) error {
	var orderIDs []uint
	if err := db.Model(&models.Order{}).
		Where("customer_id = ?", customerID).
		Pluck("id", &orderIDs).Error; err != nil {
		return err
	}
	if len(orderIDs) == 0 {
		return nil
	}
	return db.Where("order_id IN (?)", orderIDs).Delete(&models.CartLine{}).Error
}

// LoadLines fetches an order's live cart lines with their menu items.
func LoadLines(db *gorm.DB, orderID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := db.Preload("MenuItem").Where("order_id = ?", orderID).Find(&lines).Error
	return lines, err
}

// Total sums the line subtotals at current menu prices, rounded to cents.
func Total(lines []models.CartLine) float64 {
	var total float64
	for i := range lines {
		total += lines[i].Subtotal()
	}
	return math.Round(total*100) / 100
}

// Displays renders lines the way order listings show them.
func Displays(lines []models.CartLine) []string {
	items := make([]string, 0, len(lines))
	for i := range lines {
		items = append(items, lines[i].Display())
	}
	return items
}
