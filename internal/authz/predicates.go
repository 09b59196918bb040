// Package authz holds the role predicates gating every mutation and the
// query scoping applied to every list. Predicates are pure functions over
// the actor's loaded group set; there is no reflection or runtime permission
// lookup involved.
package authz

import (
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

// IsAdmin reports whether the actor holds admin rights, either through the
// staff flag or membership of the Admins group.
func IsAdmin(u *models.User) bool {
	return u != nil && (u.IsStaff || u.InGroup(models.GroupAdmins))
}

// IsAdminOrManager gates catalog mutations and manager-group management.
func IsAdminOrManager(u *models.User) bool {
	return u != nil && (IsAdmin(u) || u.InGroup(models.GroupManagers))
}

// IsManagerOrDeliveryCrew gates delivery-crew-group management.
func IsManagerOrDeliveryCrew(u *models.User) bool {
	return u != nil && (u.InGroup(models.GroupManagers) || u.InGroup(models.GroupDeliveryCrew))
}

// IsAdminOrManagerOrDeliveryCrew is the union of the two predicates above.
func IsAdminOrManagerOrDeliveryCrew(u *models.User) bool {
	return IsAdminOrManager(u) || u.InGroup(models.GroupDeliveryCrew)
}

// IsOwnerOrAdmin is the object-level check applied after list scoping.
func IsOwnerOrAdmin(u *models.User, order *models.Order) bool {
	if u == nil {
		return false
	}
	return IsAdmin(u) || order.CustomerID == u.ID
}

// ScopeOrders narrows an order query to what the actor may see: managers
// and admins see everything, delivery crew their assignments, everyone
// else their own orders.
func ScopeOrders(db *gorm.DB, u *models.User) *gorm.DB {
	switch {
	case IsAdminOrManager(u):
		return db
	case u.InGroup(models.GroupDeliveryCrew):
		return db.Where("deliverer_id = ?", u.ID)
	default:
		return db.Where("customer_id = ?", u.ID)
	}
}

// ScopeCartLines narrows a cart-line query. Staff see all lines; other
// actors only lines on orders they own.
func ScopeCartLines(db *gorm.DB, u *models.User) *gorm.DB {
	if u.IsStaff {
		return db
	}
	return db.
		Select("cart_lines.*").
		Joins("JOIN orders ON orders.id = cart_lines.order_id").
		Where("orders.customer_id = ? AND orders.deleted_at IS NULL", u.ID)
}
