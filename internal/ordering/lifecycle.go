package ordering

import (
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
)

// AssignDeliverer sets the order's delivery crew member. The target must be
// a member of the Delivery_Crew group.
func AssignDeliverer(db *gorm.DB, order *models.Order, delivererID uint) error {
	var deliverer models.User
	if err := db.Preload("Groups").First(&deliverer, delivererID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &FieldError{Field: "delivery_crew_id", Message: "no such user"}
		}
		return err
	}
	if !deliverer.InGroup(models.GroupDeliveryCrew) {
		return &FieldError{Field: "delivery_crew_id", Message: "user is not a member of Delivery_Crew"}
	}
	return db.Model(order).Update("deliverer_id", deliverer.ID).Error
}

// MarkDelivered moves the order to its terminal state. There is no way
// back: a delivered order is closed.
func MarkDelivered(db *gorm.DB, order *models.Order) error {
	return db.Model(order).Update("delivered", true).Error
}

// DeleteCategory removes a category unless menu items still reference it.
func DeleteCategory(db *gorm.DB, category *models.Category) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).
		Where("category_id = ?", category.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return db.Delete(category).Error
}
