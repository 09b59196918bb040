package models

import (
	"fmt"

	"github.com/jinzhu/gorm"
)

// Category groups menu items on the public menu. Deleting a category is
// blocked while any menu item still references it.
type Category struct {
	gorm.Model
	Slug  string `gorm:"unique_index;not null" json:"slug"`
	Title string `gorm:"index" json:"title"`
}

// MenuItem represents a dish offered for order.
type MenuItem struct {
	gorm.Model
	Title      string   `gorm:"index" json:"title"`
	Price      float64  `gorm:"index" json:"price"`
	Featured   bool     `gorm:"index" json:"featured"`
	CategoryID uint     `json:"category_id"`
	Category   Category `json:"-"`
}

// ValidateCategory validates a category before it is written.
func ValidateCategory(c *Category) error {
	if c.Slug == "" {
		return fmt.Errorf("category slug is required")
	}
	if c.Title == "" {
		return fmt.Errorf("category title is required")
	}
	return nil
}

// ValidateMenuItem validates a menu item before it is written.
// Prices are money values with two-decimal semantics and must be positive.
func ValidateMenuItem(item *MenuItem) error {
	if item.Title == "" {
		return fmt.Errorf("menu item title is required")
	}
	if item.Price <= 0 {
		return fmt.Errorf("menu item price must be greater than 0")
	}
	if item.CategoryID == 0 {
		return fmt.Errorf("menu item category is required")
	}
	return nil
}
