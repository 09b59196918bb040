package api

import (
	"net/http"
	"strings"

	"bistro/internal/models"
	"bistro/internal/ordering"

	"github.com/gin-gonic/gin"
)

type menuItemView struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Featured bool    `json:"featured"`
	Category string  `json:"category"`
}

func viewMenuItem(item *models.MenuItem) menuItemView {
	return menuItemView{
		ID:       item.ID,
		Title:    item.Title,
		Price:    item.Price,
		Featured: item.Featured,
		Category: item.Category.Title,
	}
}

// Category handlers

func (a *API) ListCategories(c *gin.Context) {
	var categories []models.Category
	a.db.Find(&categories)
	c.JSON(http.StatusOK, categories)
}

func (a *API) GetCategory(c *gin.Context) {
	var category models.Category
	if err := a.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "category not found"})
		return
	}
	c.JSON(http.StatusOK, category)
}

func (a *API) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := models.ValidateCategory(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := a.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"slug": []string{"a category with that slug already exists"}})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (a *API) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := a.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "category not found"})
		return
	}

	var req struct {
		Slug  *string `json:"slug"`
		Title *string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Slug != nil {
		category.Slug = *req.Slug
	}
	if req.Title != nil {
		category.Title = *req.Title
	}
	if err := models.ValidateCategory(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := a.db.Save(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"slug": []string{"a category with that slug already exists"}})
		return
	}
	c.JSON(http.StatusOK, category)
}

func (a *API) DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := a.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "category not found"})
		return
	}
	if err := ordering.DeleteCategory(a.db, &category); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "category deleted"})
}

// Menu item handlers

// ListMenuItems supports ?search= (case-insensitive substring over item and
// category titles) and ?ordering=price / ?ordering=-price.
func (a *API) ListMenuItems(c *gin.Context) {
	query := a.db.Preload("Category").
		Select("menu_items.*").
		Joins("JOIN categories ON categories.id = menu_items.category_id")

	if search := c.Query("search"); search != "" {
		needle := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(menu_items.title) LIKE ? OR LOWER(categories.title) LIKE ?", needle, needle)
	}
	switch c.Query("ordering") {
	case "price":
		query = query.Order("menu_items.price ASC")
	case "-price":
		query = query.Order("menu_items.price DESC")
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	views := make([]menuItemView, 0, len(items))
	for i := range items {
		views = append(views, viewMenuItem(&items[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (a *API) GetMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := a.db.Preload("Category").Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "menu item not found"})
		return
	}
	c.JSON(http.StatusOK, viewMenuItem(&item))
}

func (a *API) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if item.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"price": []string{"The price cannot be less than or equal to 0"}})
		return
	}
	if err := models.ValidateMenuItem(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := a.db.First(&item.Category, item.CategoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"category_id": []string{"no such category"}})
		return
	}
	if err := a.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, viewMenuItem(&item))
}

func (a *API) UpdateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := a.db.Preload("Category").Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "menu item not found"})
		return
	}

	var req struct {
		Title      *string  `json:"title"`
		Price      *float64 `json:"price"`
		Featured   *bool    `json:"featured"`
		CategoryID *uint    `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"price": []string{"The price cannot be less than or equal to 0"}})
		return
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Featured != nil {
		item.Featured = *req.Featured
	}
	if req.CategoryID != nil {
		if err := a.db.First(&item.Category, *req.CategoryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"category_id": []string{"no such category"}})
			return
		}
		item.CategoryID = *req.CategoryID
	}

	if err := a.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewMenuItem(&item))
}

// DeleteMenuItem removes the item together with any cart lines that still
// reference it.
func (a *API) DeleteMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := a.db.Where("id = ?", c.Param("id")).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "menu item not found"})
		return
	}

	tx := a.db.Begin()
	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.CartLine{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if err := tx.Delete(&item).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "menu item deleted"})
}
