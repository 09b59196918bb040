package api

import (
	"errors"
	"net/http"

	"bistro/internal/ordering"

	"github.com/gin-gonic/gin"
)

// writeDomainError translates ordering errors into the HTTP taxonomy:
// validation 400, not found 404, conflict 409, referential integrity 400.
func writeDomainError(c *gin.Context, err error) {
	var fieldErr *ordering.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{fieldErr.Field: []string{fieldErr.Message}})
	case errors.Is(err, ordering.ErrMenuItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "menu item not found"})
	case errors.Is(err, ordering.ErrAlreadyInCart):
		c.JSON(http.StatusConflict, gin.H{"detail": "item is already in the cart"})
	case errors.Is(err, ordering.ErrCategoryInUse):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "category is still referenced by menu items"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}
