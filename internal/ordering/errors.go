package ordering

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMenuItemNotFound is returned when a cart add references a menu
	// item that does not exist.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrAlreadyInCart is returned when a concurrent add lost the race on
	// the (order, menu item) unique index.
	ErrAlreadyInCart = errors.New("item already in cart")

	// ErrCategoryInUse is returned when a category delete is blocked by
	// menu items still referencing it.
	ErrCategoryInUse = errors.New("category still referenced by menu items")
)

// FieldError is a validation failure tied to a single input field, rendered
// as a {field: [messages]} body at the HTTP boundary.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// isUniqueViolation matches constraint errors from both supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
