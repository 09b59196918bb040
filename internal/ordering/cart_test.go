package ordering

import (
	"testing"

	"bistro/internal/database"
	"bistro/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A second connection would see a different in-memory database.
	db.DB().SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Category, models.MenuItem, models.MenuItem) {
	t.Helper()
	category := models.Category{Slug: "desserts", Title: "Desserts"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	bruschetta := models.MenuItem{Title: "Bruschetta", Price: 6.50, CategoryID: category.ID}
	tiramisu := models.MenuItem{Title: "Tiramisu", Price: 7.00, CategoryID: category.ID}
	if err := db.Create(&bruschetta).Error; err != nil {
		t.Fatalf("failed to create menu item: %v", err)
	}
	if err := db.Create(&tiramisu).Error; err != nil {
		t.Fatalf("failed to create menu item: %v", err)
	}
	return category, bruschetta, tiramisu
}

func seedCustomer(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestAddToCartConsolidatesLines(t *testing.T) {
	db := newTestDB(t)
	_, bruschetta, _ := seedCatalog(t, db)
	customer := seedCustomer(t, db, "alice")

	if _, _, created, err := AddToCart(db, customer.ID, bruschetta.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	} else if !created {
		t.Errorf("expected first add to open an order")
	}

	line, _, created, err := AddToCart(db, customer.ID, bruschetta.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if created {
		t.Errorf("expected second add to reuse the open order")
	}
	if line.Quantity != 5 {
		t.Errorf("expected quantity 5 after adding 2 then 3, got %d", line.Quantity)
	}

	var count int64
	db.Model(&models.CartLine{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one cart line, got %d", count)
	}
}

func TestAddToCartValidation(t *testing.T) {
	db := newTestDB(t)
	_, bruschetta, _ := seedCatalog(t, db)
	customer := seedCustomer(t, db, "alice")

	if _, _, _, err := AddToCart(db, customer.ID, bruschetta.ID, 0); err == nil {
		t.Errorf("expected zero quantity to be rejected")
	}
	if _, _, _, err := AddToCart(db, customer.ID, bruschetta.ID, -2); err == nil {
		t.Errorf("expected negative quantity to be rejected")
	}
	if _, _, _, err := AddToCart(db, customer.ID, 9999, 1); err != ErrMenuItemNotFound {
		t.Errorf("expected ErrMenuItemNotFound for unknown item, got %v", err)
	}
}

func TestOpenOrderForIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "alice")

	first, created, err := OpenOrderFor(db, customer.ID)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if !created {
		t.Errorf("expected first resolve to create the order")
	}

	second, created, err := OpenOrderFor(db, customer.ID)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if created {
		t.Errorf("expected second resolve to return the existing order")
	}
	if first.OrderID != second.OrderID {
		t.Errorf("expected the same open order, got %s and %s", first.OrderID, second.OrderID)
	}
}

func TestOpenOrderIndexBlocksDuplicates(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "alice")

	if _, _, err := OpenOrderFor(db, customer.ID); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	// A raw insert around the aggregator must hit the partial unique index.
	dup := models.Order{OrderID: "dup", CustomerID: customer.ID}
	if err := db.Create(&dup).Error; err == nil {
		t.Errorf("expected a second open order for the customer to violate the index")
	}
}

func TestClearCartIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	_, bruschetta, tiramisu := seedCatalog(t, db)
	customer := seedCustomer(t, db, "alice")

	if _, _, _, err := AddToCart(db, customer.ID, bruschetta.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, _, _, err := AddToCart(db, customer.ID, tiramisu.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := ClearCart(db, customer.ID); err != nil {
		t.Fatalf("first clear failed: %v", err)
	}
	var count int64
	db.Model(&models.CartLine{}).Count(&count)
	if count != 0 {
		t.Errorf("expected empty cart after clear, got %d lines", count)
	}

	if err := ClearCart(db, customer.ID); err != nil {
		t.Fatalf("repeated clear should be a no-op, got %v", err)
	}

	// A cleared item can be re-added without tripping the unique index.
	if _, _, _, err := AddToCart(db, customer.ID, bruschetta.ID, 1); err != nil {
		t.Fatalf("re-add after clear failed: %v", err)
	}
}

func TestTotalTracksCurrentPrices(t *testing.T) {
	db := newTestDB(t)
	_, bruschetta, tiramisu := seedCatalog(t, db)
	customer := seedCustomer(t, db, "alice")

	_, order, _, err := AddToCart(db, customer.ID, bruschetta.ID, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, _, _, err := AddToCart(db, customer.ID, tiramisu.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	lines, err := LoadLines(db, order.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := Total(lines); got != 20.50 {
		t.Errorf("expected total 20.50, got %v", got)
	}

	// Totals are derived from live prices, not snapshots.
	if err := db.Model(&models.MenuItem{}).Where("id = ?", bruschetta.ID).
		Update("price", 10.00).Error; err != nil {
		t.Fatalf("price update failed: %v", err)
	}
	lines, err = LoadLines(db, order.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := Total(lines); got != 24.00 {
		t.Errorf("expected total 24.00 after price change, got %v", got)
	}
}

func TestAssignDelivererRequiresCrewMembership(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "alice")
	courier := seedCustomer(t, db, "bob")

	order, _, err := OpenOrderFor(db, customer.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if err := AssignDeliverer(db, order, courier.ID); err == nil {
		t.Fatalf("expected assignment of a non-crew user to fail")
	}

	var crew models.Group
	if err := db.Where("name = ?", models.GroupDeliveryCrew).First(&crew).Error; err != nil {
		t.Fatalf("crew group missing: %v", err)
	}
	if err := db.Model(&courier).Association("Groups").Append(&crew).Error; err != nil {
		t.Fatalf("failed to add courier to crew: %v", err)
	}

	if err := AssignDeliverer(db, order, courier.ID); err != nil {
		t.Fatalf("expected assignment of a crew member to succeed, got %v", err)
	}
	if order.DelivererID == nil || *order.DelivererID != courier.ID {
		t.Errorf("expected deliverer to be set on the order")
	}

	if err := MarkDelivered(db, order); err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if !order.Delivered {
		t.Errorf("expected order to be delivered")
	}
}

func TestDeleteCategoryProtectsReferencedRows(t *testing.T) {
	db := newTestDB(t)
	category, _, _ := seedCatalog(t, db)

	if err := DeleteCategory(db, &category); err != ErrCategoryInUse {
		t.Fatalf("expected ErrCategoryInUse while items reference the category, got %v", err)
	}

	empty := models.Category{Slug: "drinks", Title: "Drinks"}
	if err := db.Create(&empty).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	if err := DeleteCategory(db, &empty); err != nil {
		t.Fatalf("expected unreferenced category delete to succeed, got %v", err)
	}
}
