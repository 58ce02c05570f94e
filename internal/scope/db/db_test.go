package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
)

func TestNewInvalidConnection(t *testing.T) {
	ctx := context.Background()

	// Test with invalid connection string
	_, err := New(ctx, "invalid://connection")
	if err == nil {
		t.Error("expected error with invalid connection string, got nil")
	}
}

func TestZeroDBNotConnected(t *testing.T) {
	var d DB
	ctx := context.Background()

	if err := d.Migrate(ctx); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected from Migrate, got %v", err)
	}
	if _, err := d.FetchAllItems(ctx); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected from FetchAllItems, got %v", err)
	}
	if _, err := d.FetchCategories(ctx); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected from FetchCategories, got %v", err)
	}
	if _, err := d.UpsertItems(ctx, []catalog.Item{{ID: 1}}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected from UpsertItems, got %v", err)
	}
}

// Runs only against a real database: TEST_DATABASE_URL=postgres://...
func TestCatalogRoundTrip(t *testing.T) {
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("requires TEST_DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := New(ctx, connString)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer d.Close()

	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	items := []catalog.Item{
		{ID: 900001, Title: "Test Jacket", Category: "zz-test-clothing", Price: 35, Rating: catalog.Rating{Rate: 4, Count: 10}},
		{ID: 900002, Title: "Test SSD", Category: "zz-test-electronics", Price: 99, Rating: catalog.Rating{Rate: 4.5, Count: 3}},
	}
	t.Cleanup(func() {
		_, _ = d.Pool().Exec(context.Background(), `DELETE FROM products WHERE id IN (900001, 900002)`)
	})

	n, err := d.UpsertItems(ctx, items)
	if err != nil {
		t.Fatalf("UpsertItems failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 upserted items, got %d", n)
	}

	got, err := d.FetchAllItems(ctx)
	if err != nil {
		t.Fatalf("FetchAllItems failed: %v", err)
	}
	found := 0
	for _, it := range got {
		if it.ID == 900001 || it.ID == 900002 {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected both test items, found %d", found)
	}

	cats, err := d.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("FetchCategories failed: %v", err)
	}
	seen := map[string]bool{}
	for _, c := range cats {
		seen[c] = true
	}
	if !seen["zz-test-clothing"] || !seen["zz-test-electronics"] {
		t.Errorf("expected test categories in %v", cats)
	}
}
