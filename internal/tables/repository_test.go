package tables

import (
	"context"
	"testing"
)

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	got, err := repo.Get(ctx, "device-1")
	if err != nil || got != "" {
		t.Fatalf("expected no default, got %q, %v", got, err)
	}

	if err := repo.Save(ctx, "device-1", " 7 "); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Get(ctx, "device-1"); got != "7" {
		t.Fatalf("expected 7, got %q", got)
	}

	// Anonymous devices and blank tables are not remembered.
	_ = repo.Save(ctx, "", "3")
	_ = repo.Save(ctx, "device-1", "  ")
	if got, _ := repo.Get(ctx, "device-1"); got != "7" {
		t.Fatalf("blank save overwrote default: %q", got)
	}
	if got, _ := repo.Get(ctx, ""); got != "" {
		t.Fatalf("expected nothing for empty device, got %q", got)
	}
}
