package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pixelforge-server-go/internal/platform/errors"
	"pixelforge-server-go/internal/platform/storage"
	platformtesting "pixelforge-server-go/internal/platform/testing"
)

func TestUserListPaginationWalksEveryRowOnce(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	// Same CreatedAt everywhere forces the id tiebreak to carry the ordering.
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 25; i++ {
		user := &storage.User{
			Email:     fmt.Sprintf("user%02d@example.com", i),
			Name:      fmt.Sprintf("User %02d", i),
			Role:      "user",
			Plan:      "free",
			CreatedAt: created,
		}
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	seen := map[uint]bool{}
	for page := 1; page <= 3; page++ {
		result, err := repo.List(ctx, map[string]string{
			"page":     fmt.Sprintf("%d", page),
			"pageSize": "10",
		})
		if err != nil {
			t.Fatalf("List page %d: %v", page, err)
		}
		if result.Total != 25 {
			t.Errorf("page %d total = %d, want 25", page, result.Total)
		}
		if page < 3 && len(result.Items) != 10 {
			t.Errorf("page %d has %d items, want 10", page, len(result.Items))
		}
		if page == 3 && len(result.Items) != 5 {
			t.Errorf("last page has %d items, want 5", len(result.Items))
		}
		for _, u := range result.Items {
			if seen[u.ID] {
				t.Errorf("user %d returned on more than one page", u.ID)
			}
			seen[u.ID] = true
		}
	}
	if len(seen) != 25 {
		t.Errorf("pages covered %d distinct users, want 25", len(seen))
	}
}

func TestUserListPageBeyondData(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	if err := db.Create(&storage.User{Email: "only@example.com", Role: "user", Plan: "free"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	result, err := repo.List(ctx, map[string]string{"page": "9", "pageSize": "10"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("expected empty page, got %d items", len(result.Items))
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
}

func TestUserListFiltering(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	users := []*storage.User{
		{Email: "a@example.com", Role: "admin", Plan: "business"},
		{Email: "b@example.com", Role: "user", Plan: "free"},
		{Email: "c@example.com", Role: "user", Plan: "pro"},
	}
	for _, u := range users {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	result, err := repo.List(ctx, map[string]string{"role": "user"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if result.Total != 2 || len(result.Items) != 2 {
		t.Fatalf("role filter: total=%d items=%d, want 2/2", result.Total, len(result.Items))
	}

	result, err = repo.List(ctx, map[string]string{"email": "a@example.com"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if result.Total != 1 || result.Items[0].Role != "admin" {
		t.Fatalf("email filter returned wrong rows: %+v", result.Items)
	}
}

func TestUserListRejectsUnknownFilter(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	_, err := repo.List(ctx, map[string]string{"nickname": "x", "sortDir": "sideways"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsKind(err, errors.KindValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if len(errors.FieldsOf(err)) != 2 {
		t.Errorf("expected both offending fields reported, got %v", errors.FieldsOf(err))
	}
}

func TestUserFindByIDNotFound(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	_, err := repo.FindByID(ctx, 999)
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestUserCounts(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewUserRepository(db)

	now := time.Now()
	if err := db.Create(&storage.User{Email: "old@example.com", LastLoginAt: now.AddDate(0, 0, -30)}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&storage.User{Email: "fresh@example.com", LastLoginAt: now.Add(-time.Hour)}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	total, err := repo.CountAll(ctx)
	platformtesting.AssertNoError(t, err)
	if total != 2 {
		t.Errorf("CountAll = %d, want 2", total)
	}

	active, err := repo.CountActiveSince(ctx, now.AddDate(0, 0, -7))
	platformtesting.AssertNoError(t, err)
	if active != 1 {
		t.Errorf("CountActiveSince = %d, want 1", active)
	}
}
