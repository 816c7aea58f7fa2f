package storage_test

import (
	"context"
	"testing"
	"time"

	"pixelforge-server-go/internal/platform/storage"
	platformtesting "pixelforge-server-go/internal/platform/testing"
)

func TestJobAggregatesByDay(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewJobRepository(db)

	jobs := []*storage.ImageJob{
		{UserID: 1, Kind: "upscale", Status: "done", DurationMs: 2000,
			CreatedAt: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)},
		{UserID: 1, Kind: "upscale", Status: "done", DurationMs: 4000,
			CreatedAt: time.Date(2024, 5, 10, 17, 5, 0, 0, time.UTC)},
		{UserID: 2, Kind: "enhance", Status: "failed", DurationMs: 0,
			CreatedAt: time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)},
	}
	for _, j := range jobs {
		if err := db.Create(j).Error; err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	counts, err := repo.CountByDay(ctx, since)
	if err != nil {
		t.Fatalf("CountByDay: %v", err)
	}
	byBucket := map[string]float64{}
	for _, r := range counts {
		byBucket[r.Bucket] = r.Value
	}
	if byBucket["2024-05-10"] != 2 || byBucket["2024-05-12"] != 1 {
		t.Errorf("unexpected day counts: %v", byBucket)
	}

	// Averages only consider finished jobs.
	avgs, err := repo.AvgDurationByDay(ctx, since)
	if err != nil {
		t.Fatalf("AvgDurationByDay: %v", err)
	}
	if len(avgs) != 1 || avgs[0].Bucket != "2024-05-10" || avgs[0].Value != 3000 {
		t.Errorf("unexpected duration rows: %v", avgs)
	}
}

func TestJobAggregatesByHourOfDay(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewJobRepository(db)

	// Two different days, same hour of day: the hourly series folds them.
	jobs := []*storage.ImageJob{
		{UserID: 1, Kind: "compress", Status: "done",
			CreatedAt: time.Date(2024, 5, 10, 9, 15, 0, 0, time.UTC)},
		{UserID: 1, Kind: "compress", Status: "done",
			CreatedAt: time.Date(2024, 5, 11, 9, 45, 0, 0, time.UTC)},
	}
	for _, j := range jobs {
		if err := db.Create(j).Error; err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	rows, err := repo.CountByHourOfDay(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CountByHourOfDay: %v", err)
	}
	if len(rows) != 1 || rows[0].Bucket != "09:00" || rows[0].Value != 2 {
		t.Errorf("unexpected hourly rows: %v", rows)
	}
}

func TestJobListFilters(t *testing.T) {
	ctx := context.Background()
	db := platformtesting.SetupTestDB(t)
	repo := storage.NewJobRepository(db)

	jobs := []*storage.ImageJob{
		{UserID: 1, ProjectID: 7, Kind: "upscale", Status: "done"},
		{UserID: 1, ProjectID: 8, Kind: "enhance", Status: "queued"},
		{UserID: 2, ProjectID: 7, Kind: "upscale", Status: "done"},
	}
	for _, j := range jobs {
		if err := db.Create(j).Error; err != nil {
			t.Fatalf("seed job: %v", err)
		}
	}

	result, err := repo.List(ctx, map[string]string{"kind": "upscale", "userId": "1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 || result.Items[0].ProjectID != 7 {
		t.Errorf("conjunction filter failed: total=%d items=%+v", result.Total, result.Items)
	}

	if _, err := repo.List(ctx, map[string]string{"kind": "sharpen"}); err == nil {
		t.Error("unknown enum value should be rejected")
	}
}
