package analytics

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeUserStats struct {
	total, active int64
	err           error
}

func (f *fakeUserStats) CountAll(ctx context.Context) (int64, error) {
	return f.total, f.err
}

func (f *fakeUserStats) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	return f.active, f.err
}

type fakeProjectStats struct {
	total int64
}

func (f *fakeProjectStats) CountAll(ctx context.Context) (int64, error) {
	return f.total, nil
}

type fakeJobStats struct {
	total, today  int64
	daily, hourly []Row
	durations     []Row
}

func (f *fakeJobStats) CountAll(ctx context.Context) (int64, error)  { return f.total, nil }
func (f *fakeJobStats) CountSince(ctx context.Context, t time.Time) (int64, error) {
	return f.today, nil
}
func (f *fakeJobStats) CountByDay(ctx context.Context, t time.Time) ([]Row, error) {
	return f.daily, nil
}
func (f *fakeJobStats) CountByHourOfDay(ctx context.Context, t time.Time) ([]Row, error) {
	return f.hourly, nil
}
func (f *fakeJobStats) AvgDurationByDay(ctx context.Context, t time.Time) ([]Row, error) {
	return f.durations, nil
}

func testService(users *fakeUserStats, jobs *fakeJobStats) *Service {
	svc := NewService(users, &fakeProjectStats{total: 4}, jobs)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestSummaryJoinsConcurrentCounts(t *testing.T) {
	svc := testService(
		&fakeUserStats{total: 120, active: 17},
		&fakeJobStats{total: 950, today: 23},
	)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalUsers != 120 || summary.ActiveUsers != 17 {
		t.Errorf("user counts wrong: %+v", summary)
	}
	if summary.TotalProjects != 4 || summary.TotalJobs != 950 || summary.JobsToday != 23 {
		t.Errorf("aggregate counts wrong: %+v", summary)
	}
}

func TestSummaryPropagatesDependencyFailure(t *testing.T) {
	svc := testService(
		&fakeUserStats{err: errors.New("connection refused")},
		&fakeJobStats{},
	)

	if _, err := svc.Summary(context.Background()); err == nil {
		t.Fatal("expected dependency failure to surface")
	}
}

func TestDailyJobSeriesSpansThirtyDays(t *testing.T) {
	svc := testService(&fakeUserStats{}, &fakeJobStats{
		daily: []Row{{Bucket: "2024-06-30", Value: 7}},
	})

	series, err := svc.DailyJobSeries(context.Background())
	if err != nil {
		t.Fatalf("DailyJobSeries: %v", err)
	}
	if len(series) != DailyLookbackDays {
		t.Fatalf("series length = %d, want %d", len(series), DailyLookbackDays)
	}
	if series[0].Key != "2024-06-01" || series[len(series)-1].Key != "2024-06-30" {
		t.Errorf("unexpected range: %s .. %s", series[0].Key, series[len(series)-1].Key)
	}
	if *series[len(series)-1].Value != 7 {
		t.Errorf("today's bucket = %v, want 7", *series[len(series)-1].Value)
	}
	if *series[0].Value != 0 {
		t.Errorf("empty bucket = %v, want 0", *series[0].Value)
	}
}

func TestHourlyActivitySeriesAlwaysTwentyFourBuckets(t *testing.T) {
	svc := testService(&fakeUserStats{}, &fakeJobStats{
		hourly: []Row{{Bucket: "13:00", Value: 4}},
	})

	series, err := svc.HourlyActivitySeries(context.Background())
	if err != nil {
		t.Fatalf("HourlyActivitySeries: %v", err)
	}
	if len(series) != 24 {
		t.Fatalf("series length = %d, want 24", len(series))
	}
	if *series[13].Value != 4 {
		t.Errorf("13:00 bucket = %v, want 4", *series[13].Value)
	}
}

func TestDailyDurationSeriesKeepsNulls(t *testing.T) {
	svc := testService(&fakeUserStats{}, &fakeJobStats{
		durations: []Row{{Bucket: "2024-06-29", Value: 1500}},
	})

	series, err := svc.DailyDurationSeries(context.Background())
	if err != nil {
		t.Fatalf("DailyDurationSeries: %v", err)
	}
	last := series[len(series)-1]
	if last.Value != nil {
		t.Errorf("day without data should be null, got %v", *last.Value)
	}
	prev := series[len(series)-2]
	if prev.Value == nil || *prev.Value != 2 {
		t.Errorf("1500ms should round to 2s, got %v", prev.Value)
	}
}
