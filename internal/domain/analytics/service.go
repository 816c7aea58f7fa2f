package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"
)

const (
	// Chart lookback windows are fixed, not caller-configurable.
	DailyLookbackDays  = 30
	HourlyLookbackDays = 7
)

// UserStats is the slice of the user repository the dashboard needs.
type UserStats interface {
	CountAll(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}

type ProjectStats interface {
	CountAll(ctx context.Context) (int64, error)
}

type JobStats interface {
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByDay(ctx context.Context, since time.Time) ([]Row, error)
	CountByHourOfDay(ctx context.Context, since time.Time) ([]Row, error)
	AvgDurationByDay(ctx context.Context, since time.Time) ([]Row, error)
}

// Summary is the dashboard headline card.
type Summary struct {
	TotalUsers    int64  `json:"totalUsers"`
	ActiveUsers   int64  `json:"activeUsers"`
	TotalProjects int64  `json:"totalProjects"`
	TotalJobs     int64  `json:"totalJobs"`
	JobsToday     int64  `json:"jobsToday"`
	CPUUsage      string `json:"cpuUsage"`
	MemoryUsage   string `json:"memoryUsage"`
}

// Service assembles dashboard statistics from the repositories.
type Service struct {
	users    UserStats
	projects ProjectStats
	jobs     JobStats
	now      func() time.Time
}

func NewService(users UserStats, projects ProjectStats, jobs JobStats) *Service {
	return &Service{
		users:    users,
		projects: projects,
		jobs:     jobs,
		now:      time.Now,
	}
}

// Summary fetches the independent aggregates concurrently and joins them.
// The count queries share no state, so no ordering is imposed between them.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.users.CountAll(gctx)
		summary.TotalUsers = total
		return err
	})
	g.Go(func() error {
		active, err := s.users.CountActiveSince(gctx, now.AddDate(0, 0, -7))
		summary.ActiveUsers = active
		return err
	})
	g.Go(func() error {
		total, err := s.projects.CountAll(gctx)
		summary.TotalProjects = total
		return err
	})
	g.Go(func() error {
		total, err := s.jobs.CountAll(gctx)
		summary.TotalJobs = total
		return err
	})
	g.Go(func() error {
		today, err := s.jobs.CountSince(gctx, startOfDay)
		summary.JobsToday = today
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Host figures are decoration on the card; failures leave them blank
	// rather than failing the whole summary.
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		summary.CPUUsage = fmt.Sprintf("%.1f%%", percents[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		summary.MemoryUsage = fmt.Sprintf("%.1f%%", vm.UsedPercent)
	}

	return &summary, nil
}

// DailyJobSeries returns a dense 30-day job count series ending today.
func (s *Service) DailyJobSeries(ctx context.Context) ([]Bucket, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -(DailyLookbackDays - 1))

	rows, err := s.jobs.CountByDay(ctx, truncateToDay(start))
	if err != nil {
		return nil, err
	}
	return Fill(rows, start, end, GranularityDay, SeriesCount), nil
}

// HourlyActivitySeries folds the trailing 7 days of jobs onto the 24 hours
// of the day.
func (s *Service) HourlyActivitySeries(ctx context.Context) ([]Bucket, error) {
	since := s.now().UTC().AddDate(0, 0, -HourlyLookbackDays)

	rows, err := s.jobs.CountByHourOfDay(ctx, since)
	if err != nil {
		return nil, err
	}
	return Fill(rows, time.Time{}, time.Time{}, GranularityHour, SeriesCount), nil
}

// DailyDurationSeries returns the 30-day average processing time series in
// whole seconds, with null buckets where nothing finished.
func (s *Service) DailyDurationSeries(ctx context.Context) ([]Bucket, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -(DailyLookbackDays - 1))

	rows, err := s.jobs.AvgDurationByDay(ctx, truncateToDay(start))
	if err != nil {
		return nil, err
	}
	return Fill(rows, start, end, GranularityDay, SeriesAverageMillis), nil
}
