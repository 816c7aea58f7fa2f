package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/analytics"
	"pixelforge-server-go/internal/domain/query"
	"pixelforge-server-go/internal/platform/errors"
)

// jobRepository 图片处理任务仓库实现
type jobRepository struct {
	db *gorm.DB
}

// JobRepository 任务数据访问接口，包含图表用的分组聚合查询
type JobRepository interface {
	List(ctx context.Context, params map[string]string) (*query.PagedResult[ImageJob], error)
	FindByID(ctx context.Context, id uint) (*ImageJob, error)
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByDay(ctx context.Context, since time.Time) ([]analytics.Row, error)
	CountByHourOfDay(ctx context.Context, since time.Time) ([]analytics.Row, error)
	AvgDurationByDay(ctx context.Context, since time.Time) ([]analytics.Row, error)
}

// NewJobRepository 创建任务仓库实例
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

var jobListDefinition = query.Definition{
	SortFields: map[string]string{
		"createdAt":  "created_at",
		"durationMs": "duration_ms",
	},
	Filters: map[string]query.Filter{
		"kind":        {Column: "kind", Kind: query.FilterEnum, Allowed: []string{"upscale", "bg_removal", "enhance", "compress"}},
		"status":      {Column: "status", Kind: query.FilterEnum, Allowed: []string{"queued", "processing", "done", "failed"}},
		"userId":      {Column: "user_id", Kind: query.FilterUint},
		"projectId":   {Column: "project_id", Kind: query.FilterUint},
		"createdFrom": {Column: "created_at", Kind: query.FilterTimeFrom},
		"createdTo":   {Column: "created_at", Kind: query.FilterTimeTo},
	},
	DefaultSort: "createdAt",
	Tiebreak:    "id",
}

func (r *jobRepository) List(ctx context.Context, params map[string]string) (*query.PagedResult[ImageJob], error) {
	spec, err := jobListDefinition.Parse(params)
	if err != nil {
		return nil, err
	}
	return listPaged[ImageJob](ctx, r.db, spec, "jobs.list")
}

func (r *jobRepository) FindByID(ctx context.Context, id uint) (*ImageJob, error) {
	var job ImageJob
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.KindNotFound, "jobs.get", "job not found")
		}
		return nil, errors.Wrap(errors.KindStorage, "jobs.get", "failed to find job", err)
	}
	return &job, nil
}

func (r *jobRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ImageJob{}).Count(&total).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "jobs.count", "failed to count jobs", err)
	}
	return total, nil
}

func (r *jobRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&ImageJob{}).
		Where("created_at >= ?", since).
		Count(&total).Error
	if err != nil {
		return 0, errors.Wrap(errors.KindStorage, "jobs.count_since", "failed to count recent jobs", err)
	}
	return total, nil
}

// CountByDay 按自然日分组统计任务数，返回稀疏行，补桶在 analytics 层完成
func (r *jobRepository) CountByDay(ctx context.Context, since time.Time) ([]analytics.Row, error) {
	var rows []analytics.Row
	err := r.db.WithContext(ctx).
		Model(&ImageJob{}).
		Select("strftime('%Y-%m-%d', created_at) AS bucket, COUNT(*) AS value").
		Where("created_at >= ?", since).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "jobs.count_by_day", "failed to aggregate jobs by day", err)
	}
	return rows, nil
}

// CountByHourOfDay 把时间窗口内的任务折叠到一天 24 小时上
func (r *jobRepository) CountByHourOfDay(ctx context.Context, since time.Time) ([]analytics.Row, error) {
	var rows []analytics.Row
	err := r.db.WithContext(ctx).
		Model(&ImageJob{}).
		Select("strftime('%H:00', created_at) AS bucket, COUNT(*) AS value").
		Where("created_at >= ?", since).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "jobs.count_by_hour", "failed to aggregate jobs by hour", err)
	}
	return rows, nil
}

// AvgDurationByDay 按自然日统计已完成任务的平均耗时（毫秒）
func (r *jobRepository) AvgDurationByDay(ctx context.Context, since time.Time) ([]analytics.Row, error) {
	var rows []analytics.Row
	err := r.db.WithContext(ctx).
		Model(&ImageJob{}).
		Select("strftime('%Y-%m-%d', created_at) AS bucket, AVG(duration_ms) AS value").
		Where("created_at >= ? AND status = ?", since, "done").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "jobs.avg_duration_by_day", "failed to aggregate durations", err)
	}
	return rows, nil
}
