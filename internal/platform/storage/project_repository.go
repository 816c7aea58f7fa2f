package storage

import (
	"context"

	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/query"
	"pixelforge-server-go/internal/platform/errors"
)

// projectRepository 项目仓库实现
type projectRepository struct {
	db *gorm.DB
}

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	List(ctx context.Context, params map[string]string) (*query.PagedResult[Project], error)
	FindByID(ctx context.Context, id uint) (*Project, error)
	CountAll(ctx context.Context) (int64, error)
}

// NewProjectRepository 创建项目仓库实例
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

var projectListDefinition = query.Definition{
	SortFields: map[string]string{
		"createdAt":    "created_at",
		"name":         "name",
		"imageCount":   "image_count",
		"storageBytes": "storage_bytes",
	},
	Filters: map[string]query.Filter{
		"userId":      {Column: "user_id", Kind: query.FilterUint},
		"createdFrom": {Column: "created_at", Kind: query.FilterTimeFrom},
		"createdTo":   {Column: "created_at", Kind: query.FilterTimeTo},
	},
	DefaultSort: "createdAt",
	Tiebreak:    "id",
}

func (r *projectRepository) List(ctx context.Context, params map[string]string) (*query.PagedResult[Project], error) {
	spec, err := projectListDefinition.Parse(params)
	if err != nil {
		return nil, err
	}
	return listPaged[Project](ctx, r.db, spec, "projects.list")
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*Project, error) {
	var project Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.KindNotFound, "projects.get", "project not found")
		}
		return nil, errors.Wrap(errors.KindStorage, "projects.get", "failed to find project", err)
	}
	return &project, nil
}

func (r *projectRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Project{}).Count(&total).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "projects.count", "failed to count projects", err)
	}
	return total, nil
}
