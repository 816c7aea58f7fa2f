package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/query"
	"pixelforge-server-go/internal/platform/errors"
)

// userRepository 用户仓库实现
type userRepository struct {
	db *gorm.DB
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	List(ctx context.Context, params map[string]string) (*query.PagedResult[User], error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	TouchLastLogin(ctx context.Context, id uint) error
	CountAll(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// userListDefinition 用户列表允许的过滤与排序字段
var userListDefinition = query.Definition{
	SortFields: map[string]string{
		"createdAt":   "created_at",
		"email":       "email",
		"lastLoginAt": "last_login_at",
	},
	Filters: map[string]query.Filter{
		"role":        {Column: "role", Kind: query.FilterEnum, Allowed: []string{"admin", "support", "user"}},
		"plan":        {Column: "plan", Kind: query.FilterEnum, Allowed: []string{"free", "pro", "business"}},
		"status":      {Column: "status", Kind: query.FilterEnum, Allowed: []string{"0", "1"}},
		"email":       {Column: "email", Kind: query.FilterString},
		"createdFrom": {Column: "created_at", Kind: query.FilterTimeFrom},
		"createdTo":   {Column: "created_at", Kind: query.FilterTimeTo},
	},
	DefaultSort: "createdAt",
	Tiebreak:    "id",
}

func (r *userRepository) List(ctx context.Context, params map[string]string) (*query.PagedResult[User], error) {
	spec, err := userListDefinition.Parse(params)
	if err != nil {
		return nil, err
	}
	return listPaged[User](ctx, r.db, spec, "users.list")
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.KindNotFound, "users.get", "user not found")
		}
		return nil, errors.Wrap(errors.KindStorage, "users.get", "failed to find user", err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New(errors.KindNotFound, "users.get_by_email", "user not found")
		}
		return nil, errors.Wrap(errors.KindStorage, "users.get_by_email", "failed to find user", err)
	}
	return &user, nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
	if err != nil {
		return errors.Wrap(errors.KindStorage, "users.touch_login", "failed to update last login", err)
	}
	return nil
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return 0, errors.Wrap(errors.KindStorage, "users.count", "failed to count users", err)
	}
	return total, nil
}

func (r *userRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("last_login_at >= ?", since).
		Count(&total).Error
	if err != nil {
		return 0, errors.Wrap(errors.KindStorage, "users.count_active", "failed to count active users", err)
	}
	return total, nil
}
