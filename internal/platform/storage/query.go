package storage

import (
	"context"

	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/query"
	"pixelforge-server-go/internal/platform/errors"
)

// applyConditions 将校验过的查询条件绑定为 WHERE 子句
func applyConditions(tx *gorm.DB, spec *query.Spec) *gorm.DB {
	for _, c := range spec.Conditions {
		switch c.Op {
		case query.OpEq:
			tx = tx.Where(c.Column+" = ?", c.Value)
		case query.OpGte:
			tx = tx.Where(c.Column+" >= ?", c.Value)
		case query.OpLte:
			tx = tx.Where(c.Column+" <= ?", c.Value)
		case query.OpLt:
			tx = tx.Where(c.Column+" < ?", c.Value)
		}
	}
	return tx
}

// listPaged 执行一次过滤/排序/分页查询：total 统计不受分页窗口影响，
// 排序总是带唯一列 tiebreak，保证翻页稳定。
func listPaged[T any](ctx context.Context, db *gorm.DB, spec *query.Spec, op string) (*query.PagedResult[T], error) {
	var total int64
	if err := applyConditions(db.WithContext(ctx).Model(new(T)), spec).Count(&total).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "failed to count rows", err)
	}

	items := make([]T, 0, spec.PageSize)
	err := applyConditions(db.WithContext(ctx).Model(new(T)), spec).
		Order(spec.OrderClause()).
		Limit(spec.PageSize).
		Offset(spec.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "failed to fetch page", err)
	}

	return &query.PagedResult[T]{
		Items:    items,
		Page:     spec.Page,
		PageSize: spec.PageSize,
		Total:    total,
	}, nil
}
