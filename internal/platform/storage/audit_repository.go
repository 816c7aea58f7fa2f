package storage

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pixelforge-server-go/internal/domain/audit"
	"pixelforge-server-go/internal/domain/query"
	"pixelforge-server-go/internal/platform/errors"
)

// auditRepository 审计日志仓库实现，只提供追加和查询
type auditRepository struct {
	db *gorm.DB
}

// AuditRepository 审计日志访问接口
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, params map[string]string) (*query.PagedResult[AuditLog], error)
}

// NewAuditRepository 创建审计仓库实例
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

var auditListDefinition = query.Definition{
	SortFields: map[string]string{
		"createdAt": "created_at",
	},
	Filters: map[string]query.Filter{
		"actorId":      {Column: "actor_id", Kind: query.FilterUint},
		"action":       {Column: "action", Kind: query.FilterString},
		"resourceType": {Column: "resource_type", Kind: query.FilterString},
		"createdFrom":  {Column: "created_at", Kind: query.FilterTimeFrom},
		"createdTo":    {Column: "created_at", Kind: query.FilterTimeTo},
	},
	DefaultSort: "createdAt",
	Tiebreak:    "id",
}

func (r *auditRepository) Create(ctx context.Context, entry *AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "audit.create", "failed to append audit entry", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, params map[string]string) (*query.PagedResult[AuditLog], error) {
	spec, err := auditListDefinition.Parse(params)
	if err != nil {
		return nil, err
	}
	return listPaged[AuditLog](ctx, r.db, spec, "audit.list")
}

// auditSink 把审计领域条目转换为存储模型后落库，实现 audit.Sink
type auditSink struct {
	repo AuditRepository
}

// NewAuditSink 创建审计写入端
func NewAuditSink(db *gorm.DB) audit.Sink {
	return &auditSink{repo: NewAuditRepository(db)}
}

func (s *auditSink) Append(ctx context.Context, entry *audit.Entry) error {
	var metadata datatypes.JSON
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return errors.Wrap(errors.KindStorage, "audit.append", "failed to encode metadata", err)
		}
		metadata = raw
	}

	model := &AuditLog{
		ActorID:      entry.ActorID,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Description:  entry.Description,
		Metadata:     metadata,
		RequestID:    entry.RequestID,
		IP:           entry.IP,
		UserAgent:    entry.UserAgent,
		CreatedAt:    entry.CreatedAt,
	}
	return s.repo.Create(ctx, model)
}
