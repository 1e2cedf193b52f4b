package repository

import (
	"context"

	"buzzhire/internal/model"

	"gorm.io/gorm"
)

// PunchEventRepository persists the append-only punch audit trail.
// Events are created by the worker pool, never updated or deleted.
type PunchEventRepository interface {
	Create(ctx context.Context, e *model.PunchEvent) error
}

type punchEventRepo struct{ db *gorm.DB }

func NewPunchEventRepository(db *gorm.DB) PunchEventRepository {
	return &punchEventRepo{db: db}
}

func (r *punchEventRepo) Create(ctx context.Context, e *model.PunchEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}
