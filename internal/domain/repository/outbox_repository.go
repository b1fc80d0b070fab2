package repository

import (
	"context"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"

	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error
	// FetchUnpublished locks up to limit unpublished rows for the current transaction.
	FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, at time.Time) error
}
