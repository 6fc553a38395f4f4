package mysql

import (
	"context"
	"encoding/json"
	"time"

	"Accord_Chat/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// Insert 事件和业务数据同事务落库，由 relayer 异步投递
func (r *OutboxRepository) Insert(event string, serverID, userID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"server":     serverID,
		"user":       userID,
	})
	ob := &model.ServerOutbox{
		EventType: event,
		ServerID:  serverID,
		UserID:    userID,
		Payload:   string(payload),
		Status:    0,
	}
	return r.DB.Create(ob).Error
}

func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.ServerOutbox, error) {
	var list []model.ServerOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败记录重试次数
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ServerOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ServerOutbox{}).Where("id = ?", id).
		Update("status", 1).Error
}
