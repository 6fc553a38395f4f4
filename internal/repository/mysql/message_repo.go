package mysql

import (
	"Accord_Chat/internal/model"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

func (r *MessageRepository) FindByID(id uint64) (*model.Message, error) {
	var msg model.Message
	err := r.DB.First(&msg, "id = ? AND status = 0", id).Error
	return &msg, err
}

// ListByServerCursor 游标分页，id 单调递增，直接按 id 推进
func (r *MessageRepository) ListByServerCursor(serverID uint64, lastID uint64, limit int) ([]model.Message, error) {
	q := r.DB.
		Where("server_id = ? AND status = 0", serverID)
	if lastID > 0 {
		q = q.Where("id < ?", lastID)
	}
	var list []model.Message
	err := q.Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// DeleteWithPermission 软删除，只有作者能删；返回受影响行数
func (r *MessageRepository) DeleteWithPermission(msgID, userID uint64) (int64, error) {
	tx := r.DB.Model(&model.Message{}).
		Where("id = ? AND author_id = ? AND status = 0", msgID, userID).
		Update("status", 1)
	return tx.RowsAffected, tx.Error
}
