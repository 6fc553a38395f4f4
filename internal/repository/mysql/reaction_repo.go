package mysql

import (
	"context"

	"Accord_Chat/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository struct {
	DB *gorm.DB
}

// React 幂等插入 (user_id, message_id)，新增时同步消息计数
func (r *ReactionRepository) React(ctx context.Context, userID, msgID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).Create(&model.Reaction{UserID: userID, MessageID: msgID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已存在，幂等
			return nil
		}
		changed = true
		return tx.Model(&model.Message{}).
			Where("id = ?", msgID).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + 1")).Error
	})
	return changed, err
}

// Unreact 删除不存在的行时幂等返回 false
func (r *ReactionRepository) Unreact(ctx context.Context, userID, msgID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND message_id = ?", userID, msgID).
			Delete(&model.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		// 计数防负数，误差由对账兜底
		return tx.Model(&model.Message{}).
			Where("id = ?", msgID).
			UpdateColumn("reaction_count", gorm.Expr("CASE WHEN reaction_count > 0 THEN reaction_count - 1 ELSE 0 END")).Error
	})
	return changed, err
}

func (r *ReactionRepository) IsReacted(ctx context.Context, userID, msgID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.Reaction{}).
		Where("user_id = ? AND message_id = ?", userID, msgID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReactionRepository) GetReactionCount(ctx context.Context, msgID uint64) (int64, error) {
	var m model.Message
	err := r.DB.WithContext(ctx).Select("id", "reaction_count").First(&m, msgID).Error
	if err != nil {
		return 0, err
	}
	return m.ReactionCount, nil
}
