package mysql

import (
	"Accord_Chat/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServerMemberRepository struct {
	DB *gorm.DB
}

// Add 幂等插入：(server_id, user_id) 已存在则不报错，返回是否真的新增
func (r *ServerMemberRepository) Add(member *model.ServerMember) (bool, error) {
	tx := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "server_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member)
	return tx.RowsAffected > 0, tx.Error
}

func (r *ServerMemberRepository) Leave(serverID, userID uint64) (bool, error) {
	tx := r.DB.Where("server_id = ? AND user_id = ?", serverID, userID).
		Delete(&model.ServerMember{})
	return tx.RowsAffected > 0, tx.Error
}

func (r *ServerMemberRepository) IsMember(serverID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ServerMember{}).
		Where("server_id = ? AND user_id = ?", serverID, userID).
		Count(&count).Error
	return count > 0, err
}
