package mysql

import (
	"context"

	"Accord_Chat/internal/model"

	"gorm.io/gorm"
)

type ServerRepository struct {
	DB *gorm.DB
}

// CountPair 成员数对账消息结构体
type CountPair struct {
	ID          uint64
	MemberCount int64
}

func (r *ServerRepository) Create(s *model.Server) error {
	return r.DB.Create(s).Error
}

func (r *ServerRepository) FindByID(id uint64) (*model.Server, error) {
	var server model.Server
	err := r.DB.First(&server, id).Error
	return &server, err
}

// ListByUserID 按成员关系拉取服务器列表，保持加入顺序
func (r *ServerRepository) ListByUserID(userID uint64) ([]model.Server, error) {
	var list []model.Server
	err := r.DB.
		Joins("JOIN server_members ON server_members.server_id = servers.id").
		Where("server_members.user_id = ?", userID).
		Order("server_members.id ASC").
		Find(&list).Error
	return list, err
}

func (r *ServerRepository) AddMemberCount(serverID uint64, delta int64) error {
	return r.DB.Model(&model.Server{}).
		Where("id = ?", serverID).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error
}

// ReconcileList 对账批量查询，按 id 游标推进
func (r *ServerRepository) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]CountPair, uint64, error) {
	var list []CountPair
	if err := r.DB.WithContext(ctx).Model(&model.Server{}).
		Select("id", "member_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealMemberCount 从 server_members 查真实成员数
func (r *ServerRepository) RealMemberCount(ctx context.Context, serverID uint64) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.ServerMember{}).
		Where("server_id = ?", serverID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ReconcileMemberCount 修正冗余成员数
func (r *ServerRepository) ReconcileMemberCount(ctx context.Context, serverID uint64, real int64) error {
	return r.DB.WithContext(ctx).Model(&model.Server{}).
		Where("id = ?", serverID).
		UpdateColumn("member_count", real).Error
}
