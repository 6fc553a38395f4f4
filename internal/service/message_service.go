package service

import (
	"errors"
	"log"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"

	"gorm.io/gorm"
)

type MessageService struct {
	repo       *mysql.MessageRepository
	memberRepo *mysql.ServerMemberRepository
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{
		repo:       &mysql.MessageRepository{DB: db},
		memberRepo: &mysql.ServerMemberRepository{DB: db},
	}
}

// Post 只有服务器成员能发消息
func (s *MessageService) Post(userID, serverID uint64, content string) (*model.Message, error) {
	if content == "" {
		return nil, pkg.ErrInvalidRequest
	}

	ok, err := s.memberRepo.IsMember(serverID, userID)
	if err != nil {
		return nil, pkg.ErrInternalServer
	}
	if !ok {
		return nil, pkg.ErrNotServerMember
	}

	msg := &model.Message{
		ServerID: serverID,
		AuthorID: userID,
		Content:  content,
	}
	if err := s.repo.Create(msg); err != nil {
		log.Printf("message service: post to server %d: %v", serverID, err)
		return nil, pkg.ErrInternalServer
	}
	return msg, nil
}

// ListByServerCursor 游标分页：首次不传 lastID（或传 0）
func (s *MessageService) ListByServerCursor(serverID uint64, lastID uint64, size int) ([]model.Message, uint64, int64, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	list, err := s.repo.ListByServerCursor(serverID, lastID, size)
	if err != nil {
		return nil, 0, 0, pkg.ErrInternalServer
	}
	var nextID uint64
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}

// Delete 幂等删除：成功/已删除均返回 nil；仅无权限时报错
func (s *MessageService) Delete(userID, msgID uint64) error {
	affected, err := s.repo.DeleteWithPermission(msgID, userID)
	if err != nil {
		return pkg.ErrInternalServer
	}
	if affected == 0 {
		// 消息不存在或已删除视为幂等成功，还在但删不动说明不是作者
		if _, err := s.repo.FindByID(msgID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkg.ErrInternalServer
		}
		return pkg.ErrNoPermission
	}
	return nil
}
