package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"
	"Accord_Chat/internal/storage"

	"gorm.io/gorm"
)

type ServerService struct {
	db    *gorm.DB
	store storage.ObjectStore
	mail  *EmailService // 可空，空则不发邀请通知
}

type AddServerReq struct {
	Name         string
	Description  string
	ProfileImage *string // 对象存储 key，可空
	InviteEmails []string
}

// ServerDTO 列表返回结构，头像以 base64 内联
type ServerDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProfileImage string `json:"profile_image"`
}

func NewServerService(db *gorm.DB, store storage.ObjectStore, mail *EmailService) *ServerService {
	return &ServerService{db: db, store: store, mail: mail}
}

// AddServer 建服务器 + 初始成员名单，一个事务内完成：
// 任何一个邀请邮箱找不到账号，整个操作回滚，包括服务器本身。
// 重复邮箱靠 (server_id, user_id) 唯一键幂等收敛成一条成员记录。
func (s *ServerService) AddServer(ctx context.Context, req AddServerReq) error {
	if req.Name == "" {
		return pkg.ErrInvalidRequest
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		serverRepo := &mysql.ServerRepository{DB: tx}
		userRepo := &mysql.UserRepository{DB: tx}
		memberRepo := &mysql.ServerMemberRepository{DB: tx}
		outboxRepo := &mysql.OutboxRepository{DB: tx}

		server := &model.Server{
			Name:         req.Name,
			Description:  req.Description,
			ProfileImage: req.ProfileImage,
		}
		if err := serverRepo.Create(server); err != nil {
			return err
		}
		if err := outboxRepo.Insert("server_created", server.ID, 0); err != nil {
			return err
		}

		for _, email := range req.InviteEmails {
			user, err := userRepo.FindByEmail(email)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Printf("server service: no account for invite %q", email)
					return pkg.ErrEmailNotFound
				}
				return err
			}

			created, err := memberRepo.Add(&model.ServerMember{
				ServerID: server.ID,
				UserID:   user.ID,
				Status:   model.StatusOffline,
			})
			if err != nil {
				return err
			}
			if !created {
				// 重复邀请，已入会
				continue
			}
			if err := serverRepo.AddMemberCount(server.ID, 1); err != nil {
				return err
			}
			if err := outboxRepo.Insert("member_joined", server.ID, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var re *pkg.RestError
		if errors.As(err, &re) {
			return re
		}
		log.Printf("server service: add server: %v", err)
		return pkg.ErrInternalServer
	}

	// 事务提交后尽力而为地发邀请通知，失败只记日志
	if s.mail != nil && len(req.InviteEmails) > 0 {
		go s.mail.SendInviteNotices(req.Name, req.InviteEmails)
	}
	return nil
}

// GetServerList 拉用户所在的服务器列表，头像一次批量取回再逐条编码。
// 无头像的服务器 profile_image 为空串；有 key 但对象存储里没有 → 整个调用失败。
func (s *ServerService) GetServerList(ctx context.Context, userID uint64) ([]ServerDTO, error) {
	serverRepo := &mysql.ServerRepository{DB: s.db.WithContext(ctx)}
	servers, err := serverRepo.ListByUserID(userID)
	if err != nil {
		log.Printf("server service: list servers: %v", err)
		return nil, pkg.ErrInternalServer
	}

	keys := make([]string, 0, len(servers))
	seen := make(map[string]struct{}, len(servers))
	for _, sv := range servers {
		if sv.ProfileImage == nil {
			continue
		}
		if _, ok := seen[*sv.ProfileImage]; ok {
			continue
		}
		seen[*sv.ProfileImage] = struct{}{}
		keys = append(keys, *sv.ProfileImage)
	}

	var images map[string][]byte
	if len(keys) > 0 {
		images, err = s.store.FetchMany(ctx, keys)
		if err != nil {
			log.Printf("server service: fetch profile images: %v", err)
			return nil, pkg.ErrFileProcessingFail
		}
	}

	out := make([]ServerDTO, 0, len(servers))
	for _, sv := range servers {
		dto := ServerDTO{
			ID:          sv.ID,
			Name:        sv.Name,
			Description: sv.Description,
		}
		if sv.ProfileImage != nil {
			raw, ok := images[*sv.ProfileImage]
			if !ok {
				// 库里有 key 但对象不在了，说明存储侧出问题，不做兜底
				log.Printf("server service: profile image %q missing from store", *sv.ProfileImage)
				return nil, pkg.ErrFileProcessingFail
			}
			dto.ProfileImage = base64.StdEncoding.EncodeToString(raw)
		}
		out = append(out, dto)
	}
	return out, nil
}

// AddServerForCreator 创建入口：把创建者自己的邮箱并入邀请名单再走 AddServer
func (s *ServerService) AddServerForCreator(ctx context.Context, creatorID uint64, req AddServerReq) error {
	userRepo := &mysql.UserRepository{DB: s.db.WithContext(ctx)}
	creator, err := userRepo.FindByID(creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkg.ErrLoginFailed
		}
		log.Printf("server service: find creator %d: %v", creatorID, err)
		return pkg.ErrInternalServer
	}
	req.InviteEmails = append(req.InviteEmails, creator.Email)
	return s.AddServer(ctx, req)
}
