package service

import (
	"context"
	"fmt"
	"time"

	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"
	"Accord_Chat/internal/repository/redis"

	"gorm.io/gorm"
)

type ReactionService struct {
	repo  *mysql.ReactionRepository
	cache *redis.ReactionCacheRepository
	lock  *redis.DistLock
}

func NewReactionService(db *gorm.DB) *ReactionService {
	return &ReactionService{
		repo:  &mysql.ReactionRepository{DB: db},
		cache: redis.NewReactionCacheRepository(),
		lock:  &redis.DistLock{RDB: redis.Client},
	}
}

// React 先写库；缓存集合直接更新，计数更新失败则删 Key 交给读侧重建
func (s *ReactionService) React(ctx context.Context, userID, msgID uint64) (bool, error) {
	if userID == 0 || msgID == 0 {
		return false, pkg.ErrInvalidRequest
	}

	changed, err := s.repo.React(ctx, userID, msgID)
	if err != nil {
		return false, pkg.ErrInternalServer
	}
	if !changed {
		// 幂等命中，惰性回填集合
		s.cache.WarmIsReacted(ctx, userID, msgID, true)
		return false, nil
	}

	if err = s.cache.AddReaction(ctx, userID, msgID); err != nil {
		_ = s.cache.DeleteCount(ctx, msgID)
	}
	return true, nil
}

func (s *ReactionService) Unreact(ctx context.Context, userID, msgID uint64) (bool, error) {
	if userID == 0 || msgID == 0 {
		return false, pkg.ErrInvalidRequest
	}

	changed, err := s.repo.Unreact(ctx, userID, msgID)
	if err != nil {
		return false, pkg.ErrInternalServer
	}
	if !changed {
		s.cache.WarmIsReacted(ctx, userID, msgID, false)
		return false, nil
	}

	if err = s.cache.RemoveReaction(ctx, userID, msgID); err != nil {
		_ = s.cache.DeleteCount(ctx, msgID)
	}
	return true, nil
}

func (s *ReactionService) IsReacted(ctx context.Context, userID, msgID uint64) (bool, error) {
	if userID == 0 || msgID == 0 {
		return false, pkg.ErrInvalidRequest
	}
	if b, ok, err := s.cache.IsReactedCached(ctx, userID, msgID); err == nil && ok {
		return b, nil
	}
	// 回源 MySQL
	b, err := s.repo.IsReacted(ctx, userID, msgID)
	if err != nil {
		return false, pkg.ErrInternalServer
	}
	s.cache.WarmIsReacted(ctx, userID, msgID, b)
	return b, nil
}

// GetCount 缓存 miss 时用分布式锁做单兵回源，避免全体打 DB
func (s *ReactionService) GetCount(ctx context.Context, userID, msgID uint64) (int64, error) {
	if v, ok, err := s.cache.GetCountCached(ctx, msgID); err == nil && ok {
		return v, nil
	}

	token := fmt.Sprintf("%d-%d-%d", userID, msgID, time.Now().UnixNano())
	got, _ := s.lock.Acquire(ctx, msgID, token)
	if got {
		defer func() {
			_ = s.lock.Release(ctx, msgID, token)
		}()

		// 拿锁后二次检查
		if v, ok, err := s.cache.GetCountCached(ctx, msgID); err == nil && ok {
			return v, nil
		}

		v, err := s.repo.GetReactionCount(ctx, msgID)
		if err != nil {
			return 0, pkg.ErrInternalServer
		}
		_ = s.cache.SetCount(ctx, msgID, v)
		return v, nil
	}

	// 没拿到锁，短暂退避后再读一次缓存
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.cache.GetCountCached(ctx, msgID); err == nil && ok {
		return v, nil
	}

	v, err := s.repo.GetReactionCount(ctx, msgID)
	if err != nil {
		return 0, pkg.ErrInternalServer
	}
	return v, nil
}
