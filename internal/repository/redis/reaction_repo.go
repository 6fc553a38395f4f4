package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ReactSetTTL       = 24 * time.Hour
	ReactCntTTL       = 24 * time.Hour
	LockTTL           = 300 * time.Millisecond
	ReactSetKeyPrefix = "react:set:msg" // 某条消息已表态的用户ID集合
	ReactCntKeyPrefix = "react:cnt:msg" // 某条消息的表态计数
	LockKeyPrefix     = "lock:react:msg"
)

type ReactionCacheRepository struct {
	reactSetTTL time.Duration
	reactCntTTL time.Duration
}

type DistLock struct {
	RDB *redis.Client
}

func NewReactionCacheRepository() *ReactionCacheRepository {
	return &ReactionCacheRepository{
		reactSetTTL: ReactSetTTL,
		reactCntTTL: ReactCntTTL,
	}
}

func (r *ReactionCacheRepository) setKey(msgID uint64) string {
	return fmt.Sprintf("%s:%d", ReactSetKeyPrefix, msgID)
}
func (r *ReactionCacheRepository) cntKey(msgID uint64) string {
	return fmt.Sprintf("%s:%d", ReactCntKeyPrefix, msgID)
}

// AddReaction 写路径：MySQL 落库成功后再更新缓存
func (r *ReactionCacheRepository) AddReaction(ctx context.Context, userID, msgID uint64) error {
	k := r.setKey(msgID)
	if err := Client.SAdd(ctx, k, userID).Err(); err != nil {
		return err
	}
	_ = Client.Expire(ctx, k, r.reactSetTTL).Err()

	ck := r.cntKey(msgID)
	if err := Client.Incr(ctx, ck).Err(); err != nil {
		return err
	}
	_ = Client.Expire(ctx, ck, r.reactCntTTL).Err()
	return nil
}

func (r *ReactionCacheRepository) RemoveReaction(ctx context.Context, userID, msgID uint64) error {
	k := r.setKey(msgID)
	if err := Client.SRem(ctx, k, userID).Err(); err != nil {
		return err
	}
	ck := r.cntKey(msgID)
	// 计数防负数
	if err := Client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, ck).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if val <= 0 {
			// 不存在或已为0，交给对账兜底
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Decr(ctx, ck)
			return nil
		})
		return err
	}, ck); err != nil {
		return err
	}
	return nil
}

// IsReactedCached 第二个返回值表示缓存是否命中
func (r *ReactionCacheRepository) IsReactedCached(ctx context.Context, userID, msgID uint64) (bool, bool, error) {
	k := r.setKey(msgID)
	exists, err := Client.Exists(ctx, k).Result()
	if err != nil {
		return false, false, err
	}
	if exists == 0 {
		return false, false, nil
	}
	b, err := Client.SIsMember(ctx, k, userID).Result()
	return b, true, err
}

func (r *ReactionCacheRepository) GetCountCached(ctx context.Context, msgID uint64) (int64, bool, error) {
	ck := r.cntKey(msgID)
	val, err := Client.Get(ctx, ck).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

// SetCount 回源后回填计数
func (r *ReactionCacheRepository) SetCount(ctx context.Context, msgID uint64, cnt int64) error {
	return Client.Set(ctx, r.cntKey(msgID), cnt, r.reactCntTTL).Err()
}

// WarmIsReacted 惰性回填：只在集合已存在时写，避免无界扩张
func (r *ReactionCacheRepository) WarmIsReacted(ctx context.Context, userID, msgID uint64, reacted bool) {
	k := r.setKey(msgID)
	if ok, _ := Client.Exists(ctx, k).Result(); ok > 0 {
		if reacted {
			_ = Client.SAdd(ctx, k, userID).Err()
		} else {
			_ = Client.SRem(ctx, k, userID).Err()
		}
		_ = Client.Expire(ctx, k, r.reactSetTTL).Err()
	}
}

// DeleteCount 删除计数缓存，交给读侧重建
func (r *ReactionCacheRepository) DeleteCount(ctx context.Context, msgID uint64) error {
	if err := Client.Del(ctx, r.cntKey(msgID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, msgID uint64, token string) (bool, error) {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, msgID)
	return l.RDB.SetNX(ctx, key, token, LockTTL).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, msgID uint64, token string) error {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, msgID)
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}
