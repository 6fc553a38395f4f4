package service

import (
	"context"
	"log"
	"time"

	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"

	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.ServerOutbox) error

// OutboxRelayer 轮询 server_outbox，把待投递事件交给 sender
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

// MemberCountReconciler 服务器成员数对账器
type MemberCountReconciler struct {
	repo      *mysql.ServerRepository
	batchSize int
	interval  time.Duration
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func NewMemberCountReconciler(db *gorm.DB) *MemberCountReconciler {
	return &MemberCountReconciler{
		repo:      &mysql.ServerRepository{DB: db},
		batchSize: 500,
		interval:  5 * time.Minute,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// KafkaSender 按 server id 作 key 投递到 kafka
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.ServerOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.ServerID), []byte(ob.Payload))
	}
}

// LogSender 占位 sender：只打印，本地起不了 kafka 时用
func LogSender(ctx context.Context, ob *model.ServerOutbox) error {
	log.Printf("OUTBOX SEND type=%s server=%d user=%d payload=%s", ob.EventType, ob.ServerID, ob.UserID, ob.Payload)
	return nil
}

func (r *MemberCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	var lastID uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			lastID = r.reconcileOnce(ctx, lastID)
		}
	}
}

// reconcileOnce 对账一批，返回下一批的游标；扫完一轮从头再来
func (r *MemberCountReconciler) reconcileOnce(ctx context.Context, lastID uint64) uint64 {
	servers, next, err := r.repo.ReconcileList(ctx, r.batchSize, lastID)
	if err != nil {
		log.Printf("reconcile list err: %v", err)
		return lastID
	}
	if len(servers) == 0 {
		return 0
	}

	for _, sv := range servers {
		real, err := r.repo.RealMemberCount(ctx, sv.ID)
		if err != nil {
			continue
		}
		if real != sv.MemberCount {
			_ = r.repo.ReconcileMemberCount(ctx, sv.ID, real)
		}
	}
	return next
}
