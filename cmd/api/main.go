package main

import (
	"context"
	"log"

	"Accord_Chat/internal/config"
	"Accord_Chat/internal/model"
	"Accord_Chat/internal/pkg"
	"Accord_Chat/internal/repository/mysql"
	"Accord_Chat/internal/repository/redis"
	"Accord_Chat/internal/router"
	"Accord_Chat/internal/service"
	"Accord_Chat/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	pkg.InitJWT(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Server{},
		&model.ServerMember{},
		&model.ServerOutbox{},
		&model.Message{},
		&model.Reaction{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewS3Store(ctx, cfg.S3Bucket)
	if err != nil {
		panic(err)
	}

	// kafka 起不来时退化为日志投递
	sender := service.LogSender
	if producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}); err == nil {
		defer producer.Close()
		sender = service.KafkaSender(producer)
	} else {
		log.Printf("kafka producer init failed, fallback to log sender: %v", err)
	}

	go service.NewOutboxRelayer(mysql.DB, sender).Run(ctx)
	go service.NewMemberCountReconciler(mysql.DB).Run(ctx)

	r := router.InitRouter(cfg, mysql.DB, store)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
