package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config 全部走环境变量，默认值对齐本地开发环境
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	MySQLDSN string `env:"MYSQL_DSN" envDefault:"user:password@tcp(127.0.0.1:3306)/accord?charset=utf8mb4&parseTime=True"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"127.0.0.1:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"server-events"`

	S3Bucket string `env:"S3_BUCKET" envDefault:"accord-profile-images"`

	JWTAccessSecret  string `env:"JWT_ACCESS_SECRET" envDefault:"secret-key"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET" envDefault:"refresh-key"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"127.0.0.1"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:"no-reply@example.com"`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"NoReply <no-reply@example.com>"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
