package main

import (
	"github.com/turtacn/CombiRx-Discovery/internal/config"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/postgres"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/database/redis"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/storage/minio"
)

// Config adapters mirroring cmd/apiserver: the platform config and the
// infrastructure packages keep separate config structs.

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

func toPostgresConfig(cfg config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Database:        cfg.DBName,
		Username:        cfg.User,
		Password:        cfg.Password,
		SSLMode:         cfg.SSLMode,
		MaxConns:        int32(cfg.MaxConns),
		MinConns:        int32(cfg.MinConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

func toRedisConfig(cfg config.RedisConfig) *redis.RedisConfig {
	return &redis.RedisConfig{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func toProducerConfig(cfg config.KafkaConfig, clientID string) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      cfg.Brokers,
		ClientID:     clientID,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.ProducerRetries,
	}
}

func toMinIOConfig(cfg config.MinIOConfig) minio.MinIOConfig {
	return minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		UseSSL:          cfg.UseSSL,
		Bucket:          cfg.Bucket,
		PresignExpiry:   cfg.PresignExpiry,
	}
}

func toLogConfig(cfg config.LogConfig) logging.LogConfig {
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}
	return logging.LogConfig{
		Level:       cfg.Level,
		Format:      cfg.Format,
		OutputPaths: []string{out},
	}
}

//Personal.AI order the ending
