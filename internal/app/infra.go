package app

import (
	"context"
	"log/slog"

	"presenter-service/internal/config"
	"presenter-service/internal/redis"
	"presenter-service/internal/storage"
)

type Infra struct {
	Redis     *redis.Client
	Presigner *storage.S3Presigner
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	slog.Info("redis ready", "addr", cfg.RedisAddr)

	presigner, err := storage.NewS3Presigner(ctx, storage.Options{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("object storage gateway ready", "bucket", cfg.S3Bucket)

	return &Infra{
		Redis:     redisClient,
		Presigner: presigner,
	}, nil
}
