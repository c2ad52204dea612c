// cmd/api/wiring.go
// Backend selection for storage, pair locks and email.

package main

import (
	"context"
	"fmt"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/common/database"
	"github.com/imadgeboyega/roomie-backend/internal/config"
	"github.com/imadgeboyega/roomie-backend/internal/notification"
	"github.com/imadgeboyega/roomie-backend/internal/roommate"
)

type stores struct {
	users     auth.UserStore
	roommates roommate.Repository
	closers   []func() error
}

func (s *stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, &database.PostgresConfig{URL: cfg.DatabaseURL})
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users:     auth.NewPostgresRepository(db),
			roommates: roommate.NewPostgresRepository(db),
			closers:   []func() error{db.Close},
		}, nil

	case "dynamodb":
		client, err := database.NewDynamoDBClient(&database.DynamoDBConfig{
			Region:   cfg.AWSRegion,
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, err
		}
		repo := roommate.NewDynamoRepository(client, cfg.DynamoDBTable)
		return &stores{users: repo, roommates: repo}, nil

	case "memory":
		repo := roommate.NewMemoryRepository()
		return &stores{users: repo, roommates: repo}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newPairLocker(ctx context.Context, cfg *config.Config) (roommate.PairLocker, func(), error) {
	if cfg.LockBackend != "redis" {
		return roommate.NewLocalPairLocker(), func() {}, nil
	}

	client, err := database.NewRedisClientFromURL(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return roommate.NewRedisPairLocker(client, cfg.SwipeLockTTL), func() { client.Close() }, nil
}

func newEmailService(cfg *config.Config) (notification.EmailService, error) {
	switch cfg.EmailProvider {
	case "sendgrid":
		svc, err := notification.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case "smtp":
		svc, err := notification.NewSMTPEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom, cfg.EmailFromName)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return notification.NewMockEmailService(), nil
	}
}
