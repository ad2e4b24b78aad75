package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/CloudNativeWorks/datalayer-license/dlmlicense/optionstore"
	"github.com/CloudNativeWorks/datalayer-license/internal/config"
)

// scopedStore opens site views of one backend.
type scopedStore struct {
	forSite func(site string) optionstore.Store
	close   func(ctx context.Context) error
}

func noClose(context.Context) error { return nil }

// openStore connects the configured backend. The returned close func releases
// the underlying connection.
func openStore(ctx context.Context, cfg config.StoreConfig) (*scopedStore, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		s := optionstore.NewMemoryStore()
		return &scopedStore{
			forSite: func(site string) optionstore.Store { return s.ForSite(site) },
			close:   noClose,
		}, nil

	case config.StoreDriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s, err := optionstore.NewPostgresStore(ctx, pool, optionstore.WithTableName(cfg.Table))
		if err != nil {
			pool.Close()
			return nil, err
		}
		return &scopedStore{
			forSite: func(site string) optionstore.Store { return s.ForSite(site) },
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StoreDriverMongo:
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		s, err := optionstore.NewMongoStore(ctx, client.Database(cfg.Database), optionstore.WithCollectionName(cfg.Table))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &scopedStore{
			forSite: func(site string) optionstore.Store { return s.ForSite(site) },
			close:   client.Disconnect,
		}, nil

	case config.StoreDriverRedis:
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s := optionstore.NewRedisStore(client, optionstore.WithNamespace(cfg.Table))
		return &scopedStore{
			forSite: func(site string) optionstore.Store { return s.ForSite(site) },
			close:   func(context.Context) error { return client.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}
