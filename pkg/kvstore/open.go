package kvstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/angelmondragon/storefront-client/pkg/db"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/migrate"
	redisclient "github.com/angelmondragon/storefront-client/pkg/redis"
	"go.uber.org/multierr"
)

// Backend is an opened store plus the resources behind it.
type Backend struct {
	Store  Store
	Pinger interface{ Ping(context.Context) error }

	closers []Closer
}

// Close releases every connection held by the backend.
func (b *Backend) Close() error {
	var err error
	for _, c := range b.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// Open builds the configured store. The sql backend runs pending migrations before returning.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return &Backend{Store: NewMemory()}, nil

	case config.StorageDriverRedis:
		client, err := redisclient.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: NewRedis(client), Pinger: client, closers: []Closer{client}}, nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := client.SQL()
		if err != nil {
			return nil, multierr.Append(err, client.Close())
		}
		if err := migrate.Up(ctx, sqlDB, client.Dialect()); err != nil {
			return nil, multierr.Append(fmt.Errorf("migrating device store: %w", err), client.Close())
		}
		return &Backend{Store: NewSQL(client.DB()), Pinger: client, closers: []Closer{client}}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
