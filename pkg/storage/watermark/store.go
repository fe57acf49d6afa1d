// Package watermark holds the lastFetchEpochMS stores used by the polling
// scheduler. Every store keeps Put monotonic: a smaller value never
// replaces a larger one, so only Delete resets a trigger.
package watermark

import (
	"context"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/redis/go-redis/v9"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverRedis    Driver = "redis"
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
)

type Options struct {
	Driver Driver
	URI    string

	// Namespace is the Redis key prefix, the Postgres table or the Mongo
	// collection, depending on the driver.
	Namespace string
	Database  string
}

// Open connects the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (domain.WatermarkStore, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverRedis:
		redisOptions, err := redis.ParseURL(opts.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis uri: %w", err)
		}

		client := redis.NewClient(redisOptions)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return NewRedisStore(RedisStoreDependencies{
			Client:    client,
			KeyPrefix: opts.Namespace,
		}), nil
	case DriverPostgres:
		return NewPostgresStore(PostgresStoreDependencies{
			Context: ctx,
			URI:     opts.URI,
			Table:   opts.Namespace,
		})
	case DriverMongo:
		return NewMongoStore(MongoStoreDependencies{
			Context:        ctx,
			URI:            opts.URI,
			DatabaseName:   opts.Database,
			CollectionName: opts.Namespace,
		})
	default:
		return nil, fmt.Errorf("unknown watermark driver %q", opts.Driver)
	}
}
