package suite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/quicktactoe/internal/repository/storage"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Drivers lists every storage backend store-level tests run against.
var Drivers = []string{DriverRedis, DriverSQLite}

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage storage.Store
	Redis   *redis.Client
}

// New returns a suite backed by Redis. An in-process server is used unless
// TEST_REDIS_DOCKER=1, in which case a redis:alpine container is started.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	return NewWithDriver(t, DriverRedis)
}

func NewWithDriver(t *testing.T, driver string) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st := &Suite{
		T:      t,
		Logger: logger,
	}

	switch driver {
	case DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "quicktactoe.db"))
		if err != nil {
			t.Fatalf("could not open sqlite storage: %v", err)
		}
		t.Cleanup(func() {
			_ = sqliteStorage.Close()
		})
		st.Storage = sqliteStorage
	default:
		var client *redis.Client
		if os.Getenv("TEST_REDIS_DOCKER") == "1" {
			client = dockerRedis(ctx, t)
		} else {
			client = redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
		}

		if err := client.FlushDB(ctx).Err(); err != nil {
			t.Fatalf("could not flush database: %v", err)
		}
		t.Cleanup(func() {
			_ = client.Close()
		})

		st.Redis = client
		st.Storage = storage.NewRedisStorageFromClient(client)
	}

	return ctx, st
}

func dockerRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Env:        []string{},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	redisHost := resource.GetHostPort(redisPort)

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration

	var redisClient *redis.Client
	if err = pool.Retry(func() error {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisHost,
		})
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge resource: %v", err)
		}
	})

	return redisClient
}
