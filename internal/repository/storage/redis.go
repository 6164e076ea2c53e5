package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	Connection *redis.Client
}

func NewRedisStorage(ctx context.Context, addr string) (*RedisStorage, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	_, err := conn.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{Connection: conn}, nil
}

// NewRedisStorageFromClient wraps an already connected client.
func NewRedisStorageFromClient(client *redis.Client) *RedisStorage {
	return &RedisStorage{Connection: client}
}

func (that *RedisStorage) Close() error {
	return that.Connection.Close()
}

// Update runs fn under optimistic locking: every key fn reads is WATCHed and
// all writes go out in a single MULTI/EXEC. If any watched key changed in the
// meantime EXEC is discarded and ErrConflict is returned.
func (that *RedisStorage) Update(ctx context.Context, fn func(tx Tx) error) error {
	err := that.Connection.Watch(ctx, func(rtx *redis.Tx) error {
		tx := newRedisTx(rtx, false)

		if err := fn(tx); err != nil {
			return err
		}

		return tx.commit(ctx)
	})

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}

	return err
}

func (that *RedisStorage) View(ctx context.Context, fn func(tx Tx) error) error {
	return that.Connection.Watch(ctx, func(rtx *redis.Tx) error {
		return fn(newRedisTx(rtx, true))
	})
}

type redisTx struct {
	tx       *redis.Tx
	readOnly bool

	writes map[Key][]byte
	order  []Key
}

func newRedisTx(tx *redis.Tx, readOnly bool) *redisTx {
	return &redisTx{
		tx:       tx,
		readOnly: readOnly,
		writes:   make(map[Key][]byte),
	}
}

func (that *redisTx) Get(ctx context.Context, key Key, dst any) error {
	raw, ok := that.writes[key]
	if !ok {
		if err := that.watch(ctx, key); err != nil {
			return err
		}

		response, err := that.tx.Get(ctx, string(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}
		raw = response
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}

func (that *redisTx) Exists(ctx context.Context, key Key) (bool, error) {
	if _, ok := that.writes[key]; ok {
		return true, nil
	}

	if err := that.watch(ctx, key); err != nil {
		return false, err
	}

	count, err := that.tx.Exists(ctx, string(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}

	return count > 0, nil
}

func (that *redisTx) Create(ctx context.Context, key Key, value any) error {
	exists, err := that.Exists(ctx, key)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	}

	return that.Put(ctx, key, value)
}

func (that *redisTx) Put(_ context.Context, key Key, value any) error {
	if that.readOnly {
		return ErrReadOnly
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", key, err)
	}

	if _, ok := that.writes[key]; !ok {
		that.order = append(that.order, key)
	}
	that.writes[key] = raw

	return nil
}

func (that *redisTx) watch(ctx context.Context, key Key) error {
	if err := that.tx.Watch(ctx, string(key)).Err(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", key, err)
	}

	return nil
}

func (that *redisTx) commit(ctx context.Context) error {
	if len(that.order) == 0 {
		return nil
	}

	_, err := that.tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range that.order {
			pipe.Set(ctx, string(key), that.writes[key], 0)
		}
		return nil
	})

	return err
}
