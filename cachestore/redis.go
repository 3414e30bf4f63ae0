package cachestore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps stores in redis so cached responses survive agent
// restarts and can be shared between agent instances. Each store's
// entries live under "{prefix}{store}:"; the set "{prefix}stores" tracks
// which stores exist.
type RedisBackend struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBackend creates a redis-backed store backend.
func NewRedisBackend(client *redis.Client, keyPrefix string) *RedisBackend {
	if keyPrefix == "" {
		keyPrefix = "vvagent:"
	}
	return &RedisBackend{client: client, keyPrefix: keyPrefix}
}

func (b *RedisBackend) registryKey() string {
	return b.keyPrefix + "stores"
}

func (b *RedisBackend) storePrefix(name string) string {
	return b.keyPrefix + name + ":"
}

// Open registers the store name and returns a handle.
func (b *RedisBackend) Open(ctx context.Context, name string) (Store, error) {
	if err := b.client.SAdd(ctx, b.registryKey(), name).Err(); err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return &redisStore{
		name:   name,
		prefix: b.storePrefix(name),
		client: b.client,
	}, nil
}

// List returns the registered store names.
func (b *RedisBackend) List(ctx context.Context) ([]string, error) {
	names, err := b.client.SMembers(ctx, b.registryKey()).Result()
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return names, nil
}

// Drop deletes every key of the store and unregisters it.
func (b *RedisBackend) Drop(ctx context.Context, name string) error {
	if err := b.deleteByPrefix(ctx, b.storePrefix(name)); err != nil {
		return ErrStoreDrop.Wrap(err)
	}
	if err := b.client.SRem(ctx, b.registryKey(), name).Err(); err != nil {
		return ErrStoreDrop.Wrap(err)
	}
	return nil
}

// Close closes the redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) deleteByPrefix(ctx context.Context, prefix string) error {
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := b.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return b.client.Del(ctx, keys...).Err()
	}
	return nil
}

// redisStore is one store's view of the shared redis keyspace.
type redisStore struct {
	name   string
	prefix string
	client *redis.Client
}

func (s *redisStore) Name() string { return s.name }

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrEntryMiss
		}
		return nil, ErrStoreGet.Wrap(err)
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	// Entries live until activation cleanup; no per-key TTL.
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return ErrStoreSet.Wrap(err)
	}
	return nil
}

func (s *redisStore) Keys(ctx context.Context) ([]string, error) {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, ErrStoreGet.Wrap(err)
	}
	return keys, nil
}
