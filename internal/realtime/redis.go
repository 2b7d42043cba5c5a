package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisStore 每条记录一个 hash（字段值为 JSON），一个 set 作为 key 索引，
// 每次写入后向 <prefix>:<path>:events 发布变更
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) indexKey(path string) string { return fmt.Sprintf("%s:%s", s.prefix, path) }
func (s *RedisStore) docKey(path, key string) string {
	return fmt.Sprintf("%s:%s:doc:%s", s.prefix, path, key)
}
func (s *RedisStore) channel(path string) string { return fmt.Sprintf("%s:%s:events", s.prefix, path) }

func (s *RedisStore) Subscribe(ctx context.Context, path string, onChange func(Snapshot), onError func(error)) (func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel(path))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe %s: %v", ErrUnavailable, path, err)
	}
	first, err := s.snapshot(ctx, path)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		onChange(first)
		ch := pubsub.Channel()
		for {
			select {
			case <-stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				snap, err := s.snapshot(context.Background(), path)
				if err != nil {
					onError(err)
					return
				}
				onChange(snap)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			_ = pubsub.Close()
			<-done
		})
	}, nil
}

func (s *RedisStore) Push(ctx context.Context, path string, value any) (string, error) {
	fields, err := encodeDocument(value)
	if err != nil {
		return "", err
	}
	key := newKey()
	if err := s.write(ctx, path, key, fields); err != nil {
		return "", err
	}
	return key, nil
}

func (s *RedisStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	enc, err := encodeFields(fields)
	if err != nil {
		return err
	}
	return s.write(ctx, path, key, enc)
}

func (s *RedisStore) Remove(ctx context.Context, path, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(path, key))
		pipe.SRem(ctx, s.indexKey(path), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", path, key, err)
	}
	return s.publish(ctx, path, key)
}

func (s *RedisStore) write(ctx context.Context, path, key string, fields map[string]string) error {
	values := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		values = append(values, k, v)
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(values) > 0 {
			pipe.HSet(ctx, s.docKey(path, key), values...)
		}
		pipe.SAdd(ctx, s.indexKey(path), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", path, key, err)
	}
	return s.publish(ctx, path, key)
}

func (s *RedisStore) publish(ctx context.Context, path, key string) error {
	if err := s.client.Publish(ctx, s.channel(path), key).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

func (s *RedisStore) snapshot(ctx context.Context, path string) (Snapshot, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey(path)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return Snapshot{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, s.docKey(path, key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(keys))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		raw, err := assemble(fields)
		if err != nil {
			return nil, err
		}
		snap[keys[i]] = raw
	}
	return snap, nil
}
