package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-crawler/internal/domain"
)

const (
	fieldHTML  = "html"
	fieldURL   = "url"
	fieldLabel = "label"
)

// RedisStore keeps snapshots in Redis so the crawl and extraction passes
// can run in different processes. Every key lives under capture:<run>.
type RedisStore struct {
	client *redis.Client
	run    string
	ttl    time.Duration
}

// NewRedisClient connects to addr. The caller owns the client.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func NewRedisStore(client *redis.Client, run string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, run: run, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) pageKey(key domain.CaptureKey) string {
	return fmt.Sprintf("capture:%s:%s", s.run, key)
}

func (s *RedisStore) indexKey() string {
	return fmt.Sprintf("capture:%s:products", s.run)
}

func (s *RedisStore) Put(ctx context.Context, key domain.CaptureKey, page domain.CapturedPage) error {
	k := s.pageKey(key)
	label := page.Label
	if label == "" {
		label = key.String()
	}

	created, err := s.client.HSetNX(ctx, k, fieldLabel, label).Result()
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if !created {
		return fmt.Errorf("%s: %w", key, domain.ErrCaptureExists)
	}

	values := map[string]interface{}{}
	if page.HTML != "" {
		values[fieldHTML] = page.HTML
	}
	if page.SourceURL != "" {
		values[fieldURL] = page.SourceURL
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(values) > 0 {
			pipe.HSet(ctx, k, values)
		}
		pipe.Expire(ctx, k, s.ttl)
		if key.Kind == domain.KindProduct {
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(key.Index), Member: strconv.Itoa(key.Index)})
			pipe.Expire(ctx, s.indexKey(), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key domain.CaptureKey) (domain.CapturedPage, error) {
	fields, err := s.client.HGetAll(ctx, s.pageKey(key)).Result()
	if err != nil {
		return domain.CapturedPage{}, fmt.Errorf("get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return domain.CapturedPage{}, fmt.Errorf("%s: %w", key, domain.ErrCaptureNotFound)
	}
	return domain.CapturedPage{
		Label:     fields[fieldLabel],
		HTML:      fields[fieldHTML],
		SourceURL: fields[fieldURL],
	}, nil
}

func (s *RedisStore) ProductIndices(ctx context.Context) ([]int, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list product captures: %w", err)
	}
	indices := make([]int, 0, len(members))
	for _, m := range members {
		i, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("bad product index %q: %w", m, err)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// Clear drops every key of the run.
func (s *RedisStore) Clear(ctx context.Context) error {
	indices, err := s.ProductIndices(ctx)
	if err != nil {
		return err
	}
	keys := []string{s.indexKey(), s.pageKey(domain.SearchKey())}
	for _, i := range indices {
		keys = append(keys, s.pageKey(domain.ProductKey(i)))
	}
	return s.client.Del(ctx, keys...).Err()
}
