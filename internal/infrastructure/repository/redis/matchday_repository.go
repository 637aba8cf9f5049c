// Package redis stores day catalogs and result sets in Redis so that every
// replica serves the same day. SETNX gives first-writer-wins publication.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

const defaultKeyPrefix = "daily-coupon"

// Commands is the subset of the go-redis client used here.
type Commands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
}

// Connect opens a client and verifies it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis addr=%s: %w", addr, err)
	}
	return client, nil
}

type store struct {
	rdb    Commands
	prefix string
	ttl    time.Duration
}

func (s store) key(kind, day string) string {
	return s.prefix + ":" + kind + ":" + day
}

func (s store) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get key=%s: %w", key, err)
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode key=%s: %w", key, err)
	}
	return true, nil
}

// saveIfAbsent writes value unless key exists; on a lost race dst receives
// the stored value.
func (s store) saveIfAbsent(ctx context.Context, key string, value, dst any) (bool, error) {
	payload, err := sonic.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode key=%s: %w", key, err)
	}
	stored, err := s.rdb.SetNX(ctx, key, payload, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx key=%s: %w", key, err)
	}
	if stored {
		return true, nil
	}
	exists, err := s.get(ctx, key, dst)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("redis key=%s vanished after setnx", key)
	}
	return false, nil
}

type Option func(*store)

// WithKeyPrefix namespaces keys, e.g. per environment.
func WithKeyPrefix(prefix string) Option {
	return func(s *store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires day data after ttl. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *store) { s.ttl = ttl }
}

func newStore(rdb Commands, opts []Option) store {
	s := store{rdb: rdb, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type CatalogRepository struct {
	store store
}

func NewCatalogRepository(rdb Commands, opts ...Option) *CatalogRepository {
	return &CatalogRepository{store: newStore(rdb, opts)}
}

func (r *CatalogRepository) GetByDay(ctx context.Context, day string) (matchday.Catalog, bool, error) {
	var doc catalogDocument
	exists, err := r.store.get(ctx, r.store.key("catalog", day), &doc)
	if err != nil || !exists {
		return matchday.Catalog{}, false, err
	}
	return doc.toDomain(), true, nil
}

func (r *CatalogRepository) SaveIfAbsent(ctx context.Context, catalog matchday.Catalog) (matchday.Catalog, error) {
	var existing catalogDocument
	stored, err := r.store.saveIfAbsent(ctx, r.store.key("catalog", catalog.Day), newCatalogDocument(catalog), &existing)
	if err != nil {
		return matchday.Catalog{}, err
	}
	if stored {
		return matchday.CloneCatalog(catalog), nil
	}
	return existing.toDomain(), nil
}

type ResultRepository struct {
	store store
}

func NewResultRepository(rdb Commands, opts ...Option) *ResultRepository {
	return &ResultRepository{store: newStore(rdb, opts)}
}

func (r *ResultRepository) GetByDay(ctx context.Context, day string) (matchday.ResultSet, bool, error) {
	var doc resultDocument
	exists, err := r.store.get(ctx, r.store.key("results", day), &doc)
	if err != nil || !exists {
		return matchday.ResultSet{}, false, err
	}
	return doc.toDomain(), true, nil
}

func (r *ResultRepository) SaveIfAbsent(ctx context.Context, results matchday.ResultSet) (matchday.ResultSet, error) {
	var existing resultDocument
	stored, err := r.store.saveIfAbsent(ctx, r.store.key("results", results.Day), newResultDocument(results), &existing)
	if err != nil {
		return matchday.ResultSet{}, err
	}
	if stored {
		return matchday.CloneResultSet(results), nil
	}
	return existing.toDomain(), nil
}
