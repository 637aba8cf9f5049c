package cache

import (
	"context"
	"errors"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	basecache "github.com/riskibarqy/daily-coupon/internal/platform/cache"
)

// errNotStored keeps absent days out of the cache; a day may be published by
// another process at any moment.
var errNotStored = errors.New("day not stored")

// CatalogRepository caches published catalogs. Catalogs never change once
// stored, so entries need no invalidation.
type CatalogRepository struct {
	next  matchday.CatalogRepository
	cache *basecache.Store[matchday.Catalog]
}

func NewCatalogRepository(next matchday.CatalogRepository, cache *basecache.Store[matchday.Catalog]) *CatalogRepository {
	return &CatalogRepository{next: next, cache: cache}
}

func (r *CatalogRepository) GetByDay(ctx context.Context, day string) (matchday.Catalog, bool, error) {
	item, err := r.cache.GetOrLoad(ctx, catalogKey(day), func(ctx context.Context) (matchday.Catalog, error) {
		stored, exists, err := r.next.GetByDay(ctx, day)
		if err != nil {
			return matchday.Catalog{}, err
		}
		if !exists {
			return matchday.Catalog{}, errNotStored
		}
		return matchday.CloneCatalog(stored), nil
	})
	if errors.Is(err, errNotStored) {
		return matchday.Catalog{}, false, nil
	}
	if err != nil {
		return matchday.Catalog{}, false, err
	}

	return matchday.CloneCatalog(item), true, nil
}

func (r *CatalogRepository) SaveIfAbsent(ctx context.Context, catalog matchday.Catalog) (matchday.Catalog, error) {
	saved, err := r.next.SaveIfAbsent(ctx, catalog)
	if err != nil {
		return matchday.Catalog{}, err
	}
	r.cache.Set(ctx, catalogKey(saved.Day), matchday.CloneCatalog(saved))
	return saved, nil
}

type ResultRepository struct {
	next  matchday.ResultRepository
	cache *basecache.Store[matchday.ResultSet]
}

func NewResultRepository(next matchday.ResultRepository, cache *basecache.Store[matchday.ResultSet]) *ResultRepository {
	return &ResultRepository{next: next, cache: cache}
}

func (r *ResultRepository) GetByDay(ctx context.Context, day string) (matchday.ResultSet, bool, error) {
	item, err := r.cache.GetOrLoad(ctx, resultKey(day), func(ctx context.Context) (matchday.ResultSet, error) {
		stored, exists, err := r.next.GetByDay(ctx, day)
		if err != nil {
			return matchday.ResultSet{}, err
		}
		if !exists {
			return matchday.ResultSet{}, errNotStored
		}
		return matchday.CloneResultSet(stored), nil
	})
	if errors.Is(err, errNotStored) {
		return matchday.ResultSet{}, false, nil
	}
	if err != nil {
		return matchday.ResultSet{}, false, err
	}

	return matchday.CloneResultSet(item), true, nil
}

func (r *ResultRepository) SaveIfAbsent(ctx context.Context, results matchday.ResultSet) (matchday.ResultSet, error) {
	saved, err := r.next.SaveIfAbsent(ctx, results)
	if err != nil {
		return matchday.ResultSet{}, err
	}
	r.cache.Set(ctx, resultKey(saved.Day), matchday.CloneResultSet(saved))
	return saved, nil
}

func catalogKey(day string) string { return "catalog:day:" + day }

func resultKey(day string) string { return "results:day:" + day }
