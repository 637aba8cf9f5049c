package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
)

type CatalogRepository struct {
	mu    sync.RWMutex
	items map[string]matchday.Catalog
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{items: make(map[string]matchday.Catalog)}
}

func (r *CatalogRepository) GetByDay(_ context.Context, day string) (matchday.Catalog, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[day]
	if !ok {
		return matchday.Catalog{}, false, nil
	}
	return matchday.CloneCatalog(c), true, nil
}

// SaveIfAbsent stores catalog unless the day already has one, and returns the
// stored catalog either way.
func (r *CatalogRepository) SaveIfAbsent(_ context.Context, catalog matchday.Catalog) (matchday.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[catalog.Day]; ok {
		return matchday.CloneCatalog(existing), nil
	}
	r.items[catalog.Day] = matchday.CloneCatalog(catalog)
	return matchday.CloneCatalog(catalog), nil
}

type ResultRepository struct {
	mu    sync.RWMutex
	items map[string]matchday.ResultSet
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{items: make(map[string]matchday.ResultSet)}
}

func (r *ResultRepository) GetByDay(_ context.Context, day string) (matchday.ResultSet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rs, ok := r.items[day]
	if !ok {
		return matchday.ResultSet{}, false, nil
	}
	return matchday.CloneResultSet(rs), true, nil
}

func (r *ResultRepository) SaveIfAbsent(_ context.Context, results matchday.ResultSet) (matchday.ResultSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[results.Day]; ok {
		return matchday.CloneResultSet(existing), nil
	}
	r.items[results.Day] = matchday.CloneResultSet(results)
	return matchday.CloneResultSet(results), nil
}
