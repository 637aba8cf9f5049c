package matchday

import "context"

// CatalogRepository stores published catalogs. SaveIfAbsent keeps the first
// catalog written for a day and returns whichever catalog is stored.
type CatalogRepository interface {
	GetByDay(ctx context.Context, day string) (Catalog, bool, error)
	SaveIfAbsent(ctx context.Context, catalog Catalog) (Catalog, error)
}

// ResultRepository stores materialized result sets with the same
// first-writer-wins rule as CatalogRepository.
type ResultRepository interface {
	GetByDay(ctx context.Context, day string) (ResultSet, bool, error)
	SaveIfAbsent(ctx context.Context, results ResultSet) (ResultSet, error)
}
