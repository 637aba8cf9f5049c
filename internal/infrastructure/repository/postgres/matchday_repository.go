package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/daily-coupon/internal/domain/matchday"
	qb "github.com/riskibarqy/daily-coupon/internal/platform/querybuilder"
)

const (
	catalogsTable = "matchday_catalogs"
	resultsTable  = "matchday_results"
)

// CatalogRepository stores one catalog row per day. Concurrent writers race
// on the primary key and the first insert wins.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetByDay(ctx context.Context, day string) (matchday.Catalog, bool, error) {
	query, args, err := qb.Select(qb.Columns(catalogTableModel{})...).
		From(catalogsTable).
		Where(qb.Eq("day", day)).
		ToSQL()
	if err != nil {
		return matchday.Catalog{}, false, fmt.Errorf("build select catalog query: %w", err)
	}

	var row catalogTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchday.Catalog{}, false, nil
		}
		return matchday.Catalog{}, false, fmt.Errorf("get catalog %s: %w", day, err)
	}

	catalog, err := row.toDomain()
	if err != nil {
		return matchday.Catalog{}, false, err
	}
	return catalog, true, nil
}

func (r *CatalogRepository) SaveIfAbsent(ctx context.Context, catalog matchday.Catalog) (matchday.Catalog, error) {
	model, err := newCatalogTableModel(catalog)
	if err != nil {
		return matchday.Catalog{}, err
	}
	if err := insertIgnoringConflict(ctx, r.db, catalogsTable, model); err != nil {
		return matchday.Catalog{}, fmt.Errorf("save catalog %s: %w", catalog.Day, err)
	}

	stored, ok, err := r.GetByDay(ctx, catalog.Day)
	if err != nil {
		return matchday.Catalog{}, err
	}
	if !ok {
		return matchday.Catalog{}, fmt.Errorf("catalog %s missing after insert", catalog.Day)
	}
	return stored, nil
}

// ResultRepository stores one materialized result set per day.
type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) GetByDay(ctx context.Context, day string) (matchday.ResultSet, bool, error) {
	query, args, err := qb.Select(qb.Columns(resultTableModel{})...).
		From(resultsTable).
		Where(qb.Eq("day", day)).
		ToSQL()
	if err != nil {
		return matchday.ResultSet{}, false, fmt.Errorf("build select results query: %w", err)
	}

	var row resultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchday.ResultSet{}, false, nil
		}
		return matchday.ResultSet{}, false, fmt.Errorf("get results %s: %w", day, err)
	}

	results, err := row.toDomain()
	if err != nil {
		return matchday.ResultSet{}, false, err
	}
	return results, true, nil
}

func (r *ResultRepository) SaveIfAbsent(ctx context.Context, results matchday.ResultSet) (matchday.ResultSet, error) {
	model, err := newResultTableModel(results)
	if err != nil {
		return matchday.ResultSet{}, err
	}
	if err := insertIgnoringConflict(ctx, r.db, resultsTable, model); err != nil {
		return matchday.ResultSet{}, fmt.Errorf("save results %s: %w", results.Day, err)
	}

	stored, ok, err := r.GetByDay(ctx, results.Day)
	if err != nil {
		return matchday.ResultSet{}, err
	}
	if !ok {
		return matchday.ResultSet{}, fmt.Errorf("results %s missing after insert", results.Day)
	}
	return stored, nil
}

func insertIgnoringConflict(ctx context.Context, db *sqlx.DB, table string, model any) error {
	builder, err := qb.InsertModel(table, model)
	if err != nil {
		return err
	}
	query, args, err := builder.OnConflict("(day) DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", table, err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}
