package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/hotelmatch/internal/config"
	"github.com/stwalsh4118/hotelmatch/internal/models"
	"github.com/stwalsh4118/hotelmatch/internal/observability"
)

// Querier is the subset of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RejectedRow describes a warehouse row that could not be decoded.
type RejectedRow struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// HotelLoad is the result of loading one day: the usable records in
// warehouse order plus the rows that were dropped.
type HotelLoad struct {
	Records  []models.HotelRecord `json:"records"`
	Rejected []RejectedRow        `json:"rejected,omitempty"`
}

// MatchRepository reads the daily geobox match table.
type MatchRepository interface {
	// LatestDay returns the most recent ql2_day, or "" when the table is empty.
	LatestDay(ctx context.Context) (string, error)

	// HotelsForDay returns every hotel of the day's match groups, newest
	// creation_time first. Excluded statuses and sites are filtered out.
	HotelsForDay(ctx context.Context, day string) (HotelLoad, error)
}

type matchRepository struct {
	db             Querier
	table          string
	excludedStatus string
	excludedSite   string
}

// NewMatchRepository creates a MatchRepository over the configured table.
func NewMatchRepository(db Querier, cfg config.ReviewConfig) MatchRepository {
	return &matchRepository{
		db:             db,
		table:          pgx.Identifier(strings.Split(cfg.Table, ".")).Sanitize(),
		excludedStatus: cfg.ExcludedStatus,
		excludedSite:   cfg.ExcludedSite,
	}
}

func (r *matchRepository) LatestDay(ctx context.Context) (string, error) {
	query := fmt.Sprintf(`SELECT max(ql2_day)::text FROM %s`, r.table)

	start := time.Now()
	var day *string
	err := r.db.QueryRow(ctx, query).Scan(&day)
	observability.ObserveQuery("latest_day", err, time.Since(start))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query latest day: %w", err)
	}
	if day == nil {
		return "", nil
	}
	return *day, nil
}

func (r *matchRepository) HotelsForDay(ctx context.Context, day string) (HotelLoad, error) {
	// Casts keep the comparison textual whatever the warehouse column types are.
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE ql2_day::text = $1
		  AND status::text <> $2
		  AND site::text <> $3
		ORDER BY creation_time DESC
	`, strings.Join(columns, ", "), r.table)

	start := time.Now()
	load, err := r.scanHotels(ctx, query, day)
	observability.ObserveQuery("hotels_for_day", err, time.Since(start))
	if err != nil {
		return HotelLoad{}, fmt.Errorf("failed to query hotels for day %s: %w", day, err)
	}
	return load, nil
}

func (r *matchRepository) scanHotels(ctx context.Context, query, day string) (HotelLoad, error) {
	rows, err := r.db.Query(ctx, query, day, r.excludedStatus, r.excludedSite)
	if err != nil {
		return HotelLoad{}, err
	}
	defer rows.Close()

	index := columnIndex(rows.FieldDescriptions())
	load := HotelLoad{Records: []models.HotelRecord{}}

	n := 0
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return HotelLoad{}, fmt.Errorf("failed to read row %d: %w", n, err)
		}

		record, derr := decodeRow(func(col string) any {
			i, ok := index[col]
			if !ok || i >= len(values) {
				return nil
			}
			return values[i]
		})
		if derr != nil {
			load.Rejected = append(load.Rejected, RejectedRow{Row: n, Column: derr.Column, Reason: derr.Reason})
		} else {
			load.Records = append(load.Records, record)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return HotelLoad{}, fmt.Errorf("error iterating hotel rows: %w", err)
	}
	return load, nil
}

func columnIndex(fields []pgconn.FieldDescription) map[string]int {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[strings.ToLower(f.Name)] = i
	}
	return index
}
