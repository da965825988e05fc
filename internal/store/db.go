package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/ukbuild/material-hunter/internal/pipeline"
)

// Store persists search history in Postgres. The application runs fine
// without it; callers treat a nil Store as history disabled.
type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Search is one saved query plus the results it produced.
type Search struct {
	ID          int            `json:"id"`
	Query       string         `json:"query"`
	Source      string         `json:"source"`
	ResultCount int            `json:"result_count"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	CreatedAt   time.Time      `json:"created_at"`
	Results     []SearchResult `json:"results,omitempty"`
}

// SearchResult is one ranked record as stored. Attributes round-trip
// through a jsonb column.
type SearchResult struct {
	ID          int               `json:"id"`
	SearchID    int               `json:"search_id"`
	Supplier    string            `json:"supplier"`
	ProductName string            `json:"product_name"`
	PriceValue  *float64          `json:"price_value,omitempty"`
	PriceText   string            `json:"price_text"`
	Relevance   float64           `json:"relevance"`
	Rank        int               `json:"rank"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// SaveSearch records a completed search and its ranked results in one
// transaction. Best-effort from the caller's point of view.
func (s *Store) SaveSearch(ctx context.Context, query, source string, elapsed time.Duration, records []pipeline.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var searchID int
	err = tx.QueryRowContext(ctx, `
INSERT INTO searches (query, source, result_count, elapsed_ms, created_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id
`, query, source, len(records), elapsed.Milliseconds()).Scan(&searchID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert search: %w", err)
	}

	for i, rec := range records {
		var priceValue *float64
		if rec.Price.Known {
			v := rec.Price.Value
			priceValue = &v
		}
		attrs, err := json.Marshal(rec.Attributes)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal attributes: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO search_results (search_id, supplier, product_name, price_value, price_text, relevance, rank, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, searchID, rec.Supplier, rec.ProductName, priceValue, rec.Price.Display, rec.Relevance, i+1, attrs)
		if err != nil {
			return 0, fmt.Errorf("failed to insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return searchID, nil
}

// RecentSearches returns the newest saved searches with their results.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]Search, error) {
	limit = clampLimit(limit, 20, 200)

	rows, err := s.db.QueryContext(ctx, `
SELECT id, query, source, result_count, elapsed_ms, created_at
FROM searches
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []Search
	byID := make(map[int]int)
	for rows.Next() {
		var sr Search
		if err := rows.Scan(&sr.ID, &sr.Query, &sr.Source, &sr.ResultCount, &sr.ElapsedMs, &sr.CreatedAt); err != nil {
			return nil, err
		}
		byID[sr.ID] = len(searches)
		searches = append(searches, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(searches) == 0 {
		return searches, nil
	}

	ids := make([]int64, 0, len(searches))
	for _, sr := range searches {
		ids = append(ids, int64(sr.ID))
	}
	resultRows, err := s.db.QueryContext(ctx, `
SELECT id, search_id, supplier, product_name, price_value, price_text, relevance, rank, attributes
FROM search_results
WHERE search_id = ANY($1)
ORDER BY search_id, rank
`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var (
			res        SearchResult
			priceValue sql.NullFloat64
			attrs      []byte
		)
		if err := resultRows.Scan(&res.ID, &res.SearchID, &res.Supplier, &res.ProductName, &priceValue, &res.PriceText, &res.Relevance, &res.Rank, &attrs); err != nil {
			return nil, err
		}
		if priceValue.Valid {
			v := priceValue.Float64
			res.PriceValue = &v
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &res.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
			}
		}
		if idx, ok := byID[res.SearchID]; ok {
			searches[idx].Results = append(searches[idx].Results, res)
		}
	}
	return searches, resultRows.Err()
}

// DeleteOldSearches removes searches older than the cutoff. Results go
// with them via the foreign key cascade.
func (s *Store) DeleteOldSearches(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM searches
WHERE created_at < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
