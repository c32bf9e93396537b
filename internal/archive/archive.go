// Package archive keeps a history of completed scrapes in sqlite.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"
	"ubereats-scraper/internal/components/assert"
	"ubereats-scraper/internal/offers"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at `path`, ":memory:" works
// too.
func Open(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// a single connection keeps ":memory:" databases alive between calls
	db.SetMaxOpenConns(1)

	store, err := NewStore(ctx, db)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return store, nil
}

// NewStore applies the schema to an already open database.
func NewStore(ctx context.Context, db *sql.DB) (Store, error) {
	if _, err := db.ExecContext(ctx, "pragma foreign_keys = on"); err != nil {
		return Store{}, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return Store{db: db}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Run struct {
	ID         int64
	City       string
	Region     string
	StartedAt  time.Time
	FinishedAt time.Time
	Pages      int
}

// Save records a run and every one of its offers in a single transaction.
func (s Store) Save(ctx context.Context, run Run, result offers.Result) (int64, error) {
	assert.NotEmptyStr(run.City)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		`insert into runs (city, region, started_at, finished_at, pages) values (?, ?, ?, ?, ?)`,
		run.City, run.Region, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.Pages,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insert, err := tx.PrepareContext(ctx, `insert into offers (
		run_id, name, seq, rating, delivery_time, delivery_cost, price_range, store_url, store_uuid, badges
	) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	for _, name := range result.Names() {
		for seq, offer := range result[name] {
			badges, err := json.Marshal(offer.Badges)
			if err != nil {
				return 0, err
			}
			_, err = insert.ExecContext(
				ctx,
				runID, name, seq,
				offer.Rating, offer.DeliveryTime, offer.DeliveryCost,
				offer.PriceRange, offer.StoreURL, offer.StoreUUID, string(badges),
			)
			if err != nil {
				return 0, fmt.Errorf("insert offer %q: %w", name, err)
			}
		}
	}

	return runID, tx.Commit()
}

// Runs lists archived runs, most recent first.
func (s Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select id, city, region, started_at, finished_at, pages from runs order by id desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, finishedAt int64
		err := rows.Scan(&r.ID, &r.City, &r.Region, &startedAt, &finishedAt, &r.Pages)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.FinishedAt = time.Unix(finishedAt, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Offers reads back the result of a run.
func (s Store) Offers(ctx context.Context, runID int64) (offers.Result, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select name, rating, delivery_time, delivery_cost, price_range, store_url, store_uuid, badges
		from offers where run_id = ? order by name, seq`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := offers.Result{}
	for rows.Next() {
		var name, badges string
		var o offers.Offer
		err := rows.Scan(&name, &o.Rating, &o.DeliveryTime, &o.DeliveryCost, &o.PriceRange, &o.StoreURL, &o.StoreUUID, &badges)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(badges), &o.Badges); err != nil {
			return nil, fmt.Errorf("decode badges of %q: %w", name, err)
		}
		result[name] = append(result[name], o)
	}
	return result, rows.Err()
}
