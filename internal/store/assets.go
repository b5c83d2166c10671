package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/christopherklint97/plantbill/internal/eph"
)

// Asset is a plant asset with its hire rates.
type Asset struct {
	ID    string    `json:"id"`
	Name  string    `json:"name,omitempty"`
	Rates eph.Rates `json:"rates"`
}

func (db *DB) UpsertAsset(ctx context.Context, a Asset) error {
	if a.ID == "" {
		return fmt.Errorf("asset id is required")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO assets (id, name, dry_rate, wet_rate, daily_rate) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			dry_rate = excluded.dry_rate,
			wet_rate = excluded.wet_rate,
			daily_rate = excluded.daily_rate,
			updated_at = CURRENT_TIMESTAMP`,
		a.ID, a.Name, nullable(a.Rates.DryRate), nullable(a.Rates.WetRate), nullable(a.Rates.DailyRate),
	)
	if err != nil {
		return fmt.Errorf("upserting asset %s: %w", a.ID, err)
	}
	return nil
}

// GetAsset returns nil when the asset is unknown.
func (db *DB) GetAsset(ctx context.Context, id string) (*Asset, error) {
	assets, err := db.queryAssets(ctx,
		"SELECT id, name, dry_rate, wet_rate, daily_rate FROM assets WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, nil
	}
	return &assets[0], nil
}

func (db *DB) ListAssets(ctx context.Context) ([]Asset, error) {
	return db.queryAssets(ctx,
		"SELECT id, name, dry_rate, wet_rate, daily_rate FROM assets ORDER BY id ASC")
}

// Rates returns the rates of an asset. An unknown asset has no rates.
func (db *DB) Rates(ctx context.Context, entityID string) (eph.Rates, error) {
	a, err := db.GetAsset(ctx, entityID)
	if err != nil {
		return eph.Rates{}, err
	}
	if a == nil {
		return eph.Rates{}, nil
	}
	return a.Rates, nil
}

func (db *DB) queryAssets(ctx context.Context, query string, args ...any) ([]Asset, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		var dry, wet, daily sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Name, &dry, &wet, &daily); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.Rates = eph.Rates{DryRate: fromNull(dry), WetRate: fromNull(wet), DailyRate: fromNull(daily)}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func fromNull(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
