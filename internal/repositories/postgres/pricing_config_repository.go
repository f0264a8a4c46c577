// Package postgres reads pricing rule overrides from a PostgreSQL pricing_config table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	domain "github.com/sash-studio/api/internal/domain"
	"github.com/sash-studio/api/internal/repositories"
)

const driverName = "pgx"

const selectOverrides = `
SELECT bar_price,
       glass_triple_price,
       glass_passive_price,
       glass_frosted_price,
       opening_bottom_price,
       opening_fixed_price
FROM pricing_config
WHERE id = $1`

const pricingConfigRowID = 1

// Open prepares a pgx-backed handle for dsn. No connection is made until the first query,
// so an unreachable server surfaces from LoadOverrides or Ping rather than here.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	return db, nil
}

// PricingConfigRepository loads the override row with id 1.
type PricingConfigRepository struct {
	db *sql.DB
}

var _ repositories.PricingConfigRepository = (*PricingConfigRepository)(nil)

// NewPricingConfigRepository wraps an open database handle.
func NewPricingConfigRepository(db *sql.DB) (*PricingConfigRepository, error) {
	if db == nil {
		return nil, errors.New("postgres: pricing config repository requires db")
	}
	return &PricingConfigRepository{db: db}, nil
}

// LoadOverrides returns empty overrides when the row does not exist. NULL columns stay unset.
func (r *PricingConfigRepository) LoadOverrides(ctx context.Context) (domain.PricingOverrides, error) {
	var cols overrideColumns
	err := r.db.QueryRowContext(ctx, selectOverrides, pricingConfigRowID).Scan(
		&cols.barPrice,
		&cols.glassTriplePrice,
		&cols.glassPassivePrice,
		&cols.glassFrostedPrice,
		&cols.openingBottomPrice,
		&cols.openingFixedPrice,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PricingOverrides{}, nil
	}
	if err != nil {
		return domain.PricingOverrides{}, fmt.Errorf("postgres: load pricing_config: %w", err)
	}
	return cols.overrides()
}

// Ping checks connectivity for the readiness check.
func (r *PricingConfigRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type overrideColumns struct {
	barPrice           sql.NullFloat64
	glassTriplePrice   sql.NullFloat64
	glassPassivePrice  sql.NullFloat64
	glassFrostedPrice  sql.NullFloat64
	openingBottomPrice sql.NullFloat64
	openingFixedPrice  sql.NullFloat64
}

func (c overrideColumns) overrides() (domain.PricingOverrides, error) {
	var out domain.PricingOverrides
	fields := []struct {
		name string
		src  sql.NullFloat64
		dst  **float64
	}{
		{repositories.FieldBarPrice, c.barPrice, &out.BarPrice},
		{repositories.FieldGlassTriplePrice, c.glassTriplePrice, &out.GlassTriplePrice},
		{repositories.FieldGlassPassivePrice, c.glassPassivePrice, &out.GlassPassivePrice},
		{repositories.FieldGlassFrostedPrice, c.glassFrostedPrice, &out.GlassFrostedPrice},
		{repositories.FieldOpeningBottomPrice, c.openingBottomPrice, &out.OpeningBottomPrice},
		{repositories.FieldOpeningFixedPrice, c.openingFixedPrice, &out.OpeningFixedPrice},
	}
	for _, f := range fields {
		if !f.src.Valid {
			continue
		}
		if math.IsNaN(f.src.Float64) || math.IsInf(f.src.Float64, 0) {
			return domain.PricingOverrides{}, fmt.Errorf("postgres: %s is not a finite number", f.name)
		}
		v := f.src.Float64
		*f.dst = &v
	}
	return out, nil
}
