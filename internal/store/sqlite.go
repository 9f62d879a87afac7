package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLiteStore keeps presets in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the preset database at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating preset dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening preset db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the preset database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save stores params under name, replacing any existing preset.
func (s *SQLiteStore) Save(ctx context.Context, name string, params costmodel.Parameters) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO presets
		(name, purchase_price, monthly_running_cost, fuel_consumption, interest_rate,
		 financing_years, balloon_payment, insurance_annual_cost, km_per_year,
		 fuel_price, lifetime_years, inflation_percent, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, params.PurchasePrice, params.MonthlyRunningCost, params.FuelConsumption, params.InterestRate,
		params.FinancingYears, params.BalloonPayment, params.InsuranceAnnualCost, params.KmPerYear,
		params.FuelPrice, params.LifetimeYears, params.InflationPercent, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving preset %s: %w", name, err)
	}
	return nil
}

// Load returns the preset stored under name.
func (s *SQLiteStore) Load(ctx context.Context, name string) (costmodel.Parameters, error) {
	name, err := normalizeName(name)
	if err != nil {
		return costmodel.Parameters{}, err
	}

	var p costmodel.Parameters
	err = s.db.QueryRowContext(ctx, `SELECT purchase_price, monthly_running_cost, fuel_consumption,
		interest_rate, financing_years, balloon_payment, insurance_annual_cost, km_per_year,
		fuel_price, lifetime_years, inflation_percent
		FROM presets WHERE name = ?`, name).Scan(
		&p.PurchasePrice, &p.MonthlyRunningCost, &p.FuelConsumption,
		&p.InterestRate, &p.FinancingYears, &p.BalloonPayment, &p.InsuranceAnnualCost, &p.KmPerYear,
		&p.FuelPrice, &p.LifetimeYears, &p.InflationPercent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return costmodel.Parameters{}, notFound(name)
	}
	if err != nil {
		return costmodel.Parameters{}, fmt.Errorf("loading preset %s: %w", name, err)
	}
	return p, nil
}

// Delete removes the preset stored under name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting preset %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

// List returns the preset names in alphabetical order.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM presets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
