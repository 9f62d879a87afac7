package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS presets (
    name                  TEXT PRIMARY KEY,
    purchase_price        REAL NOT NULL,
    monthly_running_cost  REAL NOT NULL,
    fuel_consumption      REAL NOT NULL,
    interest_rate         REAL NOT NULL,
    financing_years       INTEGER NOT NULL,
    balloon_payment       REAL NOT NULL,
    insurance_annual_cost REAL NOT NULL,
    km_per_year           REAL NOT NULL,
    fuel_price            REAL NOT NULL,
    lifetime_years        INTEGER NOT NULL,
    inflation_percent     REAL NOT NULL,
    updated_at            TEXT NOT NULL
);
`
