package repository

import (
    "context"
    "database/sql"

    "github.com/mgthura/parking-ledger/internal/model"
)

// RateRepo reads the vehicle-type rate table.  Rates are maintained
// by the settings subsystem and are read-only to the fee engine:
// callers load the full table once per transaction and build a
// billing.RateTable from it, so a single fee computation never sees a
// half-updated table.
type RateRepo struct {
    db *sql.DB
}

// NewRateRepo returns a new RateRepo bound to the given database.
func NewRateRepo(db *sql.DB) *RateRepo { return &RateRepo{db: db} }

const rateColumns = `id, vehicle_type, daily_rate_cents, created_at, updated_at`

// LoadAll returns every configured rate entry.
func (r *RateRepo) LoadAll(ctx context.Context) ([]model.RateEntry, error) {
    const q = `SELECT ` + rateColumns + ` FROM rate_entries ORDER BY vehicle_type`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectRates(rows)
}

// LoadAllTx returns every configured rate entry within the caller's
// transaction, so fee computation and persistence read one snapshot.
func (r *RateRepo) LoadAllTx(ctx context.Context, tx *sql.Tx) ([]model.RateEntry, error) {
    const q = `SELECT ` + rateColumns + ` FROM rate_entries ORDER BY vehicle_type`
    rows, err := tx.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectRates(rows)
}

func collectRates(rows *sql.Rows) ([]model.RateEntry, error) {
    out := make([]model.RateEntry, 0)
    for rows.Next() {
        var e model.RateEntry
        if err := rows.Scan(&e.ID, &e.VehicleType, &e.DailyRateCents, &e.CreatedAt, &e.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}
