package repository

import (
    "context"
    "database/sql"

    "github.com/mgthura/parking-ledger/internal/model"
)

// StatsRepo persists the derived shift statistics snapshot.  The
// shift_statistics table is never a source of truth: every write that
// touches a linked entry recomputes the full aggregate from the entry
// rows (billing.ComputeStatistics) and replaces the snapshot in the
// same transaction.  There is deliberately no increment/decrement
// method here — partial updates are how counters drift.
type StatsRepo struct {
    db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// UpsertTx replaces the statistics snapshot for a shift within the
// given transaction.
func (r *StatsRepo) UpsertTx(ctx context.Context, tx *sql.Tx, stats model.ShiftStatistics) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO shift_statistics
         (shift_id, vehicles_entered, vehicles_exited, revenue_total_cents,
          cash_revenue_cents, digital_revenue_cents, computed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE
          vehicles_entered = VALUES(vehicles_entered),
          vehicles_exited = VALUES(vehicles_exited),
          revenue_total_cents = VALUES(revenue_total_cents),
          cash_revenue_cents = VALUES(cash_revenue_cents),
          digital_revenue_cents = VALUES(digital_revenue_cents),
          computed_at = VALUES(computed_at)`,
        stats.ShiftID, stats.VehiclesEntered, stats.VehiclesExited,
        stats.RevenueTotalCents, stats.CashRevenueCents, stats.DigitalRevenueCents,
        stats.ComputedAt.UTC())
    return err
}

// Get returns the stored snapshot for a shift.  sql.ErrNoRows is
// passed through when the shift has never had its statistics
// computed; callers fall back to a fresh recomputation.
func (r *StatsRepo) Get(ctx context.Context, shiftID uint64) (*model.ShiftStatistics, error) {
    const q = `SELECT shift_id, vehicles_entered, vehicles_exited, revenue_total_cents,
                      cash_revenue_cents, digital_revenue_cents, computed_at
               FROM shift_statistics WHERE shift_id = ?`
    var s model.ShiftStatistics
    err := r.db.QueryRowContext(ctx, q, shiftID).Scan(
        &s.ShiftID, &s.VehiclesEntered, &s.VehiclesExited, &s.RevenueTotalCents,
        &s.CashRevenueCents, &s.DigitalRevenueCents, &s.ComputedAt)
    if err != nil {
        return nil, err
    }
    return &s, nil
}
