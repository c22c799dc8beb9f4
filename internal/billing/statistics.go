package billing

import (
    "time"

    "github.com/mgthura/parking-ledger/internal/model"
)

// ComputeStatistics derives the full statistics set for one shift
// from the parking entries linked to it.  It is a pure function over
// the row set: callers recompute from scratch after every write that
// touches a linked entry instead of maintaining incremental counters,
// so the aggregate can never drift from the underlying rows.
//
// Archived entries and entries linked to a different shift are
// ignored.  Revenue counts only entries that have exited with a
// settled fee; a vehicle that has merely entered contributes to the
// entered count but no revenue.
func ComputeStatistics(shiftID uint64, entries []model.ParkingEntry, computedAt time.Time) model.ShiftStatistics {
    stats := model.ShiftStatistics{
        ShiftID:    shiftID,
        ComputedAt: computedAt,
    }
    for i := range entries {
        e := &entries[i]
        if e.Archived() || e.ShiftID == nil || *e.ShiftID != shiftID {
            continue
        }
        stats.VehiclesEntered++
        if !e.Exited() {
            continue
        }
        stats.VehiclesExited++
        if !e.PaymentSettled || e.FeeCents == nil {
            continue
        }
        stats.RevenueTotalCents += *e.FeeCents
        switch e.PaymentMethod {
        case model.PaymentCash:
            stats.CashRevenueCents += *e.FeeCents
        case model.PaymentDigital:
            stats.DigitalRevenueCents += *e.FeeCents
        }
    }
    return stats
}

// StatisticsEqual compares two statistics snapshots ignoring the
// computation timestamp.  It backs the consistency check that detects
// a stale stored snapshot, which indicates a bug in recompute wiring
// and must be treated as a data-integrity alert.
func StatisticsEqual(a, b model.ShiftStatistics) bool {
    return a.ShiftID == b.ShiftID &&
        a.VehiclesEntered == b.VehiclesEntered &&
        a.VehiclesExited == b.VehiclesExited &&
        a.RevenueTotalCents == b.RevenueTotalCents &&
        a.CashRevenueCents == b.CashRevenueCents &&
        a.DigitalRevenueCents == b.DigitalRevenueCents
}
