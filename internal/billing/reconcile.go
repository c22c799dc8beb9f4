package billing

import "github.com/mgthura/parking-ledger/internal/model"

// Thresholds classify the absolute cash delta at shift close.  Deltas
// up to SmallCents are balanced, up to LargeCents are minor, and
// anything beyond is major.  Both values come from configuration;
// nothing here is hardcoded.
type Thresholds struct {
    SmallCents int64
    LargeCents int64
}

// Reconcile compares the counted drawer cash against the expected
// closing cash for a shift.  Expected cash is the opening float plus
// cash revenue only; digital revenue never touches the drawer and is
// excluded.  The function is advisory and mutates nothing: the caller
// decides whether the resulting classification permits the shift to
// be finalized.
func Reconcile(shiftID uint64, openingCashCents, cashRevenueCents, actualCashCents int64, t Thresholds) model.Discrepancy {
    expected := openingCashCents + cashRevenueCents
    delta := actualCashCents - expected
    return model.Discrepancy{
        ShiftID:           shiftID,
        ExpectedCashCents: expected,
        ActualCashCents:   actualCashCents,
        DeltaCents:        delta,
        Classification:    Classify(delta, t),
    }
}

// Classify maps a signed cash delta onto a discrepancy class using
// the configured thresholds.
func Classify(deltaCents int64, t Thresholds) string {
    abs := deltaCents
    if abs < 0 {
        abs = -abs
    }
    switch {
    case abs <= t.SmallCents:
        return model.DiscrepancyBalanced
    case abs <= t.LargeCents:
        return model.DiscrepancyMinor
    default:
        return model.DiscrepancyMajor
    }
}
