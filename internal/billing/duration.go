// Package billing implements the fee and reconciliation engine as pure
// functions: billable-day rounding, rate resolution with a fallback
// default, fee quoting, shift statistics derivation and cash
// reconciliation.  Nothing in this package touches the database; the
// repository and handler layers feed it rows and persist its results.
package billing

import (
    "errors"
    "time"
)

// billableDay is the rounding unit used to price a stay.
const billableDay = 24 * time.Hour

// ErrInvalidInterval is returned when the exit timestamp precedes the
// entry timestamp.  This includes a future-dated entry compared
// against the present during a fee preview.  Callers must reject the
// interval; it is never silently clamped to zero.
var ErrInvalidInterval = errors.New("exit time precedes entry time")

// BillableDays converts an (entry, exit) timestamp pair into the
// number of days to bill.  Whole elapsed days are counted and any
// nonzero remainder rounds a full day up, so a stay of 24h1s bills
// two days while exactly 24h bills one.  Even a zero-duration stay
// bills one day.  Undercharging a fractional day is a business
// correctness bug, so the rounding here must stay exact.
func BillableDays(entryTime, exitTime time.Time) (int, error) {
    elapsed := exitTime.Sub(entryTime)
    if elapsed < 0 {
        return 0, ErrInvalidInterval
    }
    days := int(elapsed / billableDay)
    if elapsed%billableDay > 0 {
        days++
    }
    if days < 1 {
        days = 1
    }
    return days, nil
}
