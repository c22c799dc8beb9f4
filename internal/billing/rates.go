package billing

import (
    "strings"
    "unicode"

    "github.com/mgthura/parking-ledger/internal/model"
)

// RateTable resolves a vehicle type to its daily rate.  It is built
// once per transaction from the rate_entries rows plus the configured
// default rate, so lookups never hit the database.  Matching is
// tolerant of case, whitespace and punctuation differences between
// what the gate operator typed and what configuration stores:
// "2wheeler", " 2-Wheeler " and "2 WHEELER" all resolve the same row.
type RateTable struct {
    defaultCents int64
    rates        map[string]int64 // normalized vehicle type -> daily rate cents
}

// NewRateTable builds a table from rate entries and a default daily
// rate in cents.  Later entries with the same normalized type win,
// matching the unique constraint on rate_entries.vehicle_type.
func NewRateTable(entries []model.RateEntry, defaultRateCents int64) RateTable {
    t := RateTable{
        defaultCents: defaultRateCents,
        rates:        make(map[string]int64, len(entries)),
    }
    for _, e := range entries {
        key := NormalizeVehicleType(e.VehicleType)
        if key == "" {
            continue
        }
        t.rates[key] = e.DailyRateCents
    }
    return t
}

// DefaultRateCents returns the configured fallback daily rate.
func (t RateTable) DefaultRateCents() int64 { return t.defaultCents }

// Resolve returns the daily rate in cents for the given raw vehicle
// type and whether the fallback default was used.  An unknown type is
// not an error: the default rate applies and the flag is surfaced so
// callers can record it for audit.
func (t RateTable) Resolve(vehicleType string) (int64, bool) {
    key := NormalizeVehicleType(vehicleType)
    if key != "" {
        if cents, ok := t.rates[key]; ok {
            return cents, false
        }
    }
    return t.defaultCents, true
}

// NormalizeVehicleType lowers the string and strips everything that
// is not a letter or digit, collapsing "2-Wheeler" and "2 wheeler"
// into the same lookup key.
func NormalizeVehicleType(s string) string {
    var b strings.Builder
    for _, r := range s {
        if unicode.IsLetter(r) || unicode.IsDigit(r) {
            b.WriteRune(unicode.ToLower(r))
        }
    }
    return b.String()
}
