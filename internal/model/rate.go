package model

import "time"

// RateEntry represents a row in the `rate_entries` table.  Each row
// maps a vehicle type to its daily parking rate.  Rates are stored
// as integer cents to avoid floating point rounding.  The table is
// maintained by the settings subsystem and is read-only to the fee
// engine; a separately configured default rate covers vehicle types
// without a row of their own.
//
// Fields:
//  ID             – primary key identifier.
//  VehicleType    – unique display name of the vehicle type (e.g. "2-Wheeler").
//  DailyRateCents – price per billable day in cents.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type RateEntry struct {
    ID             uint64    // rate_entries.id
    VehicleType    string    // rate_entries.vehicle_type
    DailyRateCents int64     // rate_entries.daily_rate_cents
    CreatedAt      time.Time // rate_entries.created_at
    UpdatedAt      time.Time // rate_entries.updated_at
}
