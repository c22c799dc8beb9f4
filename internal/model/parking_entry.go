package model

import "time"

// Payment methods accepted at the gate.  Cash payments flow into the
// drawer and are counted at shift close; digital payments never touch
// physical cash and are excluded from cash reconciliation.
const (
    PaymentCash    = "CASH"    // parking_entries.payment_method = 'CASH'
    PaymentDigital = "DIGITAL" // parking_entries.payment_method = 'DIGITAL'
)

// ParkingEntry represents a row in the `parking_entries` table.  One
// row records a single vehicle visit from gate-in to gate-out.  The
// fee is written exactly once, at exit, and is never recomputed
// afterwards unless a manager issues an explicit correction.  Rows
// are never hard-deleted; archiving sets ArchivedAt and removes the
// entry from all shift aggregates.
//
// Fields:
//  ID             – primary key identifier.
//  VehicleNumber  – licence plate, stored upper-cased.
//  VehicleType    – raw vehicle type string as captured at the gate.
//  DriverName     – driver name, optional.
//  Notes          – free-form notes, optional.
//  EntryTime      – when the vehicle entered (UTC).
//  ExitTime       – when the vehicle exited (nullable until exit).
//  FeeCents       – billed fee in cents (nullable until exit).
//  PaymentMethod  – CASH or DIGITAL.
//  PaymentSettled – whether the fee has actually been collected.
//  UsedFallback   – the fee was priced with the default rate because
//                   the vehicle type had no configured rate.
//  ShiftID        – shift that was active when the vehicle entered
//                   (nullable when no shift was open).
//  ArchivedAt     – soft-delete timestamp (nullable).
//  CreatedBy      – employee who recorded the entry.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type ParkingEntry struct {
    ID             uint64     // parking_entries.id
    VehicleNumber  string     // parking_entries.vehicle_number
    VehicleType    string     // parking_entries.vehicle_type
    DriverName     string     // parking_entries.driver_name
    Notes          string     // parking_entries.notes
    EntryTime      time.Time  // parking_entries.entry_time
    ExitTime       *time.Time // parking_entries.exit_time (nullable)
    FeeCents       *int64     // parking_entries.fee_cents (nullable)
    PaymentMethod  string     // parking_entries.payment_method
    PaymentSettled bool       // parking_entries.payment_settled
    UsedFallback   bool       // parking_entries.used_fallback
    ShiftID        *uint64    // parking_entries.shift_id (nullable)
    ArchivedAt     *time.Time // parking_entries.archived_at (nullable)
    CreatedBy      uint64     // parking_entries.created_by
    CreatedAt      time.Time  // parking_entries.created_at
    UpdatedAt      time.Time  // parking_entries.updated_at
}

// Exited reports whether the entry has completed its visit.
func (e *ParkingEntry) Exited() bool { return e.ExitTime != nil }

// Archived reports whether the entry has been soft-deleted.
func (e *ParkingEntry) Archived() bool { return e.ArchivedAt != nil }
