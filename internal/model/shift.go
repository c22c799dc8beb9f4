package model

import "time"

// Shift session states.  A session moves ACTIVE -> COMPLETED exactly
// once and never back.  At most one session may be ACTIVE at any
// instant system-wide; the shift repository enforces this both with a
// locked read and a one-row uniqueness guard.
const (
    ShiftActive    = "ACTIVE"    // shift_sessions.status = 'ACTIVE'
    ShiftCompleted = "COMPLETED" // shift_sessions.status = 'COMPLETED'
)

// ShiftSession represents a row in the `shift_sessions` table.  One
// row covers the period an employee is responsible for the cash
// drawer.  The expected/delta/note columns are written once at close
// time as the audit annotation produced by reconciliation; they are
// never used as a source of truth for statistics.
//
// Fields:
//  ID                – primary key identifier.
//  EmployeeID        – the employee responsible for the drawer.
//  StartTime         – when the shift opened (UTC).
//  EndTime           – when the shift closed (nullable while active).
//  OpeningCashCents  – drawer float counted at shift open.
//  ClosingCashCents  – drawer cash counted at shift close (nullable).
//  ExpectedCashCents – opening cash + cash revenue, recorded at close.
//  CashDeltaCents    – closing minus expected, recorded at close.
//  DiscrepancyNote   – mandatory note when a major discrepancy is confirmed.
//  Status            – ACTIVE or COMPLETED.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type ShiftSession struct {
    ID                uint64     // shift_sessions.id
    EmployeeID        uint64     // shift_sessions.employee_id
    StartTime         time.Time  // shift_sessions.start_time
    EndTime           *time.Time // shift_sessions.end_time (nullable)
    OpeningCashCents  int64      // shift_sessions.opening_cash_cents
    ClosingCashCents  *int64     // shift_sessions.closing_cash_cents (nullable)
    ExpectedCashCents *int64     // shift_sessions.expected_cash_cents (nullable)
    CashDeltaCents    *int64     // shift_sessions.cash_delta_cents (nullable)
    DiscrepancyNote   *string    // shift_sessions.discrepancy_note (nullable)
    Status            string     // shift_sessions.status
    CreatedAt         time.Time  // shift_sessions.created_at
    UpdatedAt         time.Time  // shift_sessions.updated_at
}

// ShiftStatistics is the derived aggregate for one shift.  It is
// always recomputable as a pure function of the parking entries
// linked to the shift; the `shift_statistics` table only holds the
// latest snapshot of that computation and must never be maintained
// incrementally.
//
// Fields:
//  ShiftID            – shift the statistics belong to.
//  VehiclesEntered    – count of non-archived entries linked to the shift.
//  VehiclesExited     – count of those that have exited.
//  RevenueTotalCents  – sum of settled fees across all payment methods.
//  CashRevenueCents   – settled fees paid in cash.
//  DigitalRevenueCents – settled fees paid digitally.
//  ComputedAt         – when this snapshot was produced.
type ShiftStatistics struct {
    ShiftID             uint64    `json:"shift_id"`
    VehiclesEntered     int       `json:"vehicles_entered"`
    VehiclesExited      int       `json:"vehicles_exited"`
    RevenueTotalCents   int64     `json:"revenue_total_cents"`
    CashRevenueCents    int64     `json:"cash_revenue_cents"`
    DigitalRevenueCents int64     `json:"digital_revenue_cents"`
    ComputedAt          time.Time `json:"computed_at"`
}

// Discrepancy classifications produced by reconciliation.  Balanced
// and minor deltas only inform the operator; a major delta blocks
// shift close until it is confirmed with a note.
const (
    DiscrepancyBalanced = "balanced"
    DiscrepancyMinor    = "minor"
    DiscrepancyMajor    = "major"
)

// Discrepancy is the ephemeral result of comparing counted drawer
// cash against the expected closing cash for a shift.  It is computed
// at shift end and returned to the caller; it is persisted only as an
// annotation on the shift_sessions row, never as its own entity.
type Discrepancy struct {
    ShiftID           uint64 `json:"shift_id"`
    ExpectedCashCents int64  `json:"expected_closing_cash_cents"`
    ActualCashCents   int64  `json:"actual_closing_cash_cents"`
    DeltaCents        int64  `json:"delta_cents"`
    Classification    string `json:"classification"`
}
