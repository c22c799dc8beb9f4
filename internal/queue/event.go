// Package queue defines message payloads exchanged over the message broker.
package queue

// ShiftClosedEvent is published when a shift is closed or handed over.
// It contains the full reconciliation outcome so downstream consumers
// can build the cash audit trail, notify, or trigger analytics without
// querying the primary database.
type ShiftClosedEvent struct {
	ShiftID             uint64 `json:"shift_id"`
	EmployeeID          uint64 `json:"employee_id"`
	StartedAt           string `json:"started_at"`
	EndedAt             string `json:"ended_at"`
	OpeningCashCents    int64  `json:"opening_cash_cents"`
	ClosingCashCents    int64  `json:"closing_cash_cents"`
	ExpectedCashCents   int64  `json:"expected_cash_cents"`
	CashDeltaCents      int64  `json:"cash_delta_cents"`
	Classification      string `json:"classification"`
	Note                string `json:"note,omitempty"`
	VehiclesEntered     int    `json:"vehicles_entered"`
	VehiclesExited      int    `json:"vehicles_exited"`
	RevenueTotalCents   int64  `json:"revenue_total_cents"`
	CashRevenueCents    int64  `json:"cash_revenue_cents"`
	DigitalRevenueCents int64  `json:"digital_revenue_cents"`
}
