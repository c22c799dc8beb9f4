package billing

import (
    "errors"
    "testing"
    "time"

    "github.com/mgthura/parking-ledger/internal/model"
)

// testTable mirrors the production rate configuration: whole currency
// units stored as cents.
func testTable() RateTable {
    return NewRateTable([]model.RateEntry{
        {VehicleType: "Trailer", DailyRateCents: 22500},
        {VehicleType: "6 Wheeler", DailyRateCents: 15000},
        {VehicleType: "4 Wheeler", DailyRateCents: 10000},
        {VehicleType: "2-Wheeler", DailyRateCents: 5000},
    }, 10000)
}

func TestResolveNormalizesVehicleType(t *testing.T) {
    table := testTable()
    cases := []struct {
        raw  string
        want int64
    }{
        {"2-Wheeler", 5000},
        {"2wheeler", 5000},
        {" 2 WHEELER ", 5000},
        {"2_wheeler", 5000},
        {"6 Wheeler", 15000},
        {"6-wheeler", 15000},
        {"trailer", 22500},
    }
    for _, tc := range cases {
        rate, fallback := table.Resolve(tc.raw)
        if fallback {
            t.Errorf("Resolve(%q) used fallback, want configured rate", tc.raw)
        }
        if rate != tc.want {
            t.Errorf("Resolve(%q) = %d, want %d", tc.raw, rate, tc.want)
        }
    }
}

func TestResolveFallsBackForUnknownType(t *testing.T) {
    table := testTable()
    for _, raw := range []string{"Bulldozer", "", "   ", "???"} {
        rate, fallback := table.Resolve(raw)
        if !fallback {
            t.Errorf("Resolve(%q) should use the fallback rate", raw)
        }
        if rate != 10000 {
            t.Errorf("Resolve(%q) = %d, want default 10000", raw, rate)
        }
    }
}

func TestQuoteTwoWheelerTwentySixHours(t *testing.T) {
    // Rate table {2-Wheeler: 50, default: 100}; entry at T, exit at
    // T+26h must bill 2 days at the 2-Wheeler rate: 2 x 50 = 100.
    calc := Calculator{Table: testTable()}
    q, err := calc.Quote("2wheeler", baseTime, baseTime.Add(26*time.Hour))
    if err != nil {
        t.Fatalf("Quote returned error: %v", err)
    }
    if q.BillableDays != 2 {
        t.Fatalf("BillableDays = %d, want 2", q.BillableDays)
    }
    if q.UsedFallbackRate {
        t.Fatal("2wheeler must resolve to the 2-Wheeler rate, not the fallback")
    }
    if q.TotalFeeCents != 10000 {
        t.Fatalf("TotalFeeCents = %d, want 10000 (2 x 5000)", q.TotalFeeCents)
    }
}

func TestQuoteAllConfiguredTypes(t *testing.T) {
    calc := Calculator{Table: testTable()}
    exit := baseTime.Add(25 * time.Hour) // 2 billable days
    cases := []struct {
        vehicleType string
        want        int64
    }{
        {"Trailer", 45000},
        {"6 Wheeler", 30000},
        {"4 Wheeler", 20000},
        {"2-Wheeler", 10000},
    }
    for _, tc := range cases {
        q, err := calc.Quote(tc.vehicleType, baseTime, exit)
        if err != nil {
            t.Fatalf("Quote(%q): %v", tc.vehicleType, err)
        }
        if q.TotalFeeCents != tc.want {
            t.Errorf("Quote(%q) = %d, want %d", tc.vehicleType, q.TotalFeeCents, tc.want)
        }
    }
}

func TestQuoteUnknownTypeUsesFallbackAndFlags(t *testing.T) {
    calc := Calculator{Table: testTable()}
    q, err := calc.Quote("Unknown", baseTime, baseTime.Add(25*time.Hour))
    if err != nil {
        t.Fatalf("Quote returned error: %v", err)
    }
    if !q.UsedFallbackRate {
        t.Fatal("UsedFallbackRate must be true for an unknown type")
    }
    if q.TotalFeeCents != 20000 {
        t.Fatalf("TotalFeeCents = %d, want 20000 (2 x default 10000)", q.TotalFeeCents)
    }
}

func TestQuoteRejectsInvalidInterval(t *testing.T) {
    calc := Calculator{Table: testTable()}
    if _, err := calc.Quote("Trailer", baseTime, baseTime.Add(-time.Minute)); !errors.Is(err, ErrInvalidInterval) {
        t.Fatalf("expected ErrInvalidInterval, got %v", err)
    }
}

func TestOverstayPenaltyDisabledByDefault(t *testing.T) {
    calc := Calculator{Table: testTable()}
    q, err := calc.Quote("4 Wheeler", baseTime, baseTime.Add(30*time.Hour))
    if err != nil {
        t.Fatalf("Quote returned error: %v", err)
    }
    if q.PenaltyCents != 0 {
        t.Fatalf("PenaltyCents = %d, want 0 when the policy is disabled", q.PenaltyCents)
    }
    if q.TotalFeeCents != q.BaseFeeCents {
        t.Fatalf("TotalFeeCents = %d, want base fee %d", q.TotalFeeCents, q.BaseFeeCents)
    }
}

func TestOverstayPenaltyApplied(t *testing.T) {
    calc := Calculator{
        Table:    testTable(),
        Overstay: OverstayPolicy{Enabled: true, ThresholdHours: 24, Multiplier: 1.5},
    }

    // Exactly at the threshold: no penalty.
    q, err := calc.Quote("4 Wheeler", baseTime, baseTime.Add(24*time.Hour))
    if err != nil {
        t.Fatalf("Quote returned error: %v", err)
    }
    if q.PenaltyCents != 0 {
        t.Fatalf("PenaltyCents = %d, want 0 at the threshold", q.PenaltyCents)
    }

    // Six hours over the threshold: one penalty day at 50% of the rate.
    q, err = calc.Quote("4 Wheeler", baseTime, baseTime.Add(30*time.Hour))
    if err != nil {
        t.Fatalf("Quote returned error: %v", err)
    }
    if q.BillableDays != 2 || q.BaseFeeCents != 20000 {
        t.Fatalf("base = %d days / %d cents, want 2 / 20000", q.BillableDays, q.BaseFeeCents)
    }
    if q.PenaltyCents != 5000 {
        t.Fatalf("PenaltyCents = %d, want 5000", q.PenaltyCents)
    }
    if q.TotalFeeCents != 25000 {
        t.Fatalf("TotalFeeCents = %d, want 25000", q.TotalFeeCents)
    }
}

func TestOverstayPenaltyDayRounding(t *testing.T) {
    calc := Calculator{
        Table:    NewRateTable([]model.RateEntry{{VehicleType: "Test", DailyRateCents: 4000}}, 10000),
        Overstay: OverstayPolicy{Enabled: true, ThresholdHours: 24, Multiplier: 2.0},
    }
    cases := []struct {
        totalHours   int
        penaltyCents int64
    }{
        {25, 4000},  // 1 hour over -> 1 penalty day
        {48, 4000},  // 24 hours over -> 1 penalty day
        {49, 8000},  // 25 hours over -> 2 penalty days
        {72, 8000},  // 48 hours over -> 2 penalty days
        {73, 12000}, // 49 hours over -> 3 penalty days
    }
    for _, tc := range cases {
        q, err := calc.Quote("Test", baseTime, baseTime.Add(time.Duration(tc.totalHours)*time.Hour))
        if err != nil {
            t.Fatalf("Quote(%dh): %v", tc.totalHours, err)
        }
        if q.PenaltyCents != tc.penaltyCents {
            t.Errorf("%dh stay: PenaltyCents = %d, want %d", tc.totalHours, q.PenaltyCents, tc.penaltyCents)
        }
    }
}
