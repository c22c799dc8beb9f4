package billing

import (
    "testing"
    "time"

    "github.com/mgthura/parking-ledger/internal/model"
)

func settledEntry(shiftID uint64, feeCents int64, method string, exitedAt time.Time) model.ParkingEntry {
    sid := shiftID
    fee := feeCents
    exit := exitedAt
    return model.ParkingEntry{
        ShiftID:        &sid,
        FeeCents:       &fee,
        PaymentMethod:  method,
        PaymentSettled: true,
        EntryTime:      exitedAt.Add(-2 * time.Hour),
        ExitTime:       &exit,
    }
}

func TestComputeStatisticsScenario(t *testing.T) {
    // Three cash exits of 50, 75 and 125 plus one digital exit of 200,
    // and one vehicle still parked.
    now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
    shiftID := uint64(7)
    parked := model.ParkingEntry{ShiftID: &shiftID, EntryTime: now.Add(-time.Hour), PaymentMethod: model.PaymentCash}
    entries := []model.ParkingEntry{
        settledEntry(shiftID, 5000, model.PaymentCash, now),
        settledEntry(shiftID, 7500, model.PaymentCash, now),
        settledEntry(shiftID, 12500, model.PaymentCash, now),
        settledEntry(shiftID, 20000, model.PaymentDigital, now),
        parked,
    }

    stats := ComputeStatistics(shiftID, entries, now)
    if stats.VehiclesEntered != 5 {
        t.Errorf("VehiclesEntered = %d, want 5", stats.VehiclesEntered)
    }
    if stats.VehiclesExited != 4 {
        t.Errorf("VehiclesExited = %d, want 4", stats.VehiclesExited)
    }
    if stats.CashRevenueCents != 25000 {
        t.Errorf("CashRevenueCents = %d, want 25000", stats.CashRevenueCents)
    }
    if stats.DigitalRevenueCents != 20000 {
        t.Errorf("DigitalRevenueCents = %d, want 20000", stats.DigitalRevenueCents)
    }
    if stats.RevenueTotalCents != 45000 {
        t.Errorf("RevenueTotalCents = %d, want 45000", stats.RevenueTotalCents)
    }
}

func TestComputeStatisticsIsIdempotent(t *testing.T) {
    now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
    shiftID := uint64(3)
    entries := []model.ParkingEntry{
        settledEntry(shiftID, 5000, model.PaymentCash, now),
        settledEntry(shiftID, 20000, model.PaymentDigital, now),
    }
    first := ComputeStatistics(shiftID, entries, now)
    second := ComputeStatistics(shiftID, entries, now.Add(time.Minute))
    if !StatisticsEqual(first, second) {
        t.Fatalf("recompute with no intervening writes differs: %+v vs %+v", first, second)
    }
}

func TestComputeStatisticsRevenueMatchesSettledFees(t *testing.T) {
    // Sum of settled fees over exited entries must equal RevenueTotal.
    now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
    shiftID := uint64(11)
    fees := []int64{1500, 22500, 10000, 5000}
    methods := []string{model.PaymentCash, model.PaymentDigital, model.PaymentCash, model.PaymentDigital}
    var entries []model.ParkingEntry
    var want int64
    for i, f := range fees {
        entries = append(entries, settledEntry(shiftID, f, methods[i], now))
        want += f
    }
    stats := ComputeStatistics(shiftID, entries, now)
    if stats.RevenueTotalCents != want {
        t.Fatalf("RevenueTotalCents = %d, want %d", stats.RevenueTotalCents, want)
    }
    if stats.CashRevenueCents+stats.DigitalRevenueCents != stats.RevenueTotalCents {
        t.Fatalf("cash %d + digital %d != total %d",
            stats.CashRevenueCents, stats.DigitalRevenueCents, stats.RevenueTotalCents)
    }
}

func TestComputeStatisticsSkipsForeignArchivedAndUnsettled(t *testing.T) {
    now := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
    shiftID := uint64(5)
    otherShift := uint64(6)

    archived := settledEntry(shiftID, 5000, model.PaymentCash, now)
    archivedAt := now
    archived.ArchivedAt = &archivedAt

    foreign := settledEntry(otherShift, 5000, model.PaymentCash, now)

    unlinked := settledEntry(shiftID, 5000, model.PaymentCash, now)
    unlinked.ShiftID = nil

    unsettled := settledEntry(shiftID, 5000, model.PaymentCash, now)
    unsettled.PaymentSettled = false

    entries := []model.ParkingEntry{
        archived, foreign, unlinked, unsettled,
        settledEntry(shiftID, 7500, model.PaymentCash, now),
    }
    stats := ComputeStatistics(shiftID, entries, now)
    if stats.VehiclesEntered != 2 {
        t.Errorf("VehiclesEntered = %d, want 2 (unsettled + settled)", stats.VehiclesEntered)
    }
    if stats.VehiclesExited != 2 {
        t.Errorf("VehiclesExited = %d, want 2", stats.VehiclesExited)
    }
    if stats.RevenueTotalCents != 7500 {
        t.Errorf("RevenueTotalCents = %d, want 7500 (only the settled entry)", stats.RevenueTotalCents)
    }
}
