package billing

import (
    "testing"

    "github.com/mgthura/parking-ledger/internal/model"
)

var testThresholds = Thresholds{SmallCents: 100, LargeCents: 5000}

func TestReconcileBalanced(t *testing.T) {
    // actual == opening + cashRevenue must yield delta 0, balanced.
    d := Reconcile(1, 100000, 25000, 125000, testThresholds)
    if d.DeltaCents != 0 {
        t.Fatalf("DeltaCents = %d, want 0", d.DeltaCents)
    }
    if d.Classification != model.DiscrepancyBalanced {
        t.Fatalf("Classification = %q, want balanced", d.Classification)
    }
    if d.ExpectedCashCents != 125000 {
        t.Fatalf("ExpectedCashCents = %d, want 125000", d.ExpectedCashCents)
    }
}

func TestReconcileShortage(t *testing.T) {
    // Shift opens with 1000; cash exits total 250 and a digital exit
    // of 200: expected closing cash is 1250 regardless of the digital
    // revenue.  Counting 1100 reports a shortage of 150.
    d := Reconcile(9, 100000, 25000, 110000, testThresholds)
    if d.ExpectedCashCents != 125000 {
        t.Fatalf("ExpectedCashCents = %d, want 125000", d.ExpectedCashCents)
    }
    if d.DeltaCents != -15000 {
        t.Fatalf("DeltaCents = %d, want -15000", d.DeltaCents)
    }
    if d.Classification != model.DiscrepancyMajor {
        t.Fatalf("Classification = %q, want major", d.Classification)
    }
}

func TestClassifyBoundaries(t *testing.T) {
    cases := []struct {
        delta int64
        want  string
    }{
        {0, model.DiscrepancyBalanced},
        {100, model.DiscrepancyBalanced},
        {-100, model.DiscrepancyBalanced},
        {101, model.DiscrepancyMinor},
        {-101, model.DiscrepancyMinor},
        {5000, model.DiscrepancyMinor},
        {-5000, model.DiscrepancyMinor},
        {5001, model.DiscrepancyMajor},
        {-5001, model.DiscrepancyMajor},
    }
    for _, tc := range cases {
        if got := Classify(tc.delta, testThresholds); got != tc.want {
            t.Errorf("Classify(%d) = %q, want %q", tc.delta, got, tc.want)
        }
    }
}
