package billing

import (
    "errors"
    "testing"
    "time"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func TestBillableDaysRounding(t *testing.T) {
    cases := []struct {
        name    string
        elapsed time.Duration
        want    int
    }{
        {"zero duration still bills one day", 0, 1},
        {"one microsecond", time.Microsecond, 1},
        {"one hour", time.Hour, 1},
        {"twelve hours", 12 * time.Hour, 1},
        {"just under a day", 23*time.Hour + 59*time.Minute + 59*time.Second, 1},
        {"exactly 24h", 24 * time.Hour, 1},
        {"24h plus one second", 24*time.Hour + time.Second, 2},
        {"25 hours", 25 * time.Hour, 2},
        {"26 hours", 26 * time.Hour, 2},
        {"exactly 48h", 48 * time.Hour, 2},
        {"48h plus one second", 48*time.Hour + time.Second, 3},
        {"two and a half days", 60 * time.Hour, 3},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, err := BillableDays(baseTime, baseTime.Add(tc.elapsed))
            if err != nil {
                t.Fatalf("BillableDays returned error: %v", err)
            }
            if got != tc.want {
                t.Fatalf("BillableDays(%v) = %d, want %d", tc.elapsed, got, tc.want)
            }
        })
    }
}

func TestBillableDaysRejectsInvalidInterval(t *testing.T) {
    // Exit before entry must be rejected, never clamped to zero.
    if _, err := BillableDays(baseTime, baseTime.Add(-time.Hour)); !errors.Is(err, ErrInvalidInterval) {
        t.Fatalf("expected ErrInvalidInterval, got %v", err)
    }
    // A future-dated entry previewed against "now" is the same case.
    now := baseTime
    future := baseTime.Add(2 * time.Hour)
    if _, err := BillableDays(future, now); !errors.Is(err, ErrInvalidInterval) {
        t.Fatalf("expected ErrInvalidInterval for future entry, got %v", err)
    }
}
