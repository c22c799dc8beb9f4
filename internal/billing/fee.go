package billing

import (
    "math"
    "time"
)

// OverstayPolicy configures the optional surcharge for stays longer
// than a threshold.  The multiplier is the total price factor for
// penalty days: 1.5 means each penalty day costs an extra 50% of the
// daily rate on top of the base fee.  Disabled by default.
type OverstayPolicy struct {
    Enabled        bool
    ThresholdHours int
    Multiplier     float64
}

// Quote is the result of pricing a single stay.  It is returned from
// fee computation and fee previews; persisting any of it is the
// caller's responsibility.
type Quote struct {
    VehicleType      string `json:"vehicle_type"`
    BillableDays     int    `json:"billable_days"`
    DailyRateCents   int64  `json:"daily_rate_cents"`
    BaseFeeCents     int64  `json:"base_fee_cents"`
    PenaltyCents     int64  `json:"penalty_cents"`
    TotalFeeCents    int64  `json:"total_fee_cents"`
    OverstayHours    int    `json:"overstay_hours"`
    UsedFallbackRate bool   `json:"used_fallback_rate"`
}

// Calculator combines the rate table with the overstay policy to
// price stays.  It is a pure value; construct one per transaction
// from freshly loaded rates.
type Calculator struct {
    Table    RateTable
    Overstay OverstayPolicy
}

// Quote prices a stay for the given raw vehicle type.  The fee is
// billable days times the resolved daily rate, plus the overstay
// penalty when the policy is enabled.  Fails with ErrInvalidInterval
// when exitTime precedes entryTime.
func (c Calculator) Quote(vehicleType string, entryTime, exitTime time.Time) (Quote, error) {
    days, err := BillableDays(entryTime, exitTime)
    if err != nil {
        return Quote{}, err
    }
    rate, fallback := c.Table.Resolve(vehicleType)
    q := Quote{
        VehicleType:      vehicleType,
        BillableDays:     days,
        DailyRateCents:   rate,
        BaseFeeCents:     int64(days) * rate,
        UsedFallbackRate: fallback,
    }
    q.OverstayHours = c.overstayHours(exitTime.Sub(entryTime))
    q.PenaltyCents = c.penaltyCents(rate, exitTime.Sub(entryTime))
    q.TotalFeeCents = q.BaseFeeCents + q.PenaltyCents
    return q, nil
}

// overstayHours reports how many started hours the stay runs past the
// policy threshold, zero when the policy is off or the stay is within it.
func (c Calculator) overstayHours(elapsed time.Duration) int {
    p := c.Overstay
    if !p.Enabled || p.ThresholdHours <= 0 {
        return 0
    }
    over := elapsed - time.Duration(p.ThresholdHours)*time.Hour
    if over <= 0 {
        return 0
    }
    return int(math.Ceil(over.Hours()))
}

// penaltyCents computes the overstay surcharge for the elapsed stay.
// Each started 24h block past the threshold counts as one penalty
// day, charged at rate × (multiplier − 1).
func (c Calculator) penaltyCents(rateCents int64, elapsed time.Duration) int64 {
    p := c.Overstay
    if !p.Enabled || p.ThresholdHours <= 0 || p.Multiplier <= 1 {
        return 0
    }
    over := elapsed - time.Duration(p.ThresholdHours)*time.Hour
    if over <= 0 {
        return 0
    }
    penaltyDays := int64(over / billableDay)
    if over%billableDay > 0 {
        penaltyDays++
    }
    return int64(math.Round(float64(rateCents*penaltyDays) * (p.Multiplier - 1)))
}
