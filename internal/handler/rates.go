package handler

import (
	"net/http" // HTTP status codes

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mgthura/parking-ledger/internal/config"     // fallback rate configuration
	"github.com/mgthura/parking-ledger/internal/repository" // rate persistence
)

// RateHandler serves the daily rate table.  The table changes rarely,
// so the route is a good candidate for the Redis response cache; fee
// computation itself always reads the table straight from the
// database.
type RateHandler struct {
	Cfg   config.Config
	Rates *repository.RateRepo
}

func NewRateHandler(cfg config.Config, rates *repository.RateRepo) *RateHandler {
	if rates == nil {
		panic("nil repository passed to NewRateHandler")
	}
	return &RateHandler{Cfg: cfg, Rates: rates}
}

type rateResp struct {
	ID             uint64 `json:"id"`
	VehicleType    string `json:"vehicle_type"`
	DailyRateCents int64  `json:"daily_rate_cents"`
}

// List handles GET /v1/rates.  It returns every configured vehicle
// type rate plus the fallback applied to unknown types.
func (h *RateHandler) List(c echo.Context) error {
	rates, err := h.Rates.LoadAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]rateResp, 0, len(rates))
	for _, r := range rates {
		out = append(out, rateResp{ID: r.ID, VehicleType: r.VehicleType, DailyRateCents: r.DailyRateCents})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rates":                    out,
		"default_daily_rate_cents": h.Cfg.DefaultDailyRateCents,
	})
}
