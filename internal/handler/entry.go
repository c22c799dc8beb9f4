package handler

import (
	"context"      // context carries cancellation into billing lookups
	"database/sql" // transaction handle passed into rate lookups
	"errors"       // errors.Is comparisons against repository sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing query parameters
	"strings"  // normalising request fields
	"time"     // timestamps for entries and exits

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mgthura/parking-ledger/internal/billing"    // fee engine
	"github.com/mgthura/parking-ledger/internal/config"     // runtime configuration
	"github.com/mgthura/parking-ledger/internal/model"      // persistence structs
	"github.com/mgthura/parking-ledger/internal/repository" // repository layer
)

// EntryHandler groups the repositories needed to record vehicle visits.
// All methods assume JWT authentication and role validation have already
// been performed by middleware.  Every mutation runs inside a transaction
// and recomputes the owning shift's statistics snapshot before commit so
// the snapshot can never drift from the entry rows.
type EntryHandler struct {
	Cfg     config.Config         // billing and discrepancy configuration
	Entries *repository.EntryRepo // access to parking_entries
	Shifts  *repository.ShiftRepo // access to shift_sessions for linking
	Stats   *repository.StatsRepo // access to shift_statistics snapshots
	Rates   *repository.RateRepo  // access to rate_entries
}

// NewEntryHandler constructs a new EntryHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewEntryHandler(cfg config.Config, entries *repository.EntryRepo, shifts *repository.ShiftRepo, stats *repository.StatsRepo, rates *repository.RateRepo) *EntryHandler {
	if entries == nil || shifts == nil || stats == nil || rates == nil {
		panic("nil repository passed to NewEntryHandler")
	}
	return &EntryHandler{Cfg: cfg, Entries: entries, Shifts: shifts, Stats: stats, Rates: rates}
}

// ----- DTOs -----

type createEntryReq struct {
	VehicleNumber string     `json:"vehicle_number"`
	VehicleType   string     `json:"vehicle_type"`
	DriverName    string     `json:"driver_name"`
	Notes         string     `json:"notes"`
	EntryTime     *time.Time `json:"entry_time"` // optional backdated entry
}

type recordExitReq struct {
	ExitTime      *time.Time `json:"exit_time"` // defaults to now
	PaymentMethod string     `json:"payment_method"`
	Settled       *bool      `json:"settled"` // defaults to true
}

type correctEntryReq struct {
	FeeCents      *int64 `json:"fee_cents"`
	PaymentMethod string `json:"payment_method"`
	Settled       *bool  `json:"settled"`
}

type entryResp struct {
	ID             uint64     `json:"id"`
	VehicleNumber  string     `json:"vehicle_number"`
	VehicleType    string     `json:"vehicle_type"`
	DriverName     string     `json:"driver_name,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	EntryTime      time.Time  `json:"entry_time"`
	ExitTime       *time.Time `json:"exit_time,omitempty"`
	FeeCents       *int64     `json:"fee_cents,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
	PaymentSettled bool       `json:"payment_settled"`
	UsedFallback   bool       `json:"used_fallback"`
	ShiftID        *uint64    `json:"shift_id,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	CreatedBy      uint64     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toEntryResp(e model.ParkingEntry) entryResp {
	return entryResp{
		ID:             e.ID,
		VehicleNumber:  e.VehicleNumber,
		VehicleType:    e.VehicleType,
		DriverName:     e.DriverName,
		Notes:          e.Notes,
		EntryTime:      e.EntryTime,
		ExitTime:       e.ExitTime,
		FeeCents:       e.FeeCents,
		PaymentMethod:  e.PaymentMethod,
		PaymentSettled: e.PaymentSettled,
		UsedFallback:   e.UsedFallback,
		ShiftID:        e.ShiftID,
		ArchivedAt:     e.ArchivedAt,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// calculator builds the fee calculator from the current rate table.  The
// overstay policy always comes from configuration; the table itself comes
// from the given rate rows so callers can load them inside a transaction
// when consistency with other reads matters.
func (h *EntryHandler) calculator(rates []model.RateEntry) billing.Calculator {
	return billing.Calculator{
		Table: billing.NewRateTable(rates, h.Cfg.DefaultDailyRateCents),
		Overstay: billing.OverstayPolicy{
			Enabled:        h.Cfg.OverstayEnabled,
			ThresholdHours: h.Cfg.OverstayThresholdHours,
			Multiplier:     h.Cfg.OverstayMultiplier,
		},
	}
}

func validPaymentMethod(m string) bool {
	return m == model.PaymentCash || m == model.PaymentDigital
}

// Create handles POST /v1/entries.  It records a vehicle arriving at the
// gate.  When a shift is active at the moment of creation the entry is
// linked to it inside the same transaction, so an entry can never be
// linked to a shift that closed before the entry existed.
func (h *EntryHandler) Create(c echo.Context) error {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.VehicleNumber = strings.ToUpper(strings.TrimSpace(req.VehicleNumber))
	req.VehicleType = strings.TrimSpace(req.VehicleType)
	if req.VehicleNumber == "" || req.VehicleType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_number and vehicle_type are required"})
	}
	now := time.Now().UTC()
	entryTime := now
	if req.EntryTime != nil {
		entryTime = req.EntryTime.UTC()
		if entryTime.After(now) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_time cannot be in the future"})
		}
	}

	ctx := c.Request().Context()
	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Link the entry to the currently active shift, if any.  The locked
	// read guarantees the shift cannot close between the lookup and the
	// insert.
	var shiftID *uint64
	active, err := h.Shifts.ActiveTx(ctx, tx)
	switch {
	case err == nil:
		shiftID = &active.ID
	case errors.Is(err, repository.ErrNoActiveShift):
		// no shift open; the entry stays unlinked until a backfill
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	entry := model.ParkingEntry{
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		DriverName:    strings.TrimSpace(req.DriverName),
		Notes:         strings.TrimSpace(req.Notes),
		EntryTime:     entryTime,
		ShiftID:       shiftID,
		CreatedBy:     employeeID,
	}
	if err := h.Entries.CreateTx(ctx, tx, &entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create entry failed"})
	}
	if shiftID != nil {
		if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, *shiftID, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusCreated, toEntryResp(entry))
}

// RecordExit handles POST /v1/entries/:id/exit.  It computes the fee from
// the entry and exit timestamps and the current rate table, writes it
// exactly once, and refreshes the owning shift's statistics inside the
// same transaction.  Replays against an exited entry return 409.
func (h *EntryHandler) RecordExit(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	var req recordExitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	method := strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
	if !validPaymentMethod(method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be CASH or DIGITAL"})
	}
	settled := true
	if req.Settled != nil {
		settled = *req.Settled
	}
	now := time.Now().UTC()
	exitTime := now
	if req.ExitTime != nil {
		exitTime = req.ExitTime.UTC()
	}

	ctx := c.Request().Context()
	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entry, err := h.Entries.LockTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.Archived() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry is archived"})
	}
	if entry.Exited() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry already exited"})
	}

	quote, err := h.quoteTx(ctx, tx, entry.VehicleType, entry.EntryTime, exitTime)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "exit_time precedes entry_time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fee computation failed"})
	}

	if err := h.Entries.RecordExitTx(ctx, tx, id, exitTime, quote.TotalFeeCents, quote.UsedFallbackRate, method, settled); err != nil {
		if errors.Is(err, repository.ErrEntryAlreadyExited) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "entry already exited"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record exit failed"})
	}
	if entry.ShiftID != nil {
		if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, *entry.ShiftID, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	entry.ExitTime = &exitTime
	entry.FeeCents = &quote.TotalFeeCents
	entry.PaymentMethod = method
	entry.PaymentSettled = settled
	entry.UsedFallback = quote.UsedFallbackRate
	return c.JSON(http.StatusOK, echo.Map{
		"entry": toEntryResp(*entry),
		"quote": quote,
	})
}

// quoteTx loads the rate table inside the caller's transaction and prices
// the stay against it.
func (h *EntryHandler) quoteTx(ctx context.Context, tx *sql.Tx, vehicleType string, entryTime, exitTime time.Time) (billing.Quote, error) {
	rates, err := h.Rates.LoadAllTx(ctx, tx)
	if err != nil {
		return billing.Quote{}, err
	}
	return h.calculator(rates).Quote(vehicleType, entryTime, exitTime)
}

// FeePreview handles GET /v1/entries/:id/fee.  It prices the stay against
// the current rate table without writing anything, so operators can tell a
// driver the amount due before the barrier opens.  An optional exit_time
// query parameter (RFC 3339) prices a hypothetical exit; for entries that
// have already exited the stored exit time is used instead.
func (h *EntryHandler) FeePreview(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	ctx := c.Request().Context()
	entry, err := h.Entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	exitTime := time.Now().UTC()
	switch {
	case entry.Exited():
		exitTime = *entry.ExitTime
	case c.QueryParam("exit_time") != "":
		t, err := time.Parse(time.RFC3339, c.QueryParam("exit_time"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exit_time"})
		}
		exitTime = t.UTC()
	}

	rates, err := h.Rates.LoadAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rates failed"})
	}
	quote, err := h.calculator(rates).Quote(entry.VehicleType, entry.EntryTime, exitTime)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "exit_time precedes entry_time"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "fee computation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"entry_id":  entry.ID,
		"exit_time": exitTime,
		"quote":     quote,
	})
}

// Get handles GET /v1/entries/:id.
func (h *EntryHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	entry, err := h.Entries.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toEntryResp(*entry))
}

// List handles GET /v1/entries.  With ?parked=true only vehicles still on
// the lot are returned; ?shift_id=N returns the entries linked to one
// shift, archived rows included.  The limit parameter caps the result set
// and defaults to 100.
func (h *EntryHandler) List(c echo.Context) error {
	parkedOnly := c.QueryParam("parked") == "true"
	limit := 100
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 500 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	var entries []model.ParkingEntry
	var err error
	if s := c.QueryParam("shift_id"); s != "" {
		shiftID, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil || shiftID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift_id"})
		}
		entries, err = h.Entries.ListByShift(c.Request().Context(), shiftID)
	} else {
		entries, err = h.Entries.List(c.Request().Context(), parkedOnly, limit)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]entryResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": out, "count": len(out)})
}

// Correct handles PATCH /v1/entries/:id.  Managers may adjust the billed
// fee, payment method or settled flag of an entry that has already exited.
// The correction flows through the statistics recompute like any other
// write, so the owning shift's totals stay in step.
func (h *EntryHandler) Correct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	var req correctEntryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entry, err := h.Entries.LockTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.Archived() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry is archived"})
	}
	if !entry.Exited() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry has not exited"})
	}

	feeCents := *entry.FeeCents
	if req.FeeCents != nil {
		if *req.FeeCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "fee_cents cannot be negative"})
		}
		feeCents = *req.FeeCents
	}
	method := entry.PaymentMethod
	if strings.TrimSpace(req.PaymentMethod) != "" {
		method = strings.ToUpper(strings.TrimSpace(req.PaymentMethod))
		if !validPaymentMethod(method) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be CASH or DIGITAL"})
		}
	}
	settled := entry.PaymentSettled
	if req.Settled != nil {
		settled = *req.Settled
	}

	if err := h.Entries.CorrectTx(ctx, tx, id, feeCents, method, settled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "correction failed"})
	}
	now := time.Now().UTC()
	if entry.ShiftID != nil {
		if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, *entry.ShiftID, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	entry.FeeCents = &feeCents
	entry.PaymentMethod = method
	entry.PaymentSettled = settled
	return c.JSON(http.StatusOK, toEntryResp(*entry))
}

// Archive handles DELETE /v1/entries/:id.  Entries are never hard-deleted;
// archiving stamps archived_at and drops the row out of the owning shift's
// aggregates through the usual recompute.
func (h *EntryHandler) Archive(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Entries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	entry, err := h.Entries.LockTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.Archived() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry already archived"})
	}

	now := time.Now().UTC()
	if err := h.Entries.ArchiveTx(ctx, tx, id, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "archive failed"})
	}
	if entry.ShiftID != nil {
		if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, *entry.ShiftID, now); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}
