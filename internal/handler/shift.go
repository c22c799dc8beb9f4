package handler

import (
	"context"      // context for event publishing after commit
	"database/sql" // sentinel errors from the statistics lookup
	"errors"       // errors.Is comparisons
	"log"          // alert logging for snapshot drift
	"net/http"     // HTTP status codes
	"strconv"      // parsing query parameters
	"strings"      // trimming note fields
	"time"         // timestamps for open and close

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mgthura/parking-ledger/internal/billing"    // reconciliation and statistics engine
	"github.com/mgthura/parking-ledger/internal/config"     // discrepancy thresholds
	"github.com/mgthura/parking-ledger/internal/model"      // persistence structs
	"github.com/mgthura/parking-ledger/internal/queue"      // shift.closed event payload
	"github.com/mgthura/parking-ledger/internal/repository" // repository layer
	queue_publisher "github.com/mgthura/parking-ledger/internal/service"
)

// ShiftHandler groups the repositories needed to manage the shift
// ledger.  Opening, closing and handover all run inside transactions
// that hold a row lock on the shift so the single-active-shift rule
// cannot be raced, and every close recomputes the statistics snapshot
// from the entry rows before the reconciliation math runs.
type ShiftHandler struct {
	Cfg     config.Config         // discrepancy thresholds
	Shifts  *repository.ShiftRepo // access to shift_sessions
	Entries *repository.EntryRepo // access to parking_entries for aggregates
	Stats   *repository.StatsRepo // access to shift_statistics snapshots
}

// NewShiftHandler constructs a new ShiftHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewShiftHandler(cfg config.Config, shifts *repository.ShiftRepo, entries *repository.EntryRepo, stats *repository.StatsRepo) *ShiftHandler {
	if shifts == nil || entries == nil || stats == nil {
		panic("nil repository passed to NewShiftHandler")
	}
	return &ShiftHandler{Cfg: cfg, Shifts: shifts, Entries: entries, Stats: stats}
}

// thresholds converts the configured cent amounts into the billing
// package's classification thresholds.
func (h *ShiftHandler) thresholds() billing.Thresholds {
	return billing.Thresholds{
		SmallCents: h.Cfg.DiscrepancySmallCents,
		LargeCents: h.Cfg.DiscrepancyLargeCents,
	}
}

// ----- DTOs -----

type openShiftReq struct {
	OpeningCashCents *int64     `json:"opening_cash_cents"`
	StartTime        *time.Time `json:"start_time"` // defaults to now
}

type closeShiftReq struct {
	ClosingCashCents *int64 `json:"closing_cash_cents"`
	ConfirmMajor     bool   `json:"confirm_major"`
	Note             string `json:"note"`
}

type reconcileReq struct {
	ActualCashCents *int64 `json:"actual_cash_cents"`
}

type linkEntriesReq struct {
	Cutoff *time.Time `json:"cutoff"` // defaults to now
}

type shiftResp struct {
	ID                uint64     `json:"id"`
	EmployeeID        uint64     `json:"employee_id"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	OpeningCashCents  int64      `json:"opening_cash_cents"`
	ClosingCashCents  *int64     `json:"closing_cash_cents,omitempty"`
	ExpectedCashCents *int64     `json:"expected_cash_cents,omitempty"`
	CashDeltaCents    *int64     `json:"cash_delta_cents,omitempty"`
	DiscrepancyNote   *string    `json:"discrepancy_note,omitempty"`
	Status            string     `json:"status"`
}

func toShiftResp(s model.ShiftSession) shiftResp {
	return shiftResp{
		ID:                s.ID,
		EmployeeID:        s.EmployeeID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		OpeningCashCents:  s.OpeningCashCents,
		ClosingCashCents:  s.ClosingCashCents,
		ExpectedCashCents: s.ExpectedCashCents,
		CashDeltaCents:    s.CashDeltaCents,
		DiscrepancyNote:   s.DiscrepancyNote,
		Status:            s.Status,
	}
}

// Open handles POST /v1/shifts.  It opens a shift for the calling
// employee with the counted drawer float.  At most one shift may be
// active at a time; attempting to open a second returns 409.
func (h *ShiftHandler) Open(c echo.Context) error {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req openShiftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.OpeningCashCents == nil || *req.OpeningCashCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opening_cash_cents is required and must be >= 0"})
	}
	now := time.Now().UTC()
	startTime := now
	if req.StartTime != nil {
		startTime = req.StartTime.UTC()
	}

	ctx := c.Request().Context()
	tx, err := h.Shifts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	shift, err := h.Shifts.OpenTx(ctx, tx, employeeID, *req.OpeningCashCents, startTime)
	if err != nil {
		if errors.Is(err, repository.ErrShiftAlreadyActive) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a shift is already active"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open shift failed"})
	}
	// Seed the snapshot row so statistics reads never miss.
	if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, shift.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusCreated, toShiftResp(*shift))
}

// closeLockedShift performs the close sequence for a shift that has
// already been locked inside the caller's transaction: recompute the
// statistics from the entry rows, reconcile the counted drawer cash,
// gate major discrepancies behind an explicit confirmation with a
// note, and write the audit annotation.  It returns the reconciliation
// result and the fresh statistics, or an echo error response already
// written to the client.
func (h *ShiftHandler) closeLockedShift(c echo.Context, ctx context.Context, tx *sql.Tx, shift *model.ShiftSession, req closeShiftReq, endTime time.Time) (model.Discrepancy, model.ShiftStatistics, bool) {
	var zeroD model.Discrepancy
	var zeroS model.ShiftStatistics

	if shift.Status != model.ShiftActive {
		_ = c.JSON(http.StatusConflict, echo.Map{"error": "shift is not active"})
		return zeroD, zeroS, false
	}
	if req.ClosingCashCents == nil || *req.ClosingCashCents < 0 {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "closing_cash_cents is required and must be >= 0"})
		return zeroD, zeroS, false
	}

	stats, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, shift.ID, endTime)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
		return zeroD, zeroS, false
	}

	disc := billing.Reconcile(shift.ID, shift.OpeningCashCents, stats.CashRevenueCents, *req.ClosingCashCents, h.thresholds())
	note := strings.TrimSpace(req.Note)
	if disc.Classification == model.DiscrepancyMajor {
		if !req.ConfirmMajor || note == "" {
			_ = c.JSON(http.StatusConflict, echo.Map{
				"error":       "major cash discrepancy requires confirm_major and a note",
				"discrepancy": disc,
			})
			return zeroD, zeroS, false
		}
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	if err := h.Shifts.CloseTx(ctx, tx, shift.ID, endTime, disc.ActualCashCents, disc.ExpectedCashCents, disc.DeltaCents, notePtr); err != nil {
		switch {
		case errors.Is(err, repository.ErrShiftNotFound):
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		case errors.Is(err, repository.ErrShiftNotActive):
			_ = c.JSON(http.StatusConflict, echo.Map{"error": "shift is not active"})
		default:
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "close shift failed"})
		}
		return zeroD, zeroS, false
	}
	return disc, stats, true
}

// publishClosed fires the shift.closed event after a successful
// commit.  Publishing is best-effort; failures are logged by the
// publisher and never affect the response.
func publishClosed(shift *model.ShiftSession, disc model.Discrepancy, stats model.ShiftStatistics, note string, endTime time.Time) {
	ev := queue.ShiftClosedEvent{
		ShiftID:             shift.ID,
		EmployeeID:          shift.EmployeeID,
		StartedAt:           shift.StartTime.Format(time.RFC3339),
		EndedAt:             endTime.Format(time.RFC3339),
		OpeningCashCents:    shift.OpeningCashCents,
		ClosingCashCents:    disc.ActualCashCents,
		ExpectedCashCents:   disc.ExpectedCashCents,
		CashDeltaCents:      disc.DeltaCents,
		Classification:      disc.Classification,
		Note:                note,
		VehiclesEntered:     stats.VehiclesEntered,
		VehiclesExited:      stats.VehiclesExited,
		RevenueTotalCents:   stats.RevenueTotalCents,
		CashRevenueCents:    stats.CashRevenueCents,
		DigitalRevenueCents: stats.DigitalRevenueCents,
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishShiftClosed(pubCtx, ev)
	}()
}

// Close handles POST /v1/shifts/:id/close.  The shift's statistics
// are recomputed from the entry rows inside the closing transaction,
// the counted cash is reconciled against the expected drawer amount,
// and the result is written to the shift row as an audit annotation.
// A major discrepancy blocks the close unless confirm_major is set
// and a note explains the difference.
func (h *ShiftHandler) Close(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	var req closeShiftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	now := time.Now().UTC()

	ctx := c.Request().Context()
	tx, err := h.Shifts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	shift, err := h.Shifts.LockTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	disc, stats, okClose := h.closeLockedShift(c, ctx, tx, shift, req, now)
	if !okClose {
		return nil
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	publishClosed(shift, disc, stats, strings.TrimSpace(req.Note), now)

	return c.JSON(http.StatusOK, echo.Map{
		"shift_id":    shift.ID,
		"status":      model.ShiftCompleted,
		"end_time":    now,
		"statistics":  stats,
		"discrepancy": disc,
	})
}

// Handover handles POST /v1/shifts/handover.  It closes the active
// shift and opens a new one for the calling employee in a single
// transaction, carrying the counted closing cash over as the new
// shift's opening float.  Either both sides happen or neither does.
func (h *ShiftHandler) Handover(c echo.Context) error {
	employeeID, err := getEmployeeID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req closeShiftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	now := time.Now().UTC()

	ctx := c.Request().Context()
	tx, err := h.Shifts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	outgoing, err := h.Shifts.ActiveTx(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveShift) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no active shift to hand over"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	disc, stats, okClose := h.closeLockedShift(c, ctx, tx, outgoing, req, now)
	if !okClose {
		return nil
	}

	// The counted drawer becomes the next shift's opening float.
	incoming, err := h.Shifts.OpenTx(ctx, tx, employeeID, disc.ActualCashCents, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "open next shift failed"})
	}
	if _, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, incoming.ID, now); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	publishClosed(outgoing, disc, stats, strings.TrimSpace(req.Note), now)

	return c.JSON(http.StatusOK, echo.Map{
		"closed_shift": echo.Map{
			"shift_id":    outgoing.ID,
			"statistics":  stats,
			"discrepancy": disc,
		},
		"opened_shift": toShiftResp(*incoming),
	})
}

// Get handles GET /v1/shifts/:id.
func (h *ShiftHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	shift, err := h.Shifts.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toShiftResp(*shift))
}

// Active handles GET /v1/shifts/active.
func (h *ShiftHandler) Active(c echo.Context) error {
	shift, err := h.Shifts.Active(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveShift) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active shift"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toShiftResp(*shift))
}

// List handles GET /v1/shifts.
func (h *ShiftHandler) List(c echo.Context) error {
	limit := 50
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 200 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	shifts, err := h.Shifts.List(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]shiftResp, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, toShiftResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"shifts": out, "count": len(out)})
}

// Statistics handles GET /v1/shifts/:id/statistics.  The response is
// always computed fresh from the entry rows; the stored snapshot is
// only consulted to detect drift.  A mismatch means a write path
// skipped the recompute and is logged loudly so it gets investigated,
// but the fresh numbers are still returned as the source of truth.
func (h *ShiftHandler) Statistics(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Shifts.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	entries, err := h.Entries.ListByShift(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	fresh := billing.ComputeStatistics(id, entries, time.Now().UTC())

	drift := false
	stored, err := h.Stats.Get(ctx, id)
	switch {
	case err == sql.ErrNoRows:
		// no snapshot yet; nothing to compare against
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	case !billing.StatisticsEqual(*stored, fresh):
		drift = true
		log.Printf("ALERT: statistics snapshot drift for shift %d: stored=%+v fresh=%+v", id, *stored, fresh)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"statistics":     fresh,
		"snapshot_drift": drift,
	})
}

// Reconcile handles POST /v1/shifts/:id/reconcile.  It is an advisory
// dry run: the operator counts the drawer mid-shift and learns how the
// count classifies against the expected cash, without closing the
// shift or writing anything.
func (h *ShiftHandler) Reconcile(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	var req reconcileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ActualCashCents == nil || *req.ActualCashCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actual_cash_cents is required and must be >= 0"})
	}

	ctx := c.Request().Context()
	shift, err := h.Shifts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	entries, err := h.Entries.ListByShift(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	stats := billing.ComputeStatistics(id, entries, time.Now().UTC())
	disc := billing.Reconcile(id, shift.OpeningCashCents, stats.CashRevenueCents, *req.ActualCashCents, h.thresholds())

	return c.JSON(http.StatusOK, echo.Map{
		"discrepancy": disc,
		"statistics":  stats,
	})
}

// LinkEntries handles POST /v1/shifts/:id/link-entries.  It is the
// administrative backfill that attaches unlinked entries (recorded
// while no shift was open) to the given active shift, then recomputes
// the snapshot.  Links are never reassigned.
func (h *ShiftHandler) LinkEntries(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	var req linkEntriesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	now := time.Now().UTC()
	cutoff := now
	if req.Cutoff != nil {
		cutoff = req.Cutoff.UTC()
	}

	ctx := c.Request().Context()
	tx, err := h.Shifts.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	shift, err := h.Shifts.LockTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "shift not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if shift.Status != model.ShiftActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "shift is not active"})
	}

	linked, err := h.Entries.LinkUnassignedTx(ctx, tx, id, cutoff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link entries failed"})
	}
	stats, err := recomputeStatisticsTx(ctx, tx, h.Entries, h.Stats, id, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update statistics failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"linked":     linked,
		"statistics": stats,
	})
}
