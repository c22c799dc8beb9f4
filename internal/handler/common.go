package handler // handler defines http handlers

import (
	"context" // context scopes the statistics recompute to the request
	"database/sql"
	"errors"  // errors provides sentinel values used in getEmployeeID
	"strconv" // strconv converts strings to numeric types
	"time"    // time stamps the recomputed snapshot

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/mgthura/parking-ledger/internal/billing"    // billing holds the pure fee and statistics engine
	"github.com/mgthura/parking-ledger/internal/model"      // model holds persistence structs
	"github.com/mgthura/parking-ledger/internal/repository" // repository holds data access layer
)

// getEmployeeID extracts the user_id from echo.Context and converts it to uint64
func getEmployeeID(c echo.Context) (uint64, error) { // begin getEmployeeID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64: // when already uint64
		return t, nil // return directly
	case int: // when stored as int
		return uint64(t), nil // convert to uint64
	case int64: // when stored as int64
		return uint64(t), nil // convert to uint64
	case float64: // when stored as float64
		return uint64(t), nil // convert to uint64
	case string: // when stored as string
		if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
			return n, nil // return parsed number
		}
	} // end type switch
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// recomputeStatisticsTx reloads every entry linked to the shift inside the
// caller's transaction, recomputes the full statistics from scratch and
// upserts the snapshot row.  Every write path that can change a shift's
// totals must call this before committing so the snapshot never drifts
// from the entry set.
func recomputeStatisticsTx(ctx context.Context, tx *sql.Tx, entries *repository.EntryRepo, stats *repository.StatsRepo, shiftID uint64, now time.Time) (model.ShiftStatistics, error) {
	rows, err := entries.ListByShiftTx(ctx, tx, shiftID)
	if err != nil {
		return model.ShiftStatistics{}, err
	}
	snapshot := billing.ComputeStatistics(shiftID, rows, now)
	if err := stats.UpsertTx(ctx, tx, snapshot); err != nil {
		return model.ShiftStatistics{}, err
	}
	return snapshot, nil
}
