package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/mgthura/parking-ledger/internal/model"
)

// ShiftRepo provides data access to the shift_sessions table.  It
// owns the single-active-shift invariant: opening takes a locked read
// over the active row inside the caller's transaction, and the
// active_flag column carries a one-row UNIQUE guard as a backstop so
// the invariant holds even if a future code path skips the lock.
// All timestamps are stored and compared in UTC.
type ShiftRepo struct {
    db *sql.DB
}

// NewShiftRepo returns a new ShiftRepo bound to the given database.
func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// that span multiple repositories.
func (r *ShiftRepo) DB() *sql.DB { return r.db }

const shiftColumns = `id, employee_id, start_time, end_time, opening_cash_cents,
closing_cash_cents, expected_cash_cents, cash_delta_cents, discrepancy_note,
status, created_at, updated_at`

// scanShift reads one shift_sessions row from the given scanner.
func scanShift(row interface {
    Scan(dest ...interface{}) error
}) (*model.ShiftSession, error) {
    var (
        s        model.ShiftSession
        endTime  sql.NullTime
        closing  sql.NullInt64
        expected sql.NullInt64
        delta    sql.NullInt64
        note     sql.NullString
    )
    err := row.Scan(&s.ID, &s.EmployeeID, &s.StartTime, &endTime, &s.OpeningCashCents,
        &closing, &expected, &delta, &note, &s.Status, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if endTime.Valid {
        t := endTime.Time
        s.EndTime = &t
    }
    if closing.Valid {
        v := closing.Int64
        s.ClosingCashCents = &v
    }
    if expected.Valid {
        v := expected.Int64
        s.ExpectedCashCents = &v
    }
    if delta.Valid {
        v := delta.Int64
        s.CashDeltaCents = &v
    }
    if note.Valid {
        n := note.String
        s.DiscrepancyNote = &n
    }
    return &s, nil
}

// GetByID returns a single shift by its ID.  ErrShiftNotFound is
// returned when no row exists.
func (r *ShiftRepo) GetByID(ctx context.Context, id uint64) (*model.ShiftSession, error) {
    const q = `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE id = ?`
    s, err := scanShift(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrShiftNotFound
    }
    return s, err
}

// Active returns the currently active shift without locking, for
// read-only callers such as dashboards.  ErrNoActiveShift is returned
// when no shift is open.
func (r *ShiftRepo) Active(ctx context.Context) (*model.ShiftSession, error) {
    const q = `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE status = 'ACTIVE' LIMIT 1`
    s, err := scanShift(r.db.QueryRowContext(ctx, q))
    if err == sql.ErrNoRows {
        return nil, ErrNoActiveShift
    }
    return s, err
}

// ActiveTx returns the currently active shift with a row lock held
// for the duration of the transaction.  Entry creation uses this so
// the link-to-shift read and the insert commit atomically: an entry
// can end up unlinked, but never linked to a shift that closed in
// between.  ErrNoActiveShift is returned when no shift is open.
func (r *ShiftRepo) ActiveTx(ctx context.Context, tx *sql.Tx) (*model.ShiftSession, error) {
    const q = `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE status = 'ACTIVE' LIMIT 1 FOR UPDATE`
    s, err := scanShift(tx.QueryRowContext(ctx, q))
    if err == sql.ErrNoRows {
        return nil, ErrNoActiveShift
    }
    return s, err
}

// OpenTx inserts a new active shift within the given transaction.  It
// first takes a locked read over any active row, serializing
// concurrent opens; if one exists it fails with ErrShiftAlreadyActive.
// The UNIQUE(active_flag) constraint turns a race that slips past the
// lock into a duplicate-key error, which is mapped to the same
// sentinel.  The generated ID and timestamps are populated on the
// returned session.
func (r *ShiftRepo) OpenTx(ctx context.Context, tx *sql.Tx, employeeID uint64, openingCashCents int64, startTime time.Time) (*model.ShiftSession, error) {
    var existing uint64
    err := tx.QueryRowContext(ctx,
        `SELECT id FROM shift_sessions WHERE status = 'ACTIVE' LIMIT 1 FOR UPDATE`,
    ).Scan(&existing)
    if err == nil {
        return nil, ErrShiftAlreadyActive
    }
    if err != sql.ErrNoRows {
        return nil, err
    }
    res, err := tx.ExecContext(ctx,
        `INSERT INTO shift_sessions (employee_id, start_time, opening_cash_cents, status, active_flag)
         VALUES (?, ?, ?, 'ACTIVE', 1)`,
        employeeID, startTime.UTC(), openingCashCents)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return nil, ErrShiftAlreadyActive
        }
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    const sel = `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE id = ?`
    return scanShift(tx.QueryRowContext(ctx, sel, uint64(id)))
}

// LockTx loads a shift by ID with a row lock held for the duration of
// the transaction.  Close and reconcile use it to pin the shift state
// while statistics are recomputed.  ErrShiftNotFound is returned for
// unknown IDs.
func (r *ShiftRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ShiftSession, error) {
    const q = `SELECT ` + shiftColumns + ` FROM shift_sessions WHERE id = ? FOR UPDATE`
    s, err := scanShift(tx.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrShiftNotFound
    }
    return s, err
}

// CloseTx transitions an active shift to COMPLETED within the given
// transaction and records the reconciliation annotation (counted
// cash, expected cash, delta and an optional note).  The active_flag
// is cleared so a new shift may open.  It fails with
// ErrShiftNotActive when the shift has already completed.  Callers
// must have loaded the shift via LockTx beforehand.
func (r *ShiftRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, endTime time.Time, closingCashCents, expectedCashCents, deltaCents int64, note *string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE shift_sessions
         SET status = 'COMPLETED', active_flag = NULL, end_time = ?,
             closing_cash_cents = ?, expected_cash_cents = ?, cash_delta_cents = ?,
             discrepancy_note = ?
         WHERE id = ? AND status = 'ACTIVE'`,
        endTime.UTC(), closingCashCents, expectedCashCents, deltaCents, note, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Distinguish an unknown shift from one that already completed.
        var status string
        err := tx.QueryRowContext(ctx, `SELECT status FROM shift_sessions WHERE id = ?`, id).Scan(&status)
        if err == sql.ErrNoRows {
            return ErrShiftNotFound
        }
        if err != nil {
            return err
        }
        return ErrShiftNotActive
    }
    return nil
}

// List returns shifts ordered by start time descending, newest
// first, limited to the given count.
func (r *ShiftRepo) List(ctx context.Context, limit int) ([]model.ShiftSession, error) {
    if limit <= 0 || limit > 200 {
        limit = 50
    }
    const q = `SELECT ` + shiftColumns + ` FROM shift_sessions ORDER BY start_time DESC LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ShiftSession, 0, limit)
    for rows.Next() {
        s, err := scanShift(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *s)
    }
    return out, rows.Err()
}
