package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/mgthura/parking-ledger/internal/model"
)

// EntryRepo provides data access to the parking_entries table.  The
// entry lifecycle is create at gate-in, mutate once at gate-out
// (exit time, fee, settlement) and archive instead of delete.  The
// shift link is stamped at creation time inside the caller's
// transaction and never reassigned by normal flow; only the explicit
// administrative backfill may touch a NULL link.
type EntryRepo struct {
    db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions
// that span multiple repositories.
func (r *EntryRepo) DB() *sql.DB { return r.db }

const entryColumns = `id, vehicle_number, vehicle_type, driver_name, notes,
entry_time, exit_time, fee_cents, payment_method, payment_settled,
used_fallback, shift_id, archived_at, created_by, created_at, updated_at`

// scanEntry reads one parking_entries row from the given scanner.
func scanEntry(row interface {
    Scan(dest ...interface{}) error
}) (*model.ParkingEntry, error) {
    var (
        e        model.ParkingEntry
        exit     sql.NullTime
        fee      sql.NullInt64
        shiftID  sql.NullInt64
        archived sql.NullTime
    )
    err := row.Scan(&e.ID, &e.VehicleNumber, &e.VehicleType, &e.DriverName, &e.Notes,
        &e.EntryTime, &exit, &fee, &e.PaymentMethod, &e.PaymentSettled,
        &e.UsedFallback, &shiftID, &archived, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if exit.Valid {
        t := exit.Time
        e.ExitTime = &t
    }
    if fee.Valid {
        v := fee.Int64
        e.FeeCents = &v
    }
    if shiftID.Valid {
        id := uint64(shiftID.Int64)
        e.ShiftID = &id
    }
    if archived.Valid {
        t := archived.Time
        e.ArchivedAt = &t
    }
    return &e, nil
}

// CreateTx inserts a new parking entry within the given transaction.
// The caller resolves the active shift (holding its row lock in the
// same transaction) and passes the link on the record, so the
// active-shift read and the insert commit atomically.  The generated
// ID and timestamps are populated on the provided record.
func (r *EntryRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.ParkingEntry) error {
    var shiftID interface{}
    if e.ShiftID != nil {
        shiftID = *e.ShiftID
    }
    res, err := tx.ExecContext(ctx,
        `INSERT INTO parking_entries
         (vehicle_number, vehicle_type, driver_name, notes, entry_time,
          payment_method, payment_settled, shift_id, created_by)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        strings.ToUpper(strings.TrimSpace(e.VehicleNumber)), e.VehicleType,
        e.DriverName, e.Notes, e.EntryTime.UTC(), e.PaymentMethod,
        e.PaymentSettled, shiftID, e.CreatedBy)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    // Query back the full row to populate defaults and timestamps.
    const sel = `SELECT ` + entryColumns + ` FROM parking_entries WHERE id = ?`
    created, err := scanEntry(tx.QueryRowContext(ctx, sel, e.ID))
    if err != nil {
        return err
    }
    *e = *created
    return nil
}

// GetByID returns a single entry by its ID, archived or not.
// ErrEntryNotFound is returned when no row exists.
func (r *EntryRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingEntry, error) {
    const q = `SELECT ` + entryColumns + ` FROM parking_entries WHERE id = ?`
    e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrEntryNotFound
    }
    return e, err
}

// LockTx loads an entry by ID with a row lock held for the duration
// of the transaction.  Exit, correction and archive use it so two
// simultaneous mutations of the same entry serialize.
func (r *EntryRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.ParkingEntry, error) {
    const q = `SELECT ` + entryColumns + ` FROM parking_entries WHERE id = ? FOR UPDATE`
    e, err := scanEntry(tx.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return nil, ErrEntryNotFound
    }
    return e, err
}

// RecordExitTx writes the exit outcome onto an entry within the given
// transaction: exit time, the fee computed once at exit, the fallback
// flag for audit, payment method and settlement.  The guard on
// exit_time IS NULL makes the fee write-once; a second exit attempt
// affects no rows and surfaces as ErrEntryAlreadyExited.
func (r *EntryRepo) RecordExitTx(ctx context.Context, tx *sql.Tx, id uint64, exitTime time.Time, feeCents int64, usedFallback bool, paymentMethod string, settled bool) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE parking_entries
         SET exit_time = ?, fee_cents = ?, used_fallback = ?,
             payment_method = ?, payment_settled = ?
         WHERE id = ? AND exit_time IS NULL AND archived_at IS NULL`,
        exitTime.UTC(), feeCents, usedFallback, paymentMethod, settled, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEntryAlreadyExited
    }
    return nil
}

// CorrectTx applies an explicit manager correction to an exited entry
// within the given transaction.  Corrections are the only path that
// may change a fee after exit; the caller must recompute the owning
// shift's statistics snapshot in the same transaction.
func (r *EntryRepo) CorrectTx(ctx context.Context, tx *sql.Tx, id uint64, feeCents int64, paymentMethod string, settled bool) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE parking_entries
         SET fee_cents = ?, payment_method = ?, payment_settled = ?
         WHERE id = ? AND exit_time IS NOT NULL AND archived_at IS NULL`,
        feeCents, paymentMethod, settled, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEntryNotFound
    }
    return nil
}

// ArchiveTx soft-deletes an entry within the given transaction.
// Entries are never hard-deleted; the archived_at timestamp removes
// them from shift aggregates while preserving the audit trail.
func (r *EntryRepo) ArchiveTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE parking_entries SET archived_at = ? WHERE id = ? AND archived_at IS NULL`,
        at.UTC(), id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrEntryNotFound
    }
    return nil
}

// ListByShiftTx returns every entry linked to the given shift,
// archived rows included, within the caller's transaction.  The
// statistics recomputation reads through this so the aggregate is
// derived from the same consistent snapshot as the write that
// triggered it.
func (r *EntryRepo) ListByShiftTx(ctx context.Context, tx *sql.Tx, shiftID uint64) ([]model.ParkingEntry, error) {
    const q = `SELECT ` + entryColumns + ` FROM parking_entries WHERE shift_id = ? ORDER BY entry_time, id`
    rows, err := tx.QueryContext(ctx, q, shiftID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectEntries(rows)
}

// ListByShift is the non-transactional variant of ListByShiftTx for
// read-only callers.
func (r *EntryRepo) ListByShift(ctx context.Context, shiftID uint64) ([]model.ParkingEntry, error) {
    const q = `SELECT ` + entryColumns + ` FROM parking_entries WHERE shift_id = ? ORDER BY entry_time, id`
    rows, err := r.db.QueryContext(ctx, q, shiftID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectEntries(rows)
}

// List returns non-archived entries, optionally restricted to parked
// (not yet exited) vehicles, ordered newest first.
func (r *EntryRepo) List(ctx context.Context, parkedOnly bool, limit int) ([]model.ParkingEntry, error) {
    if limit <= 0 || limit > 500 {
        limit = 100
    }
    q := `SELECT ` + entryColumns + ` FROM parking_entries WHERE archived_at IS NULL`
    if parkedOnly {
        q += ` AND exit_time IS NULL`
    }
    q += ` ORDER BY entry_time DESC, id DESC LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectEntries(rows)
}

// LinkUnassignedTx assigns all entries with a NULL shift link that
// entered before the cutoff to the given shift.  This is the
// administrative backfill used to recover pre-existing data; it is
// not part of the normal flow and never reassigns an existing link.
// It returns the number of entries linked.
func (r *EntryRepo) LinkUnassignedTx(ctx context.Context, tx *sql.Tx, shiftID uint64, cutoff time.Time) (int64, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE parking_entries
         SET shift_id = ?
         WHERE shift_id IS NULL AND entry_time < ? AND archived_at IS NULL`,
        shiftID, cutoff.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// collectEntries drains a result set into a slice.
func collectEntries(rows *sql.Rows) ([]model.ParkingEntry, error) {
    out := make([]model.ParkingEntry, 0)
    for rows.Next() {
        e, err := scanEntry(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *e)
    }
    return out, rows.Err()
}
