package repository

import (
	"context"
	"database/sql"

	"mesaYaApi/internal/booking"
	"mesaYaApi/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// table assignments (reservation_table pivot). Dates and clock times are
// read back as formatted strings so the rest of the application never
// touches driver-specific DATE/TIME representations. All timestamps are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// OccupancyRow is one table assignment of a non-cancelled reservation,
// with enough timing data to run the overlap test.
type OccupancyRow struct {
	TableID         uint64
	Time            string
	DurationMinutes uint32
}

// ActiveByLocationDate returns every table assignment of non-cancelled
// reservations at (location, date). The overlap filtering happens in the
// service layer; this query deliberately returns the whole day.
func (r *ReservationRepo) ActiveByLocationDate(ctx context.Context, location, date string) ([]OccupancyRow, error) {
	const q = `SELECT rt.table_id, TIME_FORMAT(r.reservation_time, '%H:%i'), r.duration_minutes
	           FROM reservations r
	           JOIN reservation_table rt ON rt.reservation_id = r.id
	           WHERE r.location = ? AND r.reservation_date = ? AND r.status <> 'cancelled'`
	rows, err := r.db.QueryContext(ctx, q, location, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OccupancyRow
	for rows.Next() {
		var row OccupancyRow
		if err := rows.Scan(&row.TableID, &row.Time, &row.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CreateConfirmed persists a reservation and its table assignments as one
// all-or-nothing unit. Inside the transaction it re-reads every
// non-cancelled reservation at (location, date) with FOR UPDATE and
// re-runs the overlap test against the chosen tables: the availability
// check and the write are a check-then-act sequence across concurrent
// requests, and this commit-time re-validation is what keeps two
// simultaneous creates from both attaching the same table. When a chosen
// table turns out occupied the transaction aborts with ErrTableConflict
// and the caller re-runs allocation.
//
// On success res.ID, res.Status and the timestamps are populated.
func (r *ReservationRepo) CreateConfirmed(ctx context.Context, res *model.Reservation, tableIDs []uint64) error {
	candidate, err := booking.SlotInterval(res.Date, res.Time, res.DurationMinutes)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the day's reservations at this location and recompute occupancy
	// for the exact candidate interval.
	const lockQ = `SELECT rt.table_id, TIME_FORMAT(r.reservation_time, '%H:%i'), r.duration_minutes
	               FROM reservations r
	               JOIN reservation_table rt ON rt.reservation_id = r.id
	               WHERE r.location = ? AND r.reservation_date = ? AND r.status <> 'cancelled'
	               FOR UPDATE`
	rows, err := tx.QueryContext(ctx, lockQ, res.Location, res.Date)
	if err != nil {
		return err
	}
	occupied := make(map[uint64]struct{})
	for rows.Next() {
		var row OccupancyRow
		if err := rows.Scan(&row.TableID, &row.Time, &row.DurationMinutes); err != nil {
			rows.Close()
			return err
		}
		iv, err := booking.SlotInterval(res.Date, row.Time, row.DurationMinutes)
		if err != nil {
			rows.Close()
			return err
		}
		if iv.Overlaps(candidate) {
			occupied[row.TableID] = struct{}{}
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, id := range tableIDs {
		if _, taken := occupied[id]; taken {
			return ErrTableConflict
		}
	}

	const insQ = `INSERT INTO reservations
	              (user_id, reservation_date, reservation_time, party_size, location, duration_minutes, status)
	              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insQ,
		res.UserID, res.Date, res.Time, res.PartySize, res.Location, res.DurationMinutes, model.StatusConfirmed)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.StatusConfirmed

	if err := r.attachTablesTx(ctx, tx, res.ID, tableIDs); err != nil {
		return err
	}

	// Read timestamps back so the response mirrors the stored row.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// attachTablesTx bulk-inserts the reservation_table pivot rows.
func (r *ReservationRepo) attachTablesTx(ctx context.Context, tx *sql.Tx, reservationID uint64, tableIDs []uint64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_table (reservation_id, table_id) VALUES `
	args := make([]any, 0, len(tableIDs)*2)
	for i, id := range tableIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const reservationColumns = `r.id, r.user_id,
	DATE_FORMAT(r.reservation_date, '%Y-%m-%d'), TIME_FORMAT(r.reservation_time, '%H:%i'),
	r.party_size, r.location, r.duration_minutes, r.status, r.created_at, r.updated_at`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.Date, &res.Time,
		&res.PartySize, &res.Location, &res.DurationMinutes, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	return res, err
}

// GetByID returns a reservation with its assigned tables populated, or
// ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const tq = `SELECT t.id, t.location, t.table_number, t.capacity, t.is_available, t.created_at, t.updated_at
	            FROM reservation_table rt
	            JOIN tables t ON t.id = rt.table_id
	            WHERE rt.reservation_id = ?
	            ORDER BY t.table_number`
	rows, err := r.db.QueryContext(ctx, tq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res.Tables = []model.Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		res.Tables = append(res.Tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &res, nil
}

// MarkCancelled flips a reservation's status to cancelled. The row itself
// and its table assignments are never deleted.
func (r *ReservationRepo) MarkCancelled(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled' WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AvailabilityRow carries one table assignment of a non-cancelled
// reservation on a date, joined with its user, for the real-time
// availability view.
type AvailabilityRow struct {
	TableID         uint64
	ReservationID   uint64
	Time            string
	PartySize       uint32
	DurationMinutes uint32
	UserName        string
	UserEmail       string
}

// AvailabilityByDate returns every table assignment of non-cancelled
// reservations on a date across all locations, with user details.
func (r *ReservationRepo) AvailabilityByDate(ctx context.Context, date string) ([]AvailabilityRow, error) {
	const q = `SELECT rt.table_id, r.id, TIME_FORMAT(r.reservation_time, '%H:%i'),
	                  r.party_size, r.duration_minutes, u.name, u.email
	           FROM reservations r
	           JOIN reservation_table rt ON rt.reservation_id = r.id
	           JOIN users u ON u.id = r.user_id
	           WHERE r.reservation_date = ? AND r.status <> 'cancelled'`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AvailabilityRow
	for rows.Next() {
		var row AvailabilityRow
		if err := rows.Scan(&row.TableID, &row.ReservationID, &row.Time,
			&row.PartySize, &row.DurationMinutes, &row.UserName, &row.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ByDateRow is one reservation of the per-date listing, with its assigned
// tables concatenated as "A-3, A-4" by the database.
type ByDateRow struct {
	ReservationID uint64 `json:"reservation_id"`
	Location      string `json:"location"`
	Time          string `json:"reservation_time"`
	PartySize     uint32 `json:"party_size"`
	Status        string `json:"status"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	Tables        string `json:"tables"`
}

// ListByDate returns the non-cancelled reservations of a date in a single
// join, ordered by location then time. Grouping by location happens in the
// service layer.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]ByDateRow, error) {
	const q = `SELECT r.id, r.location, TIME_FORMAT(r.reservation_time, '%H:%i'),
	                  r.party_size, r.status, u.name, u.email,
	                  GROUP_CONCAT(CONCAT(t.location, '-', t.table_number)
	                               ORDER BY t.table_number SEPARATOR ', ')
	           FROM reservations r
	           JOIN reservation_table rt ON rt.reservation_id = r.id
	           JOIN tables t ON t.id = rt.table_id
	           JOIN users u ON u.id = r.user_id
	           WHERE r.reservation_date = ? AND r.status <> 'cancelled'
	           GROUP BY r.id, r.location, r.reservation_time, r.party_size, r.status, u.name, u.email
	           ORDER BY r.location, r.reservation_time`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ByDateRow
	for rows.Next() {
		var row ByDateRow
		if err := rows.Scan(&row.ReservationID, &row.Location, &row.Time,
			&row.PartySize, &row.Status, &row.UserName, &row.UserEmail, &row.Tables); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListAll returns every reservation without table lists, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r ORDER BY r.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
