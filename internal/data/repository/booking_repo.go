package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"interview-booking/internal/data/entity"
	"interview-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const bookingColumns = `id, client_name, client_email, client_phone, slot_date, slot_time,
	       modality, status, notes, reminder_24h_sent, reminder_1h_sent, followup_sent,
	       created_at, updated_at`

// BookingListFilter narrows admin listing queries.
type BookingListFilter struct {
	Status entity.BookingStatus
	Date   *time.Time
}

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	List(ctx context.Context, filter BookingListFilter, limit, offset int) ([]*entity.Booking, error)
	Count(ctx context.Context, filter BookingListFilter) (int64, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error

	// CountActiveBySlot returns occupied-counts per slot time for a date,
	// counting pending and confirmed bookings only.
	CountActiveBySlot(ctx context.Context, date time.Time) (map[string]int, error)

	// ReserveAtomic serializes writers of the slot via an advisory lock,
	// re-checks remaining capacity and inserts the booking inside one
	// transaction. Concurrent losers get entity.ErrSlotTaken for any
	// configured capacity; the partial unique index backstops capacity 1.
	ReserveAtomic(ctx context.Context, booking *entity.Booking, capacity int) error

	// MoveAtomic takes the same slot lock and capacity re-check at the
	// target slot (excluding the moving booking from its own collision
	// check), then updates date, time, optional status and updated_at in
	// one statement.
	MoveAtomic(ctx context.Context, bookingID uuid.UUID, newDate time.Time, newTime string, status *entity.BookingStatus, capacity int) (*entity.Booking, error)

	// DueForCheckpoint returns bookings that crossed the checkpoint
	// threshold relative to now and still have the flag unset.
	DueForCheckpoint(ctx context.Context, checkpoint entity.ReminderCheckpoint, now time.Time) ([]*entity.Booking, error)

	// MarkReminderSent sets the checkpoint flag true only if currently
	// false. Returns false when another sweep already claimed it.
	MarkReminderSent(ctx context.Context, bookingID uuid.UUID, checkpoint entity.ReminderCheckpoint) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.ClientName,
		&b.ClientEmail,
		&b.ClientPhone,
		&b.SlotDate,
		&b.SlotTime,
		&b.Modality,
		&b.Status,
		&b.Notes,
		&b.Reminder24hSent,
		&b.Reminder1hSent,
		&b.FollowupSent,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filter BookingListFilter, limit, offset int) ([]*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings
		WHERE ($1 = '' OR status = $1)
		  AND ($2::date IS NULL OR slot_date = $2)
		ORDER BY slot_date, slot_time
		LIMIT $3 OFFSET $4
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, string(filter.Status), filter.Date, limit, offset)
	if err != nil {
		r.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.String("status", string(filter.Status)),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) Count(ctx context.Context, filter BookingListFilter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE ($1 = '' OR status = $1)
		  AND ($2::date IS NULL OR slot_date = $2)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, string(filter.Status), filter.Date).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("update booking %s: %w", bookingID.String(), entity.ErrBookingNotFound)
	}

	return nil
}

func (r *bookingRepository) CountActiveBySlot(ctx context.Context, date time.Time) (map[string]int, error) {
	query := `
		SELECT slot_time, COUNT(*)
		FROM bookings
		WHERE slot_date = $1 AND status IN ('pending', 'confirmed')
		GROUP BY slot_time
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("Failed to count active bookings by slot",
			zap.Error(err),
			zap.Time("date", date),
		)
		return nil, fmt.Errorf("count active bookings for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slotTime string
		var count int
		if err := rows.Scan(&slotTime, &count); err != nil {
			r.log.Error("Failed to scan slot count row", zap.Error(err))
			return nil, fmt.Errorf("scan slot count row: %w", err)
		}
		counts[slotTime] = count
	}

	return counts, nil
}

// isUniqueViolation detects the partial unique index on (slot_date, slot_time)
// rejecting a concurrent insert.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *bookingRepository) ReserveAtomic(ctx context.Context, booking *entity.Booking, capacity int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize all writers of this slot before counting. A FOR UPDATE
	// count alone is not enough: an empty slot has no rows to lock, and a
	// blocked loser's count statement would not see the winner's insert.
	if err := lockSlot(ctx, tx, booking.SlotDate, booking.SlotTime); err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}

	occupied, err := countActiveSlot(ctx, tx, booking.SlotDate, booking.SlotTime, uuid.Nil)
	if err != nil {
		r.log.Error("Failed to re-check slot capacity",
			zap.Error(err),
			zap.String("slot_time", booking.SlotTime),
		)
		return fmt.Errorf("re-check slot capacity: %w", err)
	}

	if occupied >= capacity {
		return fmt.Errorf("slot %s %s: %w", booking.SlotDate.Format("2006-01-02"), booking.SlotTime, entity.ErrSlotTaken)
	}

	insert := `
		INSERT INTO bookings (id, client_name, client_email, client_phone, slot_date, slot_time,
		                      modality, status, notes, reminder_24h_sent, reminder_1h_sent,
		                      followup_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, FALSE, $10, $11)
	`

	_, err = tx.Exec(ctx, insert,
		booking.ID,
		booking.ClientName,
		booking.ClientEmail,
		booking.ClientPhone,
		booking.SlotDate,
		booking.SlotTime,
		booking.Modality,
		booking.Status,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slot %s %s: %w", booking.SlotDate.Format("2006-01-02"), booking.SlotTime, entity.ErrSlotTaken)
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("insert booking %s: %w", booking.ID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("slot %s %s: %w", booking.SlotDate.Format("2006-01-02"), booking.SlotTime, entity.ErrSlotTaken)
		}
		return fmt.Errorf("commit reserve tx: %w", err)
	}

	return nil
}

func (r *bookingRepository) MoveAtomic(ctx context.Context, bookingID uuid.UUID, newDate time.Time, newTime string, status *entity.BookingStatus, capacity int) (*entity.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reschedule tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Same serialization and capacity re-check as the reserve path,
	// excluding the booking being moved from its own collision check.
	if err := lockSlot(ctx, tx, newDate, newTime); err != nil {
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	occupied, err := countActiveSlot(ctx, tx, newDate, newTime, bookingID)
	if err != nil {
		r.log.Error("Failed to re-check target slot capacity",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("re-check target slot capacity: %w", err)
	}

	if occupied >= capacity {
		return nil, fmt.Errorf("slot %s %s: %w", newDate.Format("2006-01-02"), newTime, entity.ErrSlotTaken)
	}

	query := fmt.Sprintf(`
		UPDATE bookings
		SET slot_date = $2, slot_time = $3, status = COALESCE($4, status), updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, bookingColumns)

	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	booking, err := scanBooking(tx.QueryRow(ctx, query, bookingID, newDate, newTime, statusArg))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("move booking %s: %w", bookingID.String(), entity.ErrBookingNotFound)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("slot %s %s: %w", newDate.Format("2006-01-02"), newTime, entity.ErrSlotTaken)
		}
		r.log.Error("Failed to move booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("move booking %s: %w", bookingID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("slot %s %s: %w", newDate.Format("2006-01-02"), newTime, entity.ErrSlotTaken)
		}
		return nil, fmt.Errorf("commit reschedule tx: %w", err)
	}

	return booking, nil
}

// lockSlot takes a transaction-scoped advisory lock on the slot, so at
// most one reserve/move transaction works on a (date, time) pair at a
// time for any capacity. Released automatically at commit or rollback.
func lockSlot(ctx context.Context, tx pgx.Tx, date time.Time, slotTime string) error {
	_, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ' ' || $2))`,
		date.Format("2006-01-02"), slotTime,
	)
	return err
}

// countActiveSlot counts pending/confirmed bookings at the slot,
// optionally excluding one booking id. Callers hold the slot's advisory
// lock, so the count includes every committed competitor.
func countActiveSlot(ctx context.Context, tx pgx.Tx, date time.Time, slotTime string, exclude uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE slot_date = $1 AND slot_time = $2
		  AND status IN ('pending', 'confirmed')
		  AND ($3::uuid IS NULL OR id <> $3)
	`

	var excludeArg any
	if exclude != uuid.Nil {
		excludeArg = exclude
	}

	var count int
	if err := tx.QueryRow(ctx, query, date, slotTime, excludeArg).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *bookingRepository) DueForCheckpoint(ctx context.Context, checkpoint entity.ReminderCheckpoint, now time.Time) ([]*entity.Booking, error) {
	var query string
	switch checkpoint {
	case entity.Checkpoint24hBefore:
		query = fmt.Sprintf(`
			SELECT %s FROM bookings
			WHERE status IN ('pending', 'confirmed')
			  AND reminder_24h_sent = FALSE
			  AND (slot_date + slot_time::time) > $1
			  AND (slot_date + slot_time::time) <= $1 + interval '24 hours'
			ORDER BY slot_date, slot_time
		`, bookingColumns)
	case entity.Checkpoint1hBefore:
		query = fmt.Sprintf(`
			SELECT %s FROM bookings
			WHERE status IN ('pending', 'confirmed')
			  AND reminder_1h_sent = FALSE
			  AND (slot_date + slot_time::time) > $1
			  AND (slot_date + slot_time::time) <= $1 + interval '1 hour'
			ORDER BY slot_date, slot_time
		`, bookingColumns)
	case entity.CheckpointFollowup:
		query = fmt.Sprintf(`
			SELECT %s FROM bookings
			WHERE status = 'completed'
			  AND followup_sent = FALSE
			  AND (slot_date + slot_time::time) <= $1 - interval '24 hours'
			ORDER BY slot_date, slot_time
		`, bookingColumns)
	default:
		return nil, fmt.Errorf("unknown checkpoint %q", checkpoint)
	}

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to query due bookings",
			zap.Error(err),
			zap.String("checkpoint", string(checkpoint)),
		)
		return nil, fmt.Errorf("query due bookings for %s: %w", checkpoint, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan due booking row", zap.Error(err))
			return nil, fmt.Errorf("scan due booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) MarkReminderSent(ctx context.Context, bookingID uuid.UUID, checkpoint entity.ReminderCheckpoint) (bool, error) {
	var column string
	switch checkpoint {
	case entity.Checkpoint24hBefore:
		column = "reminder_24h_sent"
	case entity.Checkpoint1hBefore:
		column = "reminder_1h_sent"
	case entity.CheckpointFollowup:
		column = "followup_sent"
	default:
		return false, fmt.Errorf("unknown checkpoint %q", checkpoint)
	}

	// Conditional update: only flips false -> true, so overlapping sweeps
	// cannot both claim the same booking-checkpoint pair.
	query := fmt.Sprintf(
		`UPDATE bookings SET %s = TRUE, updated_at = NOW() WHERE id = $1 AND %s = FALSE`,
		column, column,
	)

	result, err := r.db.Exec(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to mark reminder sent",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("checkpoint", string(checkpoint)),
		)
		return false, fmt.Errorf("mark %s sent for booking %s: %w", checkpoint, bookingID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
