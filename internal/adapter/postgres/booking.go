package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

type BookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, ride_id, rider_id, pickup, drop_location,
       scheduled_time_text, distance_miles, fare, status, created_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.RideID, &b.RiderID, &b.Pickup, &b.Drop,
		&b.ScheduledTimeText, &b.DistanceMiles, &b.Fare, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Find(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	q := TxorDB(ctx, r.db)

	b, err := scanBooking(q.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repo: Find: %w", err)
	}
	return b, nil
}

func (r *BookingRepo) Save(ctx context.Context, b *models.Booking) error {
	q := TxorDB(ctx, r.db)

	query := `
        INSERT INTO bookings (id, ride_id, rider_id, pickup, drop_location,
                              scheduled_time_text, distance_miles, fare, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE SET
            pickup = EXCLUDED.pickup,
            drop_location = EXCLUDED.drop_location,
            scheduled_time_text = EXCLUDED.scheduled_time_text,
            distance_miles = EXCLUDED.distance_miles,
            fare = EXCLUDED.fare,
            status = EXCLUDED.status;`

	_, err := q.Exec(ctx, query,
		b.ID, b.RideID, b.RiderID, b.Pickup, b.Drop,
		b.ScheduledTimeText, b.DistanceMiles, b.Fare, b.Status, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking repo: Save: %w", err)
	}
	return nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM bookings WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("booking repo: Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) List(ctx context.Context) ([]*models.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at;`)
}

func (r *BookingRepo) ListByRide(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE ride_id = $1 ORDER BY created_at;`, rideID)
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("booking repo: list: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking repo: list scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking repo: list rows: %w", err)
	}
	return bookings, nil
}
