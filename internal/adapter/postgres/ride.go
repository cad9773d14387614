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

type RideRepo struct {
	db *pgxpool.Pool
}

func NewRideRepo(db *pgxpool.Pool) *RideRepo {
	return &RideRepo{db: db}
}

func (r *RideRepo) Find(ctx context.Context, id uuid.UUID) (*models.Ride, error) {
	q := TxorDB(ctx, r.db)

	var ride models.Ride
	query := `
        SELECT id, driver_id, pickup, drop_location, scheduled_at, price,
               distance_miles, estimated_duration_min, status, created_at
        FROM rides
        WHERE id = $1;`

	err := q.QueryRow(ctx, query, id).Scan(
		&ride.ID, &ride.DriverID, &ride.Pickup, &ride.Drop, &ride.ScheduledAt,
		&ride.Price, &ride.DistanceMiles, &ride.EstimatedDurationMin,
		&ride.Status, &ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRideNotFound
		}
		return nil, fmt.Errorf("ride repo: Find: %w", err)
	}
	return &ride, nil
}

func (r *RideRepo) Save(ctx context.Context, ride *models.Ride) error {
	q := TxorDB(ctx, r.db)

	query := `
        INSERT INTO rides (id, driver_id, pickup, drop_location, scheduled_at, price,
                           distance_miles, estimated_duration_min, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE SET
            driver_id = EXCLUDED.driver_id,
            pickup = EXCLUDED.pickup,
            drop_location = EXCLUDED.drop_location,
            scheduled_at = EXCLUDED.scheduled_at,
            price = EXCLUDED.price,
            distance_miles = EXCLUDED.distance_miles,
            estimated_duration_min = EXCLUDED.estimated_duration_min,
            status = EXCLUDED.status;`

	_, err := q.Exec(ctx, query,
		ride.ID, ride.DriverID, ride.Pickup, ride.Drop, ride.ScheduledAt,
		ride.Price, ride.DistanceMiles, ride.EstimatedDurationMin,
		ride.Status, ride.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ride repo: Save: %w", err)
	}
	return nil
}

func (r *RideRepo) Delete(ctx context.Context, id uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM rides WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("ride repo: Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRideNotFound
	}
	return nil
}

func (r *RideRepo) List(ctx context.Context) ([]*models.Ride, error) {
	q := TxorDB(ctx, r.db)

	query := `
        SELECT id, driver_id, pickup, drop_location, scheduled_at, price,
               distance_miles, estimated_duration_min, status, created_at
        FROM rides
        ORDER BY created_at;`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ride repo: List: %w", err)
	}
	defer rows.Close()

	var rides []*models.Ride
	for rows.Next() {
		var ride models.Ride
		if err := rows.Scan(
			&ride.ID, &ride.DriverID, &ride.Pickup, &ride.Drop, &ride.ScheduledAt,
			&ride.Price, &ride.DistanceMiles, &ride.EstimatedDurationMin,
			&ride.Status, &ride.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ride repo: List scan: %w", err)
		}
		rides = append(rides, &ride)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ride repo: List rows: %w", err)
	}
	return rides, nil
}
