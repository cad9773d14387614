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

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Find(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := TxorDB(ctx, r.db)

	var u models.User
	query := `SELECT id, name, email, phone, role, status FROM users WHERE id = $1;`

	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("user repo: Find: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Save(ctx context.Context, u models.User) error {
	q := TxorDB(ctx, r.db)

	query := `
        INSERT INTO users (id, name, email, phone, role, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            email = EXCLUDED.email,
            phone = EXCLUDED.phone,
            role = EXCLUDED.role,
            status = EXCLUDED.status;`

	_, err := q.Exec(ctx, query, u.ID, u.Name, u.Email, u.Phone, u.Role, u.Status)
	if err != nil {
		return fmt.Errorf("user repo: Save: %w", err)
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]*models.User, error) {
	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, email, phone, role, status FROM users ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("user repo: List: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status); err != nil {
			return nil, fmt.Errorf("user repo: List scan: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user repo: List rows: %w", err)
	}
	return users, nil
}
