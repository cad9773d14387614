package app

import (
	"context"

	"github.com/rideapp/ride-booking-system/internal/adapter/memstore"
	"github.com/rideapp/ride-booking-system/internal/domain/models"
	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/logger"
	wrap "github.com/rideapp/ride-booking-system/pkg/logger/wrapper"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// Demo directory with fixed ids, so tokens issued via /auth/token stay valid
// across restarts of the in-memory backend.
var demoUsers = []struct {
	id    string
	name  string
	phone string
	role  types.UserRole
}{
	{"00000000-0000-0000-0000-000000000001", "Demo Admin", "+77010000001", types.RoleAdmin},
	{"00000000-0000-0000-0000-000000000002", "Demo Driver", "+77010000002", types.RoleDriver},
	{"00000000-0000-0000-0000-000000000003", "Second Driver", "+77010000003", types.RoleDriver},
	{"00000000-0000-0000-0000-000000000004", "Demo Rider", "+77010000004", types.RoleRider},
	{"00000000-0000-0000-0000-000000000005", "Second Rider", "+77010000005", types.RoleRider},
}

func seedDemoUsers(ctx context.Context, users *memstore.UserStore, log logger.Logger) {
	ctx = wrap.WithAction(ctx, "seed_demo_users")

	for _, d := range demoUsers {
		id, err := uuid.Parse(d.id)
		if err != nil {
			log.Error(ctx, "invalid demo user id", err, "id", d.id)
			continue
		}

		u := models.User{
			ID:     id,
			Name:   d.name,
			Phone:  d.phone,
			Role:   d.role,
			Status: types.UserActive,
		}
		if err := users.Save(ctx, u); err != nil {
			log.Error(ctx, "failed to seed demo user", err, "name", d.name)
			continue
		}
		log.Info(ctx, "seeded demo user", "user_id", u.ID, "role", u.Role)
	}
}
