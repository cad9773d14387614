package models

import (
	"context"

	"github.com/rideapp/ride-booking-system/internal/domain/types"
	"github.com/rideapp/ride-booking-system/pkg/uuid"
)

// User is a directory entry. The user directory itself is an external
// collaborator; the lifecycle engine only reads identity, role and phone.
type User struct {
	ID     uuid.UUID        `json:"id"`
	Name   string           `json:"name"`
	Email  string           `json:"email,omitempty"`
	Phone  string           `json:"phone"`
	Role   types.UserRole   `json:"role"`
	Status types.UserStatus `json:"status"`
}

func (u *User) IsAnonymous() bool {
	return u == anonymousUser
}

var anonymousUser = &User{Name: "anonymous"}

func AnonymousUser() *User {
	return anonymousUser
}

type userCtxKey struct{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
