package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/backoffice/pkg"
)

// User maps to table `users`
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      pkg.UserRole
	Status    pkg.UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
