package user

import (
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/google/uuid"
)

type User struct {
	UserID    uuid.UUID `json:"userID"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
