package views

import (
	"time"

	"github.com/meridianlabs/backoffice/pkg/models"
)

type UserCreateRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Role  string `json:"role" binding:"required,oneof=ADMIN STAFF CUSTOMER"`
}

type UserUpdateRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Name  string `json:"name" binding:"omitempty,min=1,max=200"`
	Role  string `json:"role" binding:"omitempty,oneof=ADMIN STAFF CUSTOMER"`
}

type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserListView struct {
	Users []UserView `json:"users"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

func NewUserView(u models.User) UserView {
	return UserView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
