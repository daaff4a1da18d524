package dto

import "reviewhub/internal/api/models"

// UserResponse is the only external user shape: internal id and
// confirmation code are never exposed.
type UserResponse struct {
	Username  string      `json:"username"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Bio       string      `json:"bio"`
}

func UserFromModel(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
	}
}

// CreateUserDTO for admin-side user creation
type CreateUserDTO struct {
	Username  string      `json:"username" binding:"required,min=3,max=50"`
	Email     string      `json:"email" binding:"required,email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
	Bio       string      `json:"bio" binding:"max=500"`
}

// UpdateUserDTO for admin PATCH /users/:username
type UpdateUserDTO struct {
	Username  *string      `json:"username" binding:"omitempty,min=3,max=50"`
	Email     *string      `json:"email" binding:"omitempty,email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
	Bio       *string      `json:"bio" binding:"omitempty,max=500"`
}

// UpdateSelfDTO for PATCH /users/me. Role is intentionally absent: a
// caller must not be able to raise their own privileges.
type UpdateSelfDTO struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
}
