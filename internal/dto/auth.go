package dto

import "github.com/boring-ventures/billar-sub000/internal/model"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int      `json:"expiresIn"`
	User         UserInfo `json:"user"`
}

type CreateUserRequest struct {
	CompanyID *string `json:"companyId" validate:"omitempty,uuid"`
	Username  string  `json:"username"  validate:"required,min=3,max=60"`
	Name      string  `json:"name"      validate:"required,min=1,max=120"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Password  string  `json:"password"  validate:"required,min=8"`
	Role      string  `json:"role"      validate:"required,oneof=SELLER ADMIN SUPERADMIN"`
}

type UserResponse struct {
	UserInfo
	Email  *string `json:"email"`
	Active bool    `json:"active"`
}

func NewUserInfo(u *model.User) UserInfo {
	return UserInfo{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CompanyID: u.CompanyID.String(),
	}
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{UserInfo: NewUserInfo(u), Email: u.Email, Active: u.Active}
}
