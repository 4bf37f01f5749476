package handler

import (
	"time"

	"github.com/google/uuid"

	identityapp "github.com/costerbox/backend/internal/application/identity"
	"github.com/costerbox/backend/internal/domain/identity"
)

// UserResponse represents an account in API responses
type UserResponse struct {
	ID          uuid.UUID     `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	Phone       string        `json:"phone,omitempty"`
	Role        identity.Role `json:"role"`
	Zone        string        `json:"zone,omitempty"`
}

// SessionResponse represents an issued token pair
type SessionResponse struct {
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time     `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time     `json:"refresh_token_expires_at"`
	TokenType             string        `json:"token_type"`
	User                  *UserResponse `json:"user,omitempty"`
}

func toUserResponse(u *identityapp.UserInfo) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		Role:        u.Role,
		Zone:        u.Zone,
	}
}

func toLoginResponse(r *identityapp.LoginResult) SessionResponse {
	user := toUserResponse(&r.User)
	return SessionResponse{
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		TokenType:             r.TokenType,
		User:                  &user,
	}
}

func toRefreshResponse(r *identityapp.RefreshTokenResult) SessionResponse {
	return SessionResponse{
		AccessToken:           r.AccessToken,
		RefreshToken:          r.RefreshToken,
		AccessTokenExpiresAt:  r.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: r.RefreshTokenExpiresAt,
		TokenType:             r.TokenType,
	}
}
