package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/identity"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
	Role        identity.Role
}

// LoginInput contains the input for login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic account information returned to clients
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	Phone       string
	Role        identity.Role
	Zone        string
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UpdatePickupAddressInput contains the input for an artisan updating
// their pickup address
type UpdatePickupAddressInput struct {
	ArtisanID uuid.UUID
	Line1     string
	Line2     string
	City      string
	State     string
	Pincode   string
	Phone     string
}
