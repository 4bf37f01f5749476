package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the access level of a user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleArtisan  Role = "artisan"
	RoleAdmin    Role = "admin"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a storefront account: customer, artisan or admin
type User struct {
	shared.BaseAggregateRoot
	Email        string
	PasswordHash string
	DisplayName  string
	Phone        string
	Role         Role
	Status       UserStatus
	LastLoginAt  *time.Time

	// Artisan-only fields
	Zone                     string
	PickupAddress            valueobject.Address
	PickupLocationCode       string
	PickupLocationRegistered bool
}

// NewUser creates a new account with the given role
func NewUser(email, password, displayName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if role != RoleCustomer && role != RoleArtisan && role != RoleAdmin {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		DisplayName:       strings.TrimSpace(displayName),
		Role:              role,
		Status:            UserStatusActive,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// IsArtisan returns true for artisan accounts
func (u *User) IsArtisan() bool {
	return u.Role == RoleArtisan
}

// IsAdmin returns true for admin accounts
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true when the account may sign in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash after validation
func (u *User) ChangePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	return nil
}

// RecordLogin stores the last successful login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone != "" && len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 20 characters")
	}
	u.Phone = phone
	u.Touch()
	return nil
}

// SetZone sets the artisan's operating zone
func (u *User) SetZone(zone string) error {
	if !u.IsArtisan() {
		return shared.ErrInvalidState
	}
	u.Zone = strings.TrimSpace(zone)
	u.Touch()
	return nil
}

// SetPickupAddress replaces the artisan's pickup address. Changing the
// address invalidates the courier-side registration so the next shipment
// re-registers the location.
func (u *User) SetPickupAddress(addr valueobject.Address) error {
	if !u.IsArtisan() {
		return shared.ErrInvalidState
	}
	if addr.IsEmpty() {
		return shared.ErrInvalidInput
	}
	u.PickupAddress = addr
	u.PickupLocationRegistered = false
	u.PickupLocationCode = ""
	u.Touch()
	return nil
}

// MarkPickupLocationRegistered records the courier-side location code after
// a successful registration.
func (u *User) MarkPickupLocationRegistered(code string) {
	u.PickupLocationCode = code
	u.PickupLocationRegistered = true
	u.Touch()
}

// Deactivate disables the account
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.Touch()
}

// Activate re-enables the account
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.Touch()
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates input beyond 72 bytes
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
