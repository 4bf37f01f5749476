package models

import (
	"time"

	"github.com/costerbox/backend/internal/domain/identity"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

// UserModel is the persistence model for the User aggregate root.
type UserModel struct {
	AggregateModel
	Email        string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	DisplayName  string              `gorm:"type:varchar(200);not null"`
	Phone        string              `gorm:"type:varchar(20)"`
	Role         identity.Role       `gorm:"type:varchar(10);not null;index"`
	Status       identity.UserStatus `gorm:"type:varchar(15);not null;default:'active'"`
	LastLoginAt  *time.Time

	Zone                     string              `gorm:"type:varchar(100)"`
	PickupAddress            valueobject.Address `gorm:"type:jsonb"`
	PickupLocationCode       string              `gorm:"type:varchar(36)"`
	PickupLocationRegistered bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User aggregate.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		Email:                    m.Email,
		PasswordHash:             m.PasswordHash,
		DisplayName:              m.DisplayName,
		Phone:                    m.Phone,
		Role:                     m.Role,
		Status:                   m.Status,
		LastLoginAt:              m.LastLoginAt,
		Zone:                     m.Zone,
		PickupAddress:            m.PickupAddress,
		PickupLocationCode:       m.PickupLocationCode,
		PickupLocationRegistered: m.PickupLocationRegistered,
	}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain User aggregate.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Phone = u.Phone
	m.Role = u.Role
	m.Status = u.Status
	m.LastLoginAt = u.LastLoginAt
	m.Zone = u.Zone
	m.PickupAddress = u.PickupAddress
	m.PickupLocationCode = u.PickupLocationCode
	m.PickupLocationRegistered = u.PickupLocationRegistered
}

// UserModelFromDomain creates a persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
