package model

import "time"

// Role is fixed at registration.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is changed by admin block/unblock or self-service deletion.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusDeleted  UserStatus = "deleted"
)

// User represents a registered marketplace account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
}

// Actor returns the authorization view of the user.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role, Status: u.Status}
}

// Actor is the caller identity handed to the authorization guard.
type Actor struct {
	ID     int64
	Role   Role
	Status UserStatus
}

// Active reports whether actor may perform any action at all.
func (a Actor) Active() bool {
	return a.Status == UserStatusActive
}
