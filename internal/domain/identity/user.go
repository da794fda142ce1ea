// Package identity holds customer accounts. Signing in is optional on the
// storefront; an account only adds order history and staff actions.
package identity

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/emedico/backend/internal/domain/shared"
)

type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

// HashCost is the bcrypt cost for new hashes. Tests lower it.
var HashCost = 12

const (
	maxNameLen     = 200
	maxEmailLen    = 200
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type User struct {
	shared.BaseAggregateRoot
	Email          string
	FullName       string
	PasswordHash   string
	Status         UserStatus
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser validates the sign-up fields and returns an active account holding
// a UserRegistered event.
func NewUser(fullName, email, password string) (*User, error) {
	fullName = strings.TrimSpace(fullName)
	email = NormalizeEmail(email)

	switch {
	case fullName == "":
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	case len(fullName) > maxNameLen:
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot exceed 200 characters")
	case email == "":
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	case len(email) > maxEmailLen:
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	case !emailPattern.MatchString(email):
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		FullName:          fullName,
		PasswordHash:      string(hash),
		Status:            UserStatusActive,
	}
	u.AddDomainEvent(NewUserRegisteredEvent(u))
	return u, nil
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLoginSuccess clears failed attempts and lifts an expired lock.
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.Status, u.LockedUntil = UserStatusActive, nil
	}
	u.UpdatedAt = now
}

// RecordLoginFailure counts a wrong password and reports whether the account
// just got locked for lockFor. maxAttempts <= 0 never locks.
func (u *User) RecordLoginFailure(maxAttempts int, lockFor time.Duration) bool {
	now := time.Now()
	u.FailedAttempts++
	u.UpdatedAt = now
	if maxAttempts <= 0 || u.FailedAttempts < maxAttempts {
		return false
	}
	until := now.Add(lockFor)
	u.Status, u.LockedUntil = UserStatusLocked, &until
	return true
}

func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
}

// IsLocked is true while a lock has not expired. A lock without an end stays.
func (u *User) IsLocked() bool {
	return u.Status == UserStatusLocked && (u.LockedUntil == nil || time.Now().Before(*u.LockedUntil))
}

func (u *User) CanLogin() bool {
	return u.Status != UserStatusDeactivated && !u.IsLocked()
}

func checkPassword(password string) error {
	invalid := func(msg string) error { return shared.NewDomainError("INVALID_PASSWORD", msg) }
	switch {
	case password == "":
		return invalid("Password cannot be empty")
	case len(password) < minPasswordLen:
		return invalid("Password must be at least 8 characters")
	case len(password) > maxPasswordLen:
		return invalid("Password cannot exceed 72 characters")
	}
	return nil
}
