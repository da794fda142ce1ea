package identity

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user", func(t *testing.T) {
		user, err := NewUser(" Jane Doe ", "  Jane@Example.COM ", "Password123")
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", user.FullName)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Password123"))
		assert.False(t, user.VerifyPassword("password123"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserRegisteredEvent)
		assert.True(t, ok)
	})

	tests := []struct {
		name     string
		fullName string
		email    string
		password string
		contains string
	}{
		{"empty name", "", "a@b.co", "Password123", "Full name cannot be empty"},
		{"bad email", "Jane", "not-an-email", "Password123", "Invalid email format"},
		{"empty email", "Jane", "", "Password123", "Email cannot be empty"},
		{"short password", "Jane", "a@b.co", "Pass1", "at least 8 characters"},
		{"empty password", "Jane", "a@b.co", "", "Password cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.fullName, tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestUser_LoginTracking(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)

	assert.False(t, user.RecordLoginFailure(3, time.Minute))
	assert.False(t, user.RecordLoginFailure(3, time.Minute))
	assert.True(t, user.RecordLoginFailure(3, time.Minute))
	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	past := time.Now().Add(-time.Second)
	user.LockedUntil = &past
	assert.False(t, user.IsLocked())
	assert.True(t, user.CanLogin())

	user.RecordLoginSuccess()
	assert.Equal(t, 0, user.FailedAttempts)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.NotNil(t, user.LastLoginAt)

	user.Deactivate()
	assert.False(t, user.CanLogin())
}

func TestUser_LockDisabled(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)

	for range 10 {
		assert.False(t, user.RecordLoginFailure(0, time.Minute))
	}
	assert.Equal(t, 10, user.FailedAttempts)
	assert.True(t, user.CanLogin())
}

func TestNewUser_Limits(t *testing.T) {
	_, err := NewUser(strings.Repeat("n", 201), "a@b.co", "Password123")
	assert.ErrorContains(t, err, "cannot exceed 200")

	_, err = NewUser("Jane", "a@b.co", strings.Repeat("a1", 37))
	assert.ErrorContains(t, err, "cannot exceed 72")

	for _, password := range []string{"correct-horse", "12345678", strings.Repeat("a", 72)} {
		_, err = NewUser("Jane", "a@b.co", password)
		assert.NoError(t, err, password)
	}
}
