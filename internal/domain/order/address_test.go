package order

import (
	"testing"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_Validate(t *testing.T) {
	assert.NoError(t, validAddress().Validate())

	t.Run("collects every bad field", func(t *testing.T) {
		err := Address{ZipCode: "ABCDE", PhoneNumber: "x"}.Validate()
		require.Error(t, err)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_ADDRESS", de.Code)
		assert.Equal(t, "is required", de.Details["full_name"])
		assert.Equal(t, "is required", de.Details["address_line1"])
		assert.Equal(t, "is required", de.Details["city"])
		assert.Equal(t, "must be a 5 digit ZIP code", de.Details["zip_code"])
		assert.Equal(t, "is not a valid phone number", de.Details["phone_number"])
	})

	t.Run("whitespace only counts as missing", func(t *testing.T) {
		a := validAddress()
		a.City = "   "
		err := a.Validate()
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("zip plus four", func(t *testing.T) {
		a := validAddress()
		a.ZipCode = "12345-6789"
		assert.NoError(t, a.Validate())
	})
}

func TestAddress_IsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.True(t, Address{City: "  "}.IsZero())
	assert.False(t, validAddress().IsZero())
}
