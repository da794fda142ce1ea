package order

import (
	"regexp"
	"strings"

	"github.com/emedico/backend/internal/domain/shared"
)

var (
	zipPattern   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

// Address is the delivery address captured at checkout
type Address struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	ZipCode      string `json:"zip_code"`
	PhoneNumber  string `json:"phone_number"`
}

// Normalize returns the address with surrounding whitespace removed
func (a Address) Normalize() Address {
	return Address{
		FullName:     strings.TrimSpace(a.FullName),
		AddressLine1: strings.TrimSpace(a.AddressLine1),
		City:         strings.TrimSpace(a.City),
		ZipCode:      strings.TrimSpace(a.ZipCode),
		PhoneNumber:  strings.TrimSpace(a.PhoneNumber),
	}
}

// IsZero reports whether no field is set
func (a Address) IsZero() bool {
	return a.Normalize() == Address{}
}

// Validate checks every field, collecting one message per bad field
func (a Address) Validate() error {
	a = a.Normalize()
	details := make(map[string]string)

	if a.FullName == "" {
		details["full_name"] = "is required"
	} else if len(a.FullName) > 200 {
		details["full_name"] = "cannot exceed 200 characters"
	}
	if a.AddressLine1 == "" {
		details["address_line1"] = "is required"
	}
	if a.City == "" {
		details["city"] = "is required"
	}
	if a.ZipCode == "" {
		details["zip_code"] = "is required"
	} else if !zipPattern.MatchString(a.ZipCode) {
		details["zip_code"] = "must be a 5 digit ZIP code"
	}
	if a.PhoneNumber == "" {
		details["phone_number"] = "is required"
	} else if !phonePattern.MatchString(a.PhoneNumber) {
		details["phone_number"] = "is not a valid phone number"
	}

	if len(details) > 0 {
		return ErrInvalidAddress.WithDetails(details)
	}
	return nil
}

// ErrInvalidAddress is returned for incomplete or malformed addresses
var ErrInvalidAddress = shared.NewDomainError("INVALID_ADDRESS", "Delivery address is incomplete or invalid")
