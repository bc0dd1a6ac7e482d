package checkout

import (
	"errors"
	"regexp"
)

var (
	ErrFullNameRequired = errors.New("full name is required")
	ErrAddressRequired  = errors.New("address is required")
	ErrPhoneRequired    = errors.New("phone number is required")
	ErrPhoneInvalid     = errors.New("phone number must be 10 digits")
)

var nonDigitRegex = regexp.MustCompile(`\D`)

// Form is the shipping and payment input for an order. City and postal code
// are optional in the backend contract.
type Form struct {
	FullName      string
	Address       string
	City          string
	PostalCode    string
	Phone         string
	PaymentMethod string
}

// Validate checks required fields and returns the first violated rule.
// Phone is normalized to digits only before the length check.
func (f Form) Validate() error {
	if f.FullName == "" {
		return ErrFullNameRequired
	}
	if f.Address == "" {
		return ErrAddressRequired
	}
	if f.Phone == "" {
		return ErrPhoneRequired
	}
	if len(f.phoneDigits()) != 10 {
		return ErrPhoneInvalid
	}
	return nil
}

func (f Form) phoneDigits() string {
	return nonDigitRegex.ReplaceAllString(f.Phone, "")
}

func (f Form) paymentMethod() string {
	if f.PaymentMethod == "" {
		return "cod"
	}
	return f.PaymentMethod
}
