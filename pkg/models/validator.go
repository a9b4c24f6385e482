package models

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9][0-9 .-]{6,17}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
	ibanPattern       = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`)
)

const minNameLength = 2

func ValidateEmailAddress(email string) error {
	_, err := mail.ParseAddress(email)
	if err != nil {
		return &InputValidationError{
			Message: "email address appeared to be invalid or can't be used",
			Field:   "email",
			Tag:     "bad_email",
		}
	}

	return nil
}

func ValidatePhoneNumber(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return &InputValidationError{
			Message: "phone number appeared to be invalid",
			Field:   "phone",
			Tag:     "bad_phone",
		}
	}

	return nil
}

func ValidatePostalCode(postalCode string) error {
	if !postalCodePattern.MatchString(strings.TrimSpace(postalCode)) {
		return &InputValidationError{
			Message: "postal code must be exactly 5 digits",
			Field:   "addressPostalCode",
			Tag:     "bad_postal_code",
		}
	}

	return nil
}

// ValidateIBAN checks the country-prefixed bank identifier shape after
// whitespace normalization.
func ValidateIBAN(iban string) error {
	normalized := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if !ibanPattern.MatchString(normalized) {
		return &InputValidationError{
			Message: "bank account identifier appeared to be invalid",
			Field:   "iban",
			Tag:     "bad_iban",
		}
	}

	return nil
}

func ValidatePersonName(field, name string) error {
	if len(strings.TrimSpace(name)) < minNameLength {
		return &InputValidationError{
			Message: field + " is required and must be at least 2 characters",
			Field:   field,
			Tag:     "too_short",
		}
	}

	return nil
}

func ValidateDateOfBirth(day, month, year int) error {
	invalid := &InputValidationError{
		Message: "date of birth appeared to be invalid",
		Field:   "dob",
		Tag:     "bad_dob",
	}

	if year < 1900 || month < 1 || month > 12 || day < 1 || day > 31 {
		return invalid
	}

	dob := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if dob.Day() != day || dob.After(time.Now()) {
		return invalid
	}

	return nil
}

// ValidateOnboardingRequest runs every per-field validator and returns
// the first failure. The request must never reach the provider when any
// field is malformed.
func ValidateOnboardingRequest(req *OnboardingRequest) error {
	if err := ValidatePersonName("firstName", req.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("lastName", req.LastName); err != nil {
		return err
	}
	if err := ValidateEmailAddress(req.Email); err != nil {
		return err
	}
	if err := ValidatePhoneNumber(req.Phone); err != nil {
		return err
	}
	if err := ValidateDateOfBirth(req.DobDay, req.DobMonth, req.DobYear); err != nil {
		return err
	}
	if err := ValidatePersonName("addressLine1", req.AddressLine1); err != nil {
		return err
	}
	if err := ValidatePersonName("addressCity", req.AddressCity); err != nil {
		return err
	}
	if err := ValidatePostalCode(req.AddressPostalCode); err != nil {
		return err
	}
	if err := ValidateIBAN(req.IBAN); err != nil {
		return err
	}

	return nil
}
