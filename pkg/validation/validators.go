package validation

import (
	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_email", ValidEmail)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
}

// ValidEmail validates an email address with ClassifyEmail
func ValidEmail(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return IsEmail(val)
}

// ValidPhone validates a phone number with ClassifyPhone
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return IsPhone(val)
}
