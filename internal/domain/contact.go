package domain

import "strings"

// Field identifies one of the required inquiry form fields.
// The declaration order is the order fields are validated in.
type Field int

const (
	FieldName Field = iota
	FieldCompany
	FieldEmail
	FieldPhone
	FieldPolPod
	FieldCommodity
)

// RequiredFields lists every inquiry field in validation order
var RequiredFields = []Field{FieldName, FieldCompany, FieldEmail, FieldPhone, FieldPolPod, FieldCommodity}

// Key returns the form field name used by the page and the email template
func (f Field) Key() string {
	switch f {
	case FieldName:
		return "user_name"
	case FieldCompany:
		return "user_company"
	case FieldEmail:
		return "user_email"
	case FieldPhone:
		return "user_phone"
	case FieldPolPod:
		return "pol_pod"
	case FieldCommodity:
		return "commodity_description"
	}
	return "unknown"
}

// LabelKey returns the locale key of the field's form label
func (f Field) LabelKey() string {
	switch f {
	case FieldName:
		return "form.name"
	case FieldCompany:
		return "form.company"
	case FieldEmail:
		return "form.email"
	case FieldPhone:
		return "form.phone"
	case FieldPolPod:
		return "form.polPod"
	case FieldCommodity:
		return "form.commodity"
	}
	return ""
}

func (f Field) String() string {
	return f.Key()
}

// Inquiry is the six-field record a visitor submits through the contact form
type Inquiry struct {
	Name      string `json:"user_name" binding:"max=200"`
	Company   string `json:"user_company" binding:"max=200"`
	Email     string `json:"user_email" binding:"max=320"`
	Phone     string `json:"user_phone" binding:"max=40"`
	PolPod    string `json:"pol_pod" binding:"max=500"`
	Commodity string `json:"commodity_description" binding:"max=4000"`
}

// Value returns the raw value of a field
func (in Inquiry) Value(f Field) string {
	switch f {
	case FieldName:
		return in.Name
	case FieldCompany:
		return in.Company
	case FieldEmail:
		return in.Email
	case FieldPhone:
		return in.Phone
	case FieldPolPod:
		return in.PolPod
	case FieldCommodity:
		return in.Commodity
	}
	return ""
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (in Inquiry) Trimmed() Inquiry {
	return Inquiry{
		Name:      strings.TrimSpace(in.Name),
		Company:   strings.TrimSpace(in.Company),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		PolPod:    strings.TrimSpace(in.PolPod),
		Commodity: strings.TrimSpace(in.Commodity),
	}
}

// IsZero reports whether every field is empty
func (in Inquiry) IsZero() bool {
	return in == Inquiry{}
}

// Outcome is the classification of a single field value
type Outcome string

const (
	OutcomeOK            Outcome = "ok"
	OutcomeEmpty         Outcome = "empty"
	OutcomeInvalidFormat Outcome = "invalid_format"
)

// FieldError reports the first field that failed form validation
type FieldError struct {
	Field  Field
	Reason Outcome
}

func (e *FieldError) Error() string {
	return e.Field.Key() + ": " + string(e.Reason)
}

// Unwrap maps the reason onto the matching sentinel so callers can use errors.Is
func (e *FieldError) Unwrap() error {
	if e.Reason == OutcomeEmpty {
		return ErrMissingField
	}
	return ErrInvalidFormat
}

// MessageKey returns the locale key describing this failure to the visitor
func (e *FieldError) MessageKey() string {
	if e.Reason == OutcomeEmpty {
		switch e.Field {
		case FieldName:
			return "validation.nameEmpty"
		case FieldCompany:
			return "validation.companyEmpty"
		case FieldEmail:
			return "validation.emailEmpty"
		case FieldPhone:
			return "validation.phoneEmpty"
		case FieldPolPod:
			return "validation.polPodEmpty"
		case FieldCommodity:
			return "validation.commodityEmpty"
		}
	}
	switch e.Field {
	case FieldEmail:
		return "validation.emailInvalid"
	case FieldPhone:
		return "validation.phoneInvalid"
	}
	return "validation.invalid"
}
