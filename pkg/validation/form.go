package validation

import "inquiry-backend/internal/domain"

// ValidateForm checks the inquiry fields and returns the first failure, or nil.
// Every field is checked for emptiness (in declaration order) before any format
// check runs, so an empty field always wins over a malformed one.
func ValidateForm(input domain.Inquiry) *domain.FieldError {
	in := input.Trimmed()

	for _, f := range domain.RequiredFields {
		if in.Value(f) == "" {
			return &domain.FieldError{Field: f, Reason: domain.OutcomeEmpty}
		}
	}

	if ClassifyEmail(in.Email) != domain.OutcomeOK {
		return &domain.FieldError{Field: domain.FieldEmail, Reason: domain.OutcomeInvalidFormat}
	}
	if ClassifyPhone(in.Phone) != domain.OutcomeOK {
		return &domain.FieldError{Field: domain.FieldPhone, Reason: domain.OutcomeInvalidFormat}
	}

	return nil
}

// Classify returns the outcome of every field, in declaration order
func Classify(input domain.Inquiry) map[domain.Field]domain.Outcome {
	in := input.Trimmed()
	out := make(map[domain.Field]domain.Outcome, len(domain.RequiredFields))
	for _, f := range domain.RequiredFields {
		v := in.Value(f)
		switch {
		case v == "":
			out[f] = domain.OutcomeEmpty
		case f == domain.FieldEmail:
			out[f] = ClassifyEmail(v)
		case f == domain.FieldPhone:
			out[f] = ClassifyPhone(v)
		default:
			out[f] = domain.OutcomeOK
		}
	}
	return out
}
