package email

import (
	"time"

	"inquiry-backend/internal/domain"
)

// DateLayout matches the "January 2, 2006 at 03:04 PM" rendering the template expects
const DateLayout = "January 2, 2006 at 03:04 PM"

// RecaptchaParam carries the verification token to the template when present
const RecaptchaParam = "g-recaptcha-response"

// BuildTemplateParams turns an inquiry into the provider's template parameters
func BuildTemplateParams(in domain.Inquiry, at time.Time, verificationToken string) domain.TemplateParams {
	in = in.Trimmed()
	params := domain.TemplateParams{
		"date": at.Format(DateLayout),
	}
	for _, f := range domain.RequiredFields {
		params[f.Key()] = in.Value(f)
	}
	if verificationToken != "" {
		params[RecaptchaParam] = verificationToken
	}
	return params
}

// inquiryFromParams is the inverse of BuildTemplateParams for the SMTP body
func inquiryFromParams(p domain.TemplateParams) domain.Inquiry {
	return domain.Inquiry{
		Name:      p[domain.FieldName.Key()],
		Company:   p[domain.FieldCompany.Key()],
		Email:     p[domain.FieldEmail.Key()],
		Phone:     p[domain.FieldPhone.Key()],
		PolPod:    p[domain.FieldPolPod.Key()],
		Commodity: p[domain.FieldCommodity.Key()],
	}
}
