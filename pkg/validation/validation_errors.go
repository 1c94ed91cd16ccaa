package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Translator is the part of the locale store the formatter needs
type Translator interface {
	T(key, lang string) string
	Format(key, lang string, vars map[string]string) string
}

// FieldLabels maps struct field names to the locale keys of their labels
var FieldLabels = map[string]string{
	"Name":      "form.name",
	"Company":   "form.company",
	"Email":     "form.email",
	"Phone":     "form.phone",
	"PolPod":    "form.polPod",
	"Commodity": "form.commodity",
	"Username":  "admin.username",
	"Password":  "admin.password",
}

// FormatValidationErrors converts validator.ValidationErrors to localized messages
func FormatValidationErrors(err error, t Translator, lang string) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error (malformed JSON and the like)
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e, t, lang))
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError, t Translator, lang string) string {
	vars := map[string]string{
		"field": getFieldLabel(e.Field(), t, lang),
		"param": e.Param(),
		"tag":   e.Tag(),
	}

	key := "validation.tag." + e.Tag()
	if t.T(key, lang) == key {
		key = "validation.tag.default"
	}
	return t.Format(key, lang, vars)
}

// getFieldLabel returns the localized label for a field, without the trailing colon
func getFieldLabel(fieldName string, t Translator, lang string) string {
	key, ok := FieldLabels[fieldName]
	if !ok {
		return fieldName
	}
	label := t.T(key, lang)
	if n := len(label); n > 0 && label[n-1] == ':' {
		label = label[:n-1]
	}
	return label
}
