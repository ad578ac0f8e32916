package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError reports a user input problem on a single field.
// It blocks submission but is never fatal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// ValidateForm checks that a form can become a bookmark: the URL must be an
// absolute http(s) address and the title must not be blank.
func ValidateForm(form BookmarkForm) error {
	raw := strings.TrimSpace(form.URL)
	if raw == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return &ValidationError{Field: "url", Message: "url must be absolute"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "url must use http or https"}
	}

	if strings.TrimSpace(form.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}

	return nil
}
