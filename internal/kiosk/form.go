// internal/kiosk/form.go
package kiosk

import (
	"fmt"

	"github.com/Spartificial/project-services/internal/api"
)

// ClassLabels is the closed set of grade values the class field accepts.
var ClassLabels = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

// Form holds the five registration fields. All are required.
type Form struct {
	Name    string
	Email   string
	Phone   string
	Class   string
	Section string
}

// MissingFieldError names the first empty required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is empty", e.Field)
}

// InvalidClassError reports a class value outside the allowed grades.
type InvalidClassError struct {
	Value string
}

func (e *InvalidClassError) Error() string {
	return fmt.Sprintf("class %q is not an allowed grade", e.Value)
}

// Validate checks the fields left to right and reports the first missing
// one. The short-circuit matters: it determines which message the user
// sees first.
func (f Form) Validate() error {
	checks := []struct {
		label string
		value string
	}{
		{"Name", f.Name},
		{"Email", f.Email},
		{"Phone Number", f.Phone},
		{"Class", f.Class},
		{"Section", f.Section},
	}
	for _, check := range checks {
		if check.value == "" {
			return &MissingFieldError{Field: check.label}
		}
	}

	for _, label := range ClassLabels {
		if f.Class == label {
			return nil
		}
	}
	return &InvalidClassError{Value: f.Class}
}

// Registration converts the validated form into the client's request type.
func (f Form) Registration() api.Registration {
	return api.Registration{
		Name:    f.Name,
		Email:   f.Email,
		Phone:   f.Phone,
		Class:   f.Class,
		Section: f.Section,
	}
}
