package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nanoreddit-ui-autotests/internal/models"
)

// MinPasswordLength is the shortest password the forum accepts
const MinPasswordLength = 8

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is a list of validation errors reported together
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Error())
	}
	return strings.Join(parts, "; ")
}

// Validator checks request payloads against their struct tags and keeps a
// per-batch cache of registered emails
type Validator struct {
	validate *validator.Validate

	mu             sync.Mutex
	userEmailCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// registration only fails for an empty tag
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	return &Validator{
		validate:       v,
		userEmailCache: make(map[string]bool),
	}
}

// AddUserEmail adds an email to the uniqueness cache
func (v *Validator) AddUserEmail(email string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.userEmailCache[strings.ToLower(email)] = true
}

// Validate checks any tagged payload and returns one error per failed field
func (v *Validator) Validate(payload interface{}) []ValidationError {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "payload", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

// ValidateRegistration validates a register payload and rejects emails
// already seen in the current batch
func (v *Validator) ValidateRegistration(user *models.RegisterUser) []ValidationError {
	errs := v.Validate(user)

	if user.Email != "" {
		v.mu.Lock()
		seen := v.userEmailCache[strings.ToLower(user.Email)]
		v.mu.Unlock()
		if seen {
			errs = append(errs, ValidationError{Field: "email", Message: "duplicate email", Value: user.Email})
		}
	}

	return errs
}

// IsStrongPassword reports whether password has the minimum length and
// contains an upper case letter, a lower case letter and a digit
func IsStrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email format"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "password":
		return fmt.Sprintf("password must be at least %d characters with upper case, lower case and a digit", MinPasswordLength)
	default:
		return fmt.Sprintf("%s failed %q check", fe.Field(), fe.Tag())
	}
}
