package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired valida que un campo no esté vacío
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMinLength valida la longitud mínima de un string
func ValidateMinLength(value string, minLength int, fieldName string) error {
	if utf8.RuneCountInString(value) < minLength {
		return fmt.Errorf("%s must be at least %d characters long", fieldName, minLength)
	}
	return nil
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateUUID valida que un string sea un UUID válido
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// ValidateBudgetRange checks an optional min/max budget pair. Both
// bounds share the event currency; a bound of nil means "no limit".
func ValidateBudgetRange(minBudget, maxBudget *int) error {
	if minBudget != nil && *minBudget < 0 {
		return errors.New("min_budget cannot be negative")
	}
	if maxBudget != nil && *maxBudget < 0 {
		return errors.New("max_budget cannot be negative")
	}
	if minBudget != nil && maxBudget != nil && *minBudget > *maxBudget {
		return errors.New("min_budget cannot exceed max_budget")
	}
	return nil
}

// ValidateEventDate rejects event dates in the past
func ValidateEventDate(eventDate *time.Time) error {
	if eventDate == nil {
		return nil
	}
	if eventDate.Before(time.Now().Add(-24 * time.Hour)) {
		return errors.New("event_date cannot be in the past")
	}
	return nil
}

// EventValidation contiene validaciones específicas para eventos
type EventValidation struct{}

// ValidateEventName valida el nombre de un evento
func (v EventValidation) ValidateEventName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	if err := ValidateMaxLength(name, 255, "name"); err != nil {
		return err
	}
	return nil
}

// WishlistValidation contiene validaciones específicas para wishlist items
type WishlistValidation struct{}

// ValidateTitle valida el título de un item
func (v WishlistValidation) ValidateTitle(title string) error {
	if err := ValidateRequired(title, "title"); err != nil {
		return err
	}
	if err := ValidateMaxLength(title, 255, "title"); err != nil {
		return err
	}
	return nil
}
