// Package storage provides the data persistence layer for the outlay application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidUser      = errors.New("user context has no user ID")
	ErrInvalidIcon      = errors.New("icon is not part of the icon set")
	ErrInvalidExpense   = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUser ensures the operation is scoped to a user.
func validateUser(user identity.UserContext) error {
	if strings.TrimSpace(user.UserID) == "" {
		return ErrInvalidUser
	}
	return nil
}

// validateIcon ensures the icon tag comes from the closed icon set.
func validateIcon(icon model.Icon) error {
	if !model.ValidIcon(icon) {
		return fmt.Errorf("%w: %q", ErrInvalidIcon, icon)
	}
	return nil
}

// validateExpenseInput validates the user-editable fields of an expense.
func validateExpenseInput(input service.ExpenseInput) error {
	if input.Amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidExpense)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	if strings.TrimSpace(input.CategoryName) == "" {
		return fmt.Errorf("%w: missing category name", ErrInvalidExpense)
	}
	if err := validateIcon(input.CategoryIcon); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	return nil
}
