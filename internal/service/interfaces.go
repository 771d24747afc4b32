// Package service defines the interfaces for the application's services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
)

// ExpenseInput carries the user-editable fields of an expense. The category
// is referenced by name and icon: the store resolves it to an existing
// record when one matches, and creates it otherwise.
type ExpenseInput struct {
	Date         time.Time
	Note         string
	CategoryName string
	CategoryIcon model.Icon
	Amount       decimal.Decimal
}

// CategoryStore is the contract for durable category storage, scoped per user.
type CategoryStore interface {
	// CreateCategory creates a new category, seeding the base set first when
	// the user has none. Fails with common.ErrDuplicateName on collision.
	CreateCategory(ctx context.Context, user identity.UserContext, name string, icon model.Icon) (*model.Category, error)
	// ListCategories returns every category owned by the user.
	ListCategories(ctx context.Context, user identity.UserContext) ([]model.Category, error)
	// UpdateCategory renames and/or retags a category. Referencing expenses
	// follow the updated record.
	UpdateCategory(ctx context.Context, user identity.UserContext, id, newName string, newIcon model.Icon) (*model.Category, error)
	// DeleteCategory removes a category and every expense referencing it.
	// Returns whether a matching category was found; a miss is not an error.
	DeleteCategory(ctx context.Context, user identity.UserContext, id string) (bool, error)
	// HasExpenses reports whether any expense references the category.
	HasExpenses(ctx context.Context, user identity.UserContext, id string) (bool, error)
}

// ExpenseStore is the contract for durable expense storage, scoped per user.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, user identity.UserContext, input ExpenseInput) (*model.Expense, error)
	// UpdateExpense replaces all editable fields atomically. Fails with
	// common.ErrNotFound when the expense no longer exists.
	UpdateExpense(ctx context.Context, user identity.UserContext, id string, input ExpenseInput) (*model.Expense, error)
	DeleteExpense(ctx context.Context, user identity.UserContext, id string) error
	// ListAll returns every expense owned by the user.
	ListAll(ctx context.Context, user identity.UserContext) ([]model.Expense, error)
	// ListInRange returns the user's expenses with date in [start, end]
	// inclusive, ordered by date descending.
	ListInRange(ctx context.Context, user identity.UserContext, start, end time.Time) ([]model.Expense, error)
}

// Store is the full persistence contract consumed by the CLI.
type Store interface {
	CategoryStore
	ExpenseStore

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}
