package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/outlayhq/outlay/internal/common"
	"github.com/outlayhq/outlay/internal/events"
	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/service"
)

const expenseColumns = `
	e.id, e.amount, e.date, e.note, e.category_id, e.user_id, e.created_at,
	c.name, c.icon`

// CreateExpense resolves the category (reuse-or-create) and inserts the
// expense in a single transaction. A failed write leaves no partial record.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, user identity.UserContext, input service.ExpenseInput) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	category, err := resolveCategoryTx(ctx, tx, user, input.CategoryName, input.CategoryIcon)
	if err != nil {
		return nil, err
	}

	expense := &model.Expense{
		ID:           uuid.NewString(),
		Amount:       input.Amount,
		Date:         input.Date,
		Note:         input.Note,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CategoryIcon: category.Icon,
		UserID:       user.UserID,
		CreatedAt:    time.Now(),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, date, note, category_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Amount.String(), expense.Date, expense.Note,
		expense.CategoryID, expense.UserID, expense.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("%w: failed to insert expense: %v", common.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit expense: %v", common.ErrPersistence, err)
	}

	s.bus.Publish(events.ExpensesChanged)
	slog.Info("created expense",
		"id", expense.ID,
		"amount", expense.Amount.String(),
		"category", category.Name)
	return expense, nil
}

// UpdateExpense replaces all editable fields atomically. The new category is
// resolved with the same reuse-or-create policy as creation.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, user identity.UserContext, id string, input service.ExpenseInput) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM expenses WHERE id = ? AND user_id = ?`,
		id, user.UserID,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query expense: %v", common.ErrPersistence, err)
	}

	category, err := resolveCategoryTx(ctx, tx, user, input.CategoryName, input.CategoryIcon)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, date = ?, note = ?, category_id = ? WHERE id = ? AND user_id = ?`,
		input.Amount.String(), input.Date, input.Note, category.ID, id, user.UserID,
	); err != nil {
		return nil, fmt.Errorf("%w: failed to update expense: %v", common.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit expense update: %v", common.ErrPersistence, err)
	}

	expense := &model.Expense{
		ID:           id,
		Amount:       input.Amount,
		Date:         input.Date,
		Note:         input.Note,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CategoryIcon: category.Icon,
		UserID:       user.UserID,
		CreatedAt:    createdAt,
	}

	s.bus.Publish(events.ExpensesChanged)
	slog.Info("updated expense", "id", id, "category", category.Name)
	return expense, nil
}

// DeleteExpense removes the expense. Unlike category deletion, deleting an
// expense that no longer exists is an error: the caller is holding a stale
// view and should refresh.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, user identity.UserContext, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`,
		id, user.UserID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to delete expense: %v", common.ErrPersistence, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}

	s.bus.Publish(events.ExpensesChanged)
	slog.Info("deleted expense", "id", id)
	return nil
}

// ListAll returns every expense owned by the user, ordered by date descending.
func (s *SQLiteStorage) ListAll(ctx context.Context, user identity.UserContext) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ?
		ORDER BY e.date DESC`

	rows, err := s.db.QueryContext(ctx, query, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query expenses: %v", common.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

// ListInRange returns the user's expenses with date in [start, end]
// inclusive, ordered by date descending.
func (s *SQLiteStorage) ListInRange(ctx context.Context, user identity.UserContext, start, end time.Time) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	query := `
		SELECT ` + expenseColumns + `
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		ORDER BY e.date DESC`

	rows, err := s.db.QueryContext(ctx, query, user.UserID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query expenses in range: %v", common.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]model.Expense, error) {
	var expenses []model.Expense
	for rows.Next() {
		var (
			exp          model.Expense
			amount       string
			categoryName sql.NullString
			categoryIcon sql.NullString
		)
		if err := rows.Scan(
			&exp.ID, &amount, &exp.Date, &exp.Note, &exp.CategoryID,
			&exp.UserID, &exp.CreatedAt, &categoryName, &categoryIcon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
		}
		exp.Amount = parsed
		exp.CategoryName = categoryName.String
		exp.CategoryIcon = model.Icon(categoryIcon.String)

		expenses = append(expenses, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating expenses: %v", common.ErrPersistence, err)
	}

	return expenses, nil
}
