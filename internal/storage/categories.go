package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/outlayhq/outlay/internal/common"
	"github.com/outlayhq/outlay/internal/events"
	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
)

// baseCategories is the fixed set seeded for every new user before their
// first explicit category creation.
var baseCategories = []struct {
	Name string
	Icon model.Icon
}{
	{"Food", model.IconFood},
	{"Transport", model.IconTransport},
	{"Shopping", model.IconShopping},
	{"Entertainment", model.IconEntertainment},
	{"Health", model.IconHealth},
	{"Home", model.IconHome},
	{"Utilities", model.IconUtilities},
	{"Travel", model.IconTravel},
	{"Education", model.IconEducation},
	{"Other", model.IconOther},
}

// CreateCategory creates a new category for the user. The first creation for
// a user with no categories at all seeds the base set first; the explicit
// request is honored afterwards, so a name colliding with a seeded category
// fails with common.ErrDuplicateName like any other collision.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, user identity.UserContext, name string, icon model.Icon) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateIcon(icon); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	seeded, err := s.seedBaseCategoriesTx(ctx, tx, user)
	if err != nil {
		return nil, err
	}

	existing, err := categoryByNameTx(ctx, tx, user, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrDuplicateName, name)
	}

	category, err := insertCategoryTx(ctx, tx, user, name, icon)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit category: %v", common.ErrPersistence, err)
	}

	s.bus.Publish(events.CategoriesChanged)
	slog.Info("created category", "name", name, "icon", icon, "seeded_base_set", seeded)
	return category, nil
}

// ListCategories returns all categories owned by the user, ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, user identity.UserContext) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, icon, user_id, created_at
		FROM categories
		WHERE user_id = ?
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query categories: %v", common.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.UserID, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating categories: %v", common.ErrPersistence, err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "user", user.UserID)
	return categories, nil
}

// UpdateCategory renames and/or retags the category. Expenses reference the
// category by its stable ID, so they follow the updated record without
// further writes.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, user identity.UserContext, id, newName string, newIcon model.Icon) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateString(newName, "newName"); err != nil {
		return nil, err
	}
	if err := validateIcon(newIcon); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	var cat model.Category
	query := `
		SELECT id, name, icon, user_id, created_at
		FROM categories
		WHERE id = ? AND user_id = ?`
	err = tx.QueryRowContext(ctx, query, id, user.UserID).Scan(
		&cat.ID, &cat.Name, &cat.Icon, &cat.UserID, &cat.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query category: %v", common.ErrPersistence, err)
	}

	// Another category (not itself) holding the new name is a collision.
	var otherID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE user_id = ? AND name = ? AND id != ?`,
		user.UserID, newName, id,
	).Scan(&otherID)
	if err == nil {
		return nil, fmt.Errorf("%w: %q", common.ErrDuplicateName, newName)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: failed to check name collision: %v", common.ErrPersistence, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ? WHERE id = ?`,
		newName, string(newIcon), id,
	); err != nil {
		return nil, fmt.Errorf("%w: failed to update category: %v", common.ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit category update: %v", common.ErrPersistence, err)
	}

	cat.Name = newName
	cat.Icon = newIcon

	s.bus.Publish(events.CategoriesChanged)
	slog.Info("updated category", "id", id, "name", newName, "icon", newIcon)
	return &cat, nil
}

// DeleteCategory removes the category and cascades the deletion to every
// expense referencing it. A miss is a no-op, reported through the bool.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, user identity.UserContext, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateUser(user); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to begin transaction: %v", common.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expenses WHERE category_id = ? AND user_id = ?`,
		id, user.UserID,
	); err != nil {
		return false, fmt.Errorf("%w: failed to cascade expense deletion: %v", common.ErrPersistence, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`,
		id, user.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete category: %v", common.ErrPersistence, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: failed to commit category deletion: %v", common.ErrPersistence, err)
	}

	if affected == 0 {
		return false, nil
	}

	s.bus.Publish(events.CategoriesChanged)
	slog.Info("deleted category", "id", id)
	return true, nil
}

// HasExpenses reports whether any expense references the category. Used to
// warn the user before a cascading delete.
func (s *SQLiteStorage) HasExpenses(ctx context.Context, user identity.UserContext, id string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateUser(user); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM expenses WHERE category_id = ? AND user_id = ?)`,
		id, user.UserID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to query expense references: %v", common.ErrPersistence, err)
	}

	return exists, nil
}

// seedBaseCategoriesTx inserts the base category set when the user has no
// categories yet. Returns whether seeding happened.
func (s *SQLiteStorage) seedBaseCategoriesTx(ctx context.Context, tx *sql.Tx, user identity.UserContext) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ?`, user.UserID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("%w: failed to count categories: %v", common.ErrPersistence, err)
	}
	if count > 0 {
		return false, nil
	}

	for _, base := range baseCategories {
		if _, err := insertCategoryTx(ctx, tx, user, base.Name, base.Icon); err != nil {
			return false, err
		}
	}

	slog.Info("seeded base categories", "user", user.UserID, "count", len(baseCategories))
	return true, nil
}

// resolveCategoryTx implements the reuse-or-create policy shared by the
// expense write paths: prefer an exact (name, icon) match, fall back to a
// name match (name identifies the category; the icon stays as stored), and
// create the category only when the name is unknown.
func resolveCategoryTx(ctx context.Context, tx *sql.Tx, user identity.UserContext, name string, icon model.Icon) (*model.Category, error) {
	query := `
		SELECT id, name, icon, user_id, created_at
		FROM categories
		WHERE user_id = ? AND name = ?
		ORDER BY (icon = ?) DESC
		LIMIT 1`

	var cat model.Category
	err := tx.QueryRowContext(ctx, query, user.UserID, name, string(icon)).Scan(
		&cat.ID, &cat.Name, &cat.Icon, &cat.UserID, &cat.CreatedAt,
	)
	if err == nil {
		return &cat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: failed to resolve category: %v", common.ErrPersistence, err)
	}

	return insertCategoryTx(ctx, tx, user, name, icon)
}

// categoryByNameTx returns the user's category with the given name, or nil.
func categoryByNameTx(ctx context.Context, tx *sql.Tx, user identity.UserContext, name string) (*model.Category, error) {
	var cat model.Category
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, icon, user_id, created_at FROM categories WHERE user_id = ? AND name = ?`,
		user.UserID, name,
	).Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.UserID, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query category: %v", common.ErrPersistence, err)
	}
	return &cat, nil
}

func insertCategoryTx(ctx context.Context, tx *sql.Tx, user identity.UserContext, name string, icon model.Icon) (*model.Category, error) {
	category := &model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		UserID:    user.UserID,
		CreatedAt: time.Now(),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (id, name, icon, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, string(category.Icon), category.UserID, category.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("%w: failed to insert category %q: %v", common.ErrPersistence, name, err)
	}

	return category, nil
}
