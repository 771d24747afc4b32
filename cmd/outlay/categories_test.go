package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outlayhq/outlay/internal/model"
)

func seedCLICategory(t *testing.T, dbPath string) *model.Category {
	t.Helper()

	store := openCLIStore(t, dbPath)
	defer func() { _ = store.Close() }()

	cat, err := store.CreateCategory(context.Background(), cliUser, "Coffee", model.IconFood)
	require.NoError(t, err)
	return cat
}

func findCLICategory(t *testing.T, dbPath, id string) model.Category {
	t.Helper()

	store := openCLIStore(t, dbPath)
	defer func() { _ = store.Close() }()

	categories, err := store.ListCategories(context.Background(), cliUser)
	require.NoError(t, err)
	for _, cat := range categories {
		if cat.ID == id {
			return cat
		}
	}
	t.Fatalf("category %s not found", id)
	return model.Category{}
}

func TestRenameCommandKeepsIconWhenFlagUnset(t *testing.T) {
	dbPath := configureCLI(t)
	cat := seedCLICategory(t, dbPath)

	cmd := renameCategoryCmd()
	cmd.SetArgs([]string{cat.ID, "Caffeine"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	got := findCLICategory(t, dbPath, cat.ID)
	assert.Equal(t, "Caffeine", got.Name)
	assert.Equal(t, model.IconFood, got.Icon, "rename without --icon must not retag")
}

func TestRenameCommandChangesIconWhenFlagGiven(t *testing.T) {
	dbPath := configureCLI(t)
	cat := seedCLICategory(t, dbPath)

	cmd := renameCategoryCmd()
	cmd.SetArgs([]string{cat.ID, "Caffeine", "--icon", "shopping"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	got := findCLICategory(t, dbPath, cat.ID)
	assert.Equal(t, "Caffeine", got.Name)
	assert.Equal(t, model.IconShopping, got.Icon)
}
