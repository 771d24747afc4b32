package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	store, err := NewStore(path)
	require.NoError(t, err)
	return store, path
}

func TestNewStoreRejectsEmptyPath(t *testing.T) {
	_, err := NewStore("  ")
	require.Error(t, err)
}

func TestNewStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.yaml")

	_, err := NewStore(path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFilterSelectionDefault(t *testing.T) {
	store, _ := createTestStore(t)

	sel := store.FilterSelection("nobody")
	assert.True(t, sel.AllCategories, "unset users default to all categories")
	assert.Empty(t, sel.Categories)
}

func TestFilterSelectionRoundTrip(t *testing.T) {
	store, path := createTestStore(t)

	saved := FilterSelection{
		Categories:    []string{"Food", "Transport"},
		AllCategories: false,
	}
	require.NoError(t, store.SaveFilterSelection("u1", saved))

	// Same store instance.
	got := store.FilterSelection("u1")
	assert.Equal(t, saved, got)

	// Fresh store reading the file back.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	got = reopened.FilterSelection("u1")
	assert.Equal(t, saved.Categories, got.Categories)
	assert.False(t, got.AllCategories)
}

func TestFilterSelectionExplicitAllCategoriesPersists(t *testing.T) {
	store, path := createTestStore(t)

	require.NoError(t, store.SaveFilterSelection("u1", FilterSelection{AllCategories: true}))

	reopened, err := NewStore(path)
	require.NoError(t, err)
	sel := reopened.FilterSelection("u1")
	assert.True(t, sel.AllCategories)
}

func TestFilterSelectionPerUserIsolation(t *testing.T) {
	store, _ := createTestStore(t)

	require.NoError(t, store.SaveFilterSelection("u1", FilterSelection{
		Categories: []string{"Food"},
	}))
	require.NoError(t, store.SaveFilterSelection("u2", FilterSelection{
		Categories: []string{"Travel"},
	}))

	assert.Equal(t, []string{"Food"}, store.FilterSelection("u1").Categories)
	assert.Equal(t, []string{"Travel"}, store.FilterSelection("u2").Categories)
	assert.True(t, store.FilterSelection("u3").AllCategories)
}

func TestFilterSelectionUserIDWithDots(t *testing.T) {
	store, path := createTestStore(t)

	id := "user@example.com"
	require.NoError(t, store.SaveFilterSelection(id, FilterSelection{
		Categories: []string{"Health"},
	}))

	sel := store.FilterSelection(id)
	assert.Equal(t, []string{"Health"}, sel.Categories)

	reopened, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Health"}, reopened.FilterSelection(id).Categories)
}

func TestSaveFilterSelectionOverwrites(t *testing.T) {
	store, _ := createTestStore(t)

	require.NoError(t, store.SaveFilterSelection("u1", FilterSelection{
		Categories: []string{"Food", "Transport"},
	}))
	require.NoError(t, store.SaveFilterSelection("u1", FilterSelection{
		Categories: []string{"Travel"},
	}))

	sel := store.FilterSelection("u1")
	assert.Equal(t, []string{"Travel"}, sel.Categories)
}
