// Package settings persists small per-user preferences across sessions,
// currently the last confirmed category filter selection.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/outlayhq/outlay/internal/common"
)

// FilterSelection is the persisted part of the filter state: the category
// allow-list and the all-categories flag. The rest of the filter state is
// session-scoped and deliberately not stored.
type FilterSelection struct {
	Categories    []string
	AllCategories bool
}

// Store reads and writes preferences to a YAML file.
type Store struct {
	v    *viper.Viper
	path string
}

// NewStore opens (or prepares to create) the settings file at path.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: settings path cannot be empty", common.ErrMissingConfig)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// A missing file just means no preferences saved yet.
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	return &Store{v: v, path: path}, nil
}

// FilterSelection returns the saved selection for the user. A user with
// nothing saved gets the unfiltered default (all categories).
func (s *Store) FilterSelection(userID string) FilterSelection {
	prefix := userKey(userID)

	if !s.v.IsSet(prefix + ".all_categories") {
		return FilterSelection{AllCategories: true}
	}

	return FilterSelection{
		Categories:    s.v.GetStringSlice(prefix + ".categories"),
		AllCategories: s.v.GetBool(prefix + ".all_categories"),
	}
}

// SaveFilterSelection persists the selection, replacing any previous one.
func (s *Store) SaveFilterSelection(userID string, sel FilterSelection) error {
	prefix := userKey(userID)

	s.v.Set(prefix+".categories", sel.Categories)
	s.v.Set(prefix+".all_categories", sel.AllCategories)

	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// userKey builds the per-user key prefix. Dots would split viper keys, so
// they are replaced.
func userKey(userID string) string {
	return "filters." + strings.ReplaceAll(userID, ".", "_")
}
