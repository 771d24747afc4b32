package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/outlayhq/outlay/internal/config"
	"github.com/outlayhq/outlay/internal/events"
	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/settings"
	"github.com/outlayhq/outlay/internal/storage"
)

const dateLayout = "2006-01-02"

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/outlay/outlay.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Change notifications are re-fetch signals; the CLI re-reads after every
	// mutation anyway, so it only surfaces them in debug logs.
	store.Events().Subscribe(func(e events.Event) {
		slog.Debug("store changed", "event", e.String())
	})

	return store, nil
}

// requireUser resolves the current user through the identity provider.
func requireUser(ctx context.Context) (identity.UserContext, error) {
	provider := identity.NewStatic(viper.GetString("user.id"))

	userID, err := provider.CurrentUserID(ctx)
	if err != nil {
		return identity.UserContext{}, fmt.Errorf("%w (set user.id in config or pass --user)", err)
	}

	return identity.NewUserContext(userID)
}

// openSettings opens the per-user preferences store.
func openSettings() (*settings.Store, error) {
	path := viper.GetString("settings.path")
	if path == "" {
		path = "$HOME/.config/outlay/settings.yaml"
	}
	return settings.NewStore(config.ExpandPath(path))
}

// filterFlags are the filtering options shared by list and report.
type filterFlags struct {
	from       string
	to         string
	period     string
	categories []string
	all        bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "range end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.period, "period", "", "relative period (day, week, month, year)")
	cmd.Flags().StringSliceVar(&f.categories, "categories", nil, "only include these category names")
	cmd.Flags().BoolVar(&f.all, "all", false, "include all categories, ignoring any saved selection")
}

// filterState builds the FilterState from flags, falling back to the saved
// category selection when no category flag was given, and persisting the
// selection when one was.
func (f *filterFlags) filterState(cmd *cobra.Command, user identity.UserContext) (model.FilterState, error) {
	state := model.FilterState{SortDescending: true}

	period, err := model.ParsePeriod(f.period)
	if err != nil {
		return state, err
	}
	state.Period = period

	if f.from != "" || f.to != "" {
		if f.from == "" || f.to == "" {
			return state, fmt.Errorf("--from and --to must be given together")
		}
		start, parseErr := time.ParseInLocation(dateLayout, f.from, time.Local)
		if parseErr != nil {
			return state, fmt.Errorf("invalid --from date: %w", parseErr)
		}
		end, parseErr := time.ParseInLocation(dateLayout, f.to, time.Local)
		if parseErr != nil {
			return state, fmt.Errorf("invalid --to date: %w", parseErr)
		}
		// End of day so the range is inclusive of the whole end date.
		end = end.Add(24*time.Hour - time.Nanosecond)
		if end.Before(start) {
			return state, fmt.Errorf("--to must not be before --from")
		}
		state.Range = &model.DateRange{Start: start, End: end}
	}

	prefs, err := openSettings()
	if err != nil {
		return state, err
	}

	categoryFlagsGiven := cmd.Flags().Changed("categories") || cmd.Flags().Changed("all")
	if categoryFlagsGiven {
		state.Categories = f.categories
		state.AllCategories = f.all
		// Confirmation of a new selection persists it for the next session.
		if err := prefs.SaveFilterSelection(user.UserID, settings.FilterSelection{
			Categories:    state.Categories,
			AllCategories: state.AllCategories,
		}); err != nil {
			return state, err
		}
	} else {
		saved := prefs.FilterSelection(user.UserID)
		state.Categories = saved.Categories
		state.AllCategories = saved.AllCategories
	}

	return state, nil
}

// parseIcon validates an icon flag value, defaulting to the generic icon.
func parseIcon(s string) (model.Icon, error) {
	if strings.TrimSpace(s) == "" {
		return model.IconOther, nil
	}
	icon := model.Icon(s)
	if !model.ValidIcon(icon) {
		names := make([]string, len(model.Icons))
		for i, ic := range model.Icons {
			names[i] = string(ic)
		}
		return "", fmt.Errorf("invalid icon %q (valid: %s)", s, strings.Join(names, ", "))
	}
	return icon, nil
}
