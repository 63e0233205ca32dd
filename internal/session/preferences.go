package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Theme is the panel colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("invalid theme %q: must be light or dark", s)
	}
}

const themeKey = "theme"

// Theme returns the stored theme of a user, defaulting to light.
func (s *Store) Theme(ctx context.Context, userID string) (Theme, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE user_id = ? AND key = ?", userID, themeKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading theme: %w", err)
	}
	if t, err := ParseTheme(v); err == nil {
		return t, nil
	}
	return ThemeLight, nil
}

// SetTheme stores the theme of a user.
func (s *Store) SetTheme(ctx context.Context, userID string, theme Theme) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, themeKey, string(theme))
	if err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}
