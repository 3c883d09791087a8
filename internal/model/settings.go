package model

import (
	"fmt"
	"strings"
)

var ErrInvalidTheme = fmt.Errorf("%w: invalid theme", ErrValidation)

type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeGreen   Theme = "green"
	ThemeOrange  Theme = "orange"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeDefault, ThemeGreen, ThemeOrange:
		return true
	default:
		return false
	}
}

func ParseTheme(raw string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
	return t, nil
}

type Settings struct {
	Dark  bool  `json:"dark"`
	Theme Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{Dark: false, Theme: ThemeDefault}
}

// Normalize replaces an unknown theme with the default one.
func (s Settings) Normalize() Settings {
	if !s.Theme.IsValid() {
		s.Theme = ThemeDefault
	}
	return s
}
