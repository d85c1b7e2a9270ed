package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/roamly/roamly/internal/kvstore"
	log "github.com/sirupsen/logrus"
)

const ThemeKey = "theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	DefaultTheme = Light
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

func ParseTheme(value string) (Theme, error) {
	switch t := Theme(value); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidTheme, value)
	}
}

type Service struct {
	storage kvstore.Storage
}

func NewService(storage kvstore.Storage) *Service {
	return &Service{storage: storage}
}

// Theme returns the stored display theme, or DefaultTheme when none or an unknown
// one is stored. A bare unquoted value is accepted as well.
func (s *Service) Theme(ctx context.Context) (Theme, error) {
	raw, found, err := s.storage.GetItem(ctx, ThemeKey)
	if err != nil {
		return DefaultTheme, err
	}
	result := kvstore.Decode(raw, found, func(value string) error {
		_, err := ParseTheme(value)
		return err
	})
	if value, ok := result.Get(); ok {
		return Theme(value), nil
	}
	if t, err := ParseTheme(raw); err == nil {
		return t, nil
	}
	if result.Status() == kvstore.Invalid {
		log.Warnf("ignoring stored theme: %v", result.Err())
	}
	return DefaultTheme, nil
}

func (s *Service) SetTheme(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	return kvstore.SetJSON(ctx, s.storage, ThemeKey, theme)
}
