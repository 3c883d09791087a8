package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/storage"
)

type SettingsStore struct {
	mu       sync.Mutex
	kv       storage.KV
	settings model.Settings
	logger   *log.Logger
}

func NewSettings(kv storage.KV, logger *log.Logger) *SettingsStore {
	if logger == nil {
		logger = log.Default()
	}
	return &SettingsStore{kv: kv, settings: model.DefaultSettings(), logger: logger}
}

func (s *SettingsStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = model.DefaultSettings()
	raw, err := s.kv.Get(ctx, storage.KeySettings)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("[store] load settings failed, using defaults: %v", err)
		}
		return nil
	}
	var loaded model.Settings
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.logger.Printf("[store] persisted settings are corrupt, using defaults: %v", err)
		return nil
	}
	s.settings = loaded.Normalize()
	return nil
}

func (s *SettingsStore) Get() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *SettingsStore) SetTheme(ctx context.Context, theme model.Theme) (model.Settings, error) {
	if !theme.IsValid() {
		return model.Settings{}, fmt.Errorf("%w: %q", model.ErrInvalidTheme, theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Theme = theme
	s.saveLocked(ctx)
	return s.settings, nil
}

func (s *SettingsStore) SetDark(ctx context.Context, dark bool) model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Dark = dark
	s.saveLocked(ctx)
	return s.settings
}

func (s *SettingsStore) ToggleDark(ctx context.Context) model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Dark = !s.settings.Dark
	s.saveLocked(ctx)
	return s.settings
}

func (s *SettingsStore) saveLocked(ctx context.Context) {
	b, err := json.Marshal(s.settings)
	if err != nil {
		s.logger.Printf("[store] encode settings failed: %v", err)
		return
	}
	if err := s.kv.Set(ctx, storage.KeySettings, b); err != nil {
		s.logger.Printf("[store] persist settings failed: %v", err)
	}
}
