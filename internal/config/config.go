// Package config resolves runtime settings from defaults, an optional YAML or
// TOML file, an optional .env file and PROTODO_* environment variables, in
// that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/protodo/internal/projection"
	"github.com/sandeepkv93/protodo/internal/storage"
)

const (
	DefaultDataDirName = ".protodo"
	LogFileName        = "protodo.log"
)

type FocusConfig struct {
	WorkMinutes  int `yaml:"work_minutes" toml:"work_minutes"`
	BreakMinutes int `yaml:"break_minutes" toml:"break_minutes"`
}

type Config struct {
	DataDir              string          `yaml:"data_dir" toml:"data_dir"`
	Backend              storage.Backend `yaml:"backend" toml:"backend"`
	DBPath               string          `yaml:"db_path" toml:"db_path"`
	DesktopNotifications bool            `yaml:"desktop_notifications" toml:"desktop_notifications"`
	ReminderHorizon      string          `yaml:"reminder_horizon" toml:"reminder_horizon"`
	SchedulerBuffer      int             `yaml:"scheduler_buffer" toml:"scheduler_buffer"`
	Focus                FocusConfig     `yaml:"focus" toml:"focus"`
	DefaultFilter        string          `yaml:"default_filter" toml:"default_filter"`
	DefaultSort          string          `yaml:"default_sort" toml:"default_sort"`
}

func Default() Config {
	return Config{
		DataDir:              defaultDataDir(),
		Backend:              storage.BackendSQLite,
		DesktopNotifications: true,
		ReminderHorizon:      "168h",
		SchedulerBuffer:      64,
		Focus: FocusConfig{
			WorkMinutes:  25,
			BreakMinutes: 5,
		},
		DefaultFilter: string(projection.FilterAll),
		DefaultSort:   string(projection.SortCreatedDesc),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// Resolve builds the effective configuration. path may be empty; dotenv
// files that do not exist are skipped.
func Resolve(path string, dotenv ...string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		loaded, err := Load(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := LoadDotEnv(dotenv...); err != nil {
		return cfg, err
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Load overlays the file at path onto base. The decoder is picked by the
// file extension.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return base, fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads the named .env files (".env" when none are given) without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("PROTODO_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("PROTODO_BACKEND"); ok {
		cfg.Backend = storage.Backend(strings.ToLower(v))
	}
	if v, ok := getEnvString("PROTODO_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvBool("PROTODO_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("PROTODO_REMINDER_HORIZON"); ok {
		cfg.ReminderHorizon = v
	}
	if v, ok := getEnvInt("PROTODO_FOCUS_WORK_MINUTES"); ok && v > 0 {
		cfg.Focus.WorkMinutes = v
	}
	if v, ok := getEnvInt("PROTODO_FOCUS_BREAK_MINUTES"); ok && v > 0 {
		cfg.Focus.BreakMinutes = v
	}
	if v, ok := getEnvInt("PROTODO_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString("PROTODO_DEFAULT_FILTER"); ok {
		cfg.DefaultFilter = v
	}
	if v, ok := getEnvString("PROTODO_DEFAULT_SORT"); ok {
		cfg.DefaultSort = v
	}
	return cfg
}

func (c Config) Validate() error {
	if !c.Backend.IsValid() {
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if strings.TrimSpace(c.DataDir) == "" && c.Backend != storage.BackendMemory {
		return errors.New("config: data_dir is required")
	}
	if _, err := c.Horizon(); err != nil {
		return err
	}
	if c.Focus.WorkMinutes <= 0 || c.Focus.BreakMinutes <= 0 {
		return fmt.Errorf("config: focus durations must be positive, got work=%d break=%d", c.Focus.WorkMinutes, c.Focus.BreakMinutes)
	}
	if c.SchedulerBuffer <= 0 {
		return fmt.Errorf("config: scheduler_buffer must be positive, got %d", c.SchedulerBuffer)
	}
	if _, err := projection.ParseFilter(c.DefaultFilter); err != nil {
		return fmt.Errorf("config: default_filter: %w", err)
	}
	if _, err := projection.ParseSort(c.DefaultSort); err != nil {
		return fmt.Errorf("config: default_sort: %w", err)
	}
	return nil
}

// Horizon parses ReminderHorizon as a Go duration.
func (c Config) Horizon() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.ReminderHorizon))
	if err != nil {
		return 0, fmt.Errorf("config: reminder_horizon: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: reminder_horizon must be positive, got %s", d)
	}
	return d, nil
}

func (c Config) FocusWork() time.Duration  { return time.Duration(c.Focus.WorkMinutes) * time.Minute }
func (c Config) FocusBreak() time.Duration { return time.Duration(c.Focus.BreakMinutes) * time.Minute }

func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, LogFileName)
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
