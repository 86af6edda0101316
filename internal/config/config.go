// Package config loads gtdflow settings from a TOML file and GTDFLOW_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/storage"
)

const (
	AppDirName            = "gtdflow"
	DefaultConfigFileName = "config.toml"
	DefaultStoreFileName  = "store.md"
	DefaultDBName         = "gtdflow.db"
	DefaultListen         = ":3000"
)

type Store string

const (
	StoreFile   Store = "file"
	StoreSQLite Store = "sqlite"
	StoreHTTP   Store = "http"
)

func (s Store) IsValid() bool {
	switch s {
	case StoreFile, StoreSQLite, StoreHTTP:
		return true
	default:
		return false
	}
}

type UI struct {
	DesktopNotifications bool `toml:"desktop_notifications"`
	FocusWorkMinutes     int  `toml:"focus_work_minutes"`
	FocusBreakMinutes    int  `toml:"focus_break_minutes"`
	ReminderLeadMinutes  int  `toml:"reminder_lead_minutes"`
	SchedulerBuffer      int  `toml:"scheduler_buffer"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type Config struct {
	Store                 Store  `toml:"store"`
	File                  string `toml:"file"`
	DBPath                string `toml:"db_path"`
	SyncURL               string `toml:"sync_url"`
	Lang                  string `toml:"lang"`
	Timezone              string `toml:"timezone"`
	Listen                string `toml:"listen"`
	StorageTimeoutSeconds int    `toml:"storage_timeout_seconds"`
	UI                    UI     `toml:"ui"`
	Log                   Log    `toml:"log"`
}

// Dir is the per-user directory holding the config and default store.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = "."
	}
	return filepath.Join(base, AppDirName)
}

func DefaultPath() string {
	return filepath.Join(Dir(), DefaultConfigFileName)
}

func Default() Config {
	dir := Dir()
	return Config{
		Store:                 StoreFile,
		File:                  filepath.Join(dir, DefaultStoreFileName),
		DBPath:                filepath.Join(dir, DefaultDBName),
		Lang:                  string(model.LangEnglish),
		Listen:                DefaultListen,
		StorageTimeoutSeconds: 10,
		UI: UI{
			DesktopNotifications: false,
			FocusWorkMinutes:     25,
			FocusBreakMinutes:    5,
			ReminderLeadMinutes:  10,
			SchedulerBuffer:      64,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. A missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg.normalize(), nil
}

// LoadOrCreate writes the defaults to path on first run.
func LoadOrCreate(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return Load(path)
}

func Write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// normalize replaces out-of-range values with defaults.
func (c Config) normalize() Config {
	def := Default()
	if !c.Store.IsValid() {
		c.Store = def.Store
	}
	if strings.TrimSpace(c.File) == "" {
		c.File = def.File
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = def.DBPath
	}
	c.Lang = string(model.ParseLanguage(c.Lang))
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = def.Listen
	}
	if c.StorageTimeoutSeconds <= 0 {
		c.StorageTimeoutSeconds = def.StorageTimeoutSeconds
	}
	if c.UI.FocusWorkMinutes <= 0 {
		c.UI.FocusWorkMinutes = def.UI.FocusWorkMinutes
	}
	if c.UI.FocusBreakMinutes <= 0 {
		c.UI.FocusBreakMinutes = def.UI.FocusBreakMinutes
	}
	if c.UI.ReminderLeadMinutes < 0 {
		c.UI.ReminderLeadMinutes = def.UI.ReminderLeadMinutes
	}
	if c.UI.SchedulerBuffer <= 0 {
		c.UI.SchedulerBuffer = def.UI.SchedulerBuffer
	}
	return c
}

// FromEnv applies GTDFLOW_* overrides.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("GTDFLOW_STORE"); ok {
		cfg.Store = Store(strings.ToLower(v))
	}
	if v, ok := getEnvString("GTDFLOW_FILE"); ok {
		cfg.File = v
	}
	if v, ok := getEnvString("GTDFLOW_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := getEnvString("GTDFLOW_SYNC_URL"); ok {
		cfg.SyncURL = v
	}
	if v, ok := getEnvString("GTDFLOW_LANG"); ok {
		cfg.Lang = v
	}
	if v, ok := getEnvString("GTDFLOW_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnvString("GTDFLOW_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := getEnvInt("GTDFLOW_STORAGE_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.StorageTimeoutSeconds = v
	}
	if v, ok := getEnvBool("GTDFLOW_DESKTOP_NOTIFICATIONS"); ok {
		cfg.UI.DesktopNotifications = v
	}
	if v, ok := getEnvInt("GTDFLOW_FOCUS_WORK_MINUTES"); ok && v > 0 {
		cfg.UI.FocusWorkMinutes = v
	}
	if v, ok := getEnvInt("GTDFLOW_FOCUS_BREAK_MINUTES"); ok && v > 0 {
		cfg.UI.FocusBreakMinutes = v
	}
	if v, ok := getEnvInt("GTDFLOW_REMINDER_LEAD_MINUTES"); ok && v >= 0 {
		cfg.UI.ReminderLeadMinutes = v
	}
	if v, ok := getEnvInt("GTDFLOW_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.UI.SchedulerBuffer = v
	}
	if v, ok := getEnvString("GTDFLOW_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnvString("GTDFLOW_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := getEnvString("GTDFLOW_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	return cfg.normalize()
}

func (c Config) Language() model.Language {
	return model.ParseLanguage(c.Lang)
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) StorageTimeout() time.Duration {
	return time.Duration(c.StorageTimeoutSeconds) * time.Second
}

func (c Config) ReminderLead() time.Duration {
	return time.Duration(c.UI.ReminderLeadMinutes) * time.Minute
}

// OpenBackend builds the configured backend. The returned close func must
// be called when done.
func OpenBackend(c Config) (storage.Backend, func() error, error) {
	noop := func() error { return nil }
	switch c.Store {
	case StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
			return nil, noop, fmt.Errorf("config: create db dir: %w", err)
		}
		store, err := storage.OpenSQLite(c.DBPath, c.Language())
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case StoreHTTP:
		b, err := storage.NewHTTPBackend(c.SyncURL, c.StorageTimeout())
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case StoreFile, "":
		b, err := storage.NewFileBackend(c.File, c.Language())
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	default:
		return nil, noop, fmt.Errorf("config: unknown store %q", c.Store)
	}
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
