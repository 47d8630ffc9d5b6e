// Package config loads the service configuration from YAML, environment
// variables (QA_ prefix) and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"quantumassembler/internal/archive"
	"quantumassembler/internal/core"
	"quantumassembler/internal/logs"
	"quantumassembler/internal/persistence"
)

// DefaultRelPath is searched for from the working directory upwards when no
// explicit path is given.
const DefaultRelPath = "configs/quantum-assembler.yml"

const envPrefix = "QA"

// Config is the full service configuration.
type Config struct {
	Log     logs.Config        `mapstructure:"log"`
	Storage persistence.Config `mapstructure:"storage"`
	Archive archive.Config     `mapstructure:"archive"`
	Balance core.Balance       `mapstructure:"balance"`
	Game    GameConfig         `mapstructure:"game"`
	HTTP    HTTPConfig         `mapstructure:"http"`
}

// GameConfig controls the simulation loop.
type GameConfig struct {
	GridX    int           `mapstructure:"grid_x"`
	GridY    int           `mapstructure:"grid_y"`
	MaxGrid  int           `mapstructure:"max_grid"`
	Tick     time.Duration `mapstructure:"tick"`
	Autosave time.Duration `mapstructure:"autosave"`
}

// HTTPConfig controls the debug API.
type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	Mode    string `mapstructure:"mode"`
	Enabled bool   `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	b := core.DefaultBalance()
	defaults := map[string]any{
		"log.level":       "info",
		"log.file":        "",
		"log.max_size":    10,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    false,
		"log.dev":         false,

		"storage.driver":         string(persistence.DriverSQLite),
		"storage.sqlite_path":    "quantum-assembler.db",
		"storage.postgres_dsn":   "",
		"storage.mongo_uri":      "",
		"storage.mongo_database": "quantum_assembler",
		"storage.mysql_dsn":      "",
		"storage.slot":           "default",

		"archive.driver":        string(archive.DriverFilesystem),
		"archive.root":          "archive",
		"archive.prefix":        "saves/",
		"archive.s3_bucket":     "",
		"archive.s3_region":     "us-east-1",
		"archive.s3_endpoint":   "",
		"archive.s3_path_style": false,

		"balance.charm_generation":  b.CharmGeneration,
		"balance.charm_instability": b.CharmInstability,
		"balance.up_generation":     b.UpGeneration,
		"balance.up_instability":    b.UpInstability,
		"balance.down_instability":  b.DownInstability,

		"game.grid_x":   core.DefaultGridSize,
		"game.grid_y":   core.DefaultGridSize,
		"game.max_grid": core.MaxGridSize,
		"game.tick":     "1s",
		"game.autosave": "30s",

		"http.enabled": true,
		"http.addr":    "127.0.0.1:8080",
		"http.mode":    "release",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Game.GridX <= 0 || c.Game.GridY <= 0 {
		errs = append(errs, fmt.Errorf("game grid %dx%d must be positive", c.Game.GridX, c.Game.GridY))
	}
	if c.Game.MaxGrid <= 0 {
		errs = append(errs, fmt.Errorf("game max_grid %d must be positive", c.Game.MaxGrid))
	} else if c.Game.GridX > c.Game.MaxGrid || c.Game.GridY > c.Game.MaxGrid {
		errs = append(errs, fmt.Errorf("game grid %dx%d exceeds max_grid %d", c.Game.GridX, c.Game.GridY, c.Game.MaxGrid))
	}
	if c.Game.Tick <= 0 {
		errs = append(errs, fmt.Errorf("game tick %s must be positive", c.Game.Tick))
	}
	if c.Game.Autosave < 0 {
		errs = append(errs, fmt.Errorf("game autosave %s must not be negative", c.Game.Autosave))
	}
	return errors.Join(errs...)
}

// Loader owns the viper instance and the last successfully decoded Config.
type Loader struct {
	v    *viper.Viper
	path string

	mu  sync.RWMutex
	cfg Config
}

// Load reads path, or the first configs/quantum-assembler.yml found walking
// up from the working directory. When no file is found only defaults and
// environment overrides apply.
func Load(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = findUpward(wd, DefaultRelPath)
		}
	} else if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = abs
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	l := &Loader{v: v, path: path}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Path returns the file the configuration was read from, if any.
func (l *Loader) Path() string { return l.path }

// Watch calls fn whenever the config file changes. Decode failures are
// passed to fn and keep the previous Config in place. Without a file Watch
// does nothing.
func (l *Loader) Watch(fn func(Config, error)) {
	if l.path == "" || fn == nil {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			fn(l.Config(), err)
			return
		}
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		fn(cfg, nil)
	})
	l.v.WatchConfig()
}

func findUpward(start, rel string) string {
	dir := start
	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
