// Package config loads process-wide settings from defaults, an optional
// YAML file, LONGBOARD_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/FelipeSilva10/longboard-IDE/internal/flash"
	"github.com/FelipeSilva10/longboard-IDE/internal/monitor"
)

// EnvPrefix namespaces environment overrides, e.g. LONGBOARD_FLASH_HANDOFF
const EnvPrefix = "LONGBOARD"

// FileName is the config file looked up in the home directory, without extension
const FileName = ".longboard"

// Config is the fully resolved configuration
type Config struct {
	Serial  SerialConfig      `mapstructure:"serial"`
	Monitor MonitorConfig     `mapstructure:"monitor"`
	Flash   FlashConfig       `mapstructure:"flash"`
	Boards  map[string]string `mapstructure:"boards"`
	Log     LogConfig         `mapstructure:"log"`
}

type SerialConfig struct {
	BaudRate    int           `mapstructure:"baud_rate"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type MonitorConfig struct {
	LineLimit    int           `mapstructure:"line_limit"`
	EmitInterval time.Duration `mapstructure:"emit_interval"`
	IdleInterval time.Duration `mapstructure:"idle_interval"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
}

type FlashConfig struct {
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	Handoff        string        `mapstructure:"handoff"`
	ReleaseTimeout time.Duration `mapstructure:"release_timeout"`
	CLIPath        string        `mapstructure:"cli_path"`
	SketchDir      string        `mapstructure:"sketch_dir"`
	SketchName     string        `mapstructure:"sketch_name"`
	BoardsFile     string        `mapstructure:"boards_file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// SetDefaults registers every key with its default value
func SetDefaults(v *viper.Viper) {
	v.SetDefault("serial.baud_rate", 9600)
	v.SetDefault("serial.read_timeout", 100*time.Millisecond)

	v.SetDefault("monitor.line_limit", 4000)
	v.SetDefault("monitor.emit_interval", 20*time.Millisecond)
	v.SetDefault("monitor.idle_interval", 10*time.Millisecond)
	v.SetDefault("monitor.settle_delay", 200*time.Millisecond)

	v.SetDefault("flash.settle_delay", 500*time.Millisecond)
	v.SetDefault("flash.handoff", "settle")
	v.SetDefault("flash.release_timeout", 2*time.Second)
	v.SetDefault("flash.cli_path", "arduino-cli")
	v.SetDefault("flash.sketch_dir", "")
	v.SetDefault("flash.sketch_name", flash.DefaultSketchName)
	v.SetDefault("flash.boards_file", "")

	v.SetDefault("boards", map[string]string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads path, or $HOME/.longboard.yaml when path is empty. A missing
// default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Decode resolves v into a validated Config
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is ReadFile followed by Decode on a fresh instance
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate)
	}
	if c.Monitor.LineLimit <= 0 {
		return fmt.Errorf("monitor.line_limit must be positive, got %d", c.Monitor.LineLimit)
	}
	if c.Monitor.EmitInterval < monitor.MinEmitInterval {
		return fmt.Errorf("monitor.emit_interval must be at least %v, got %v", monitor.MinEmitInterval, c.Monitor.EmitInterval)
	}
	if _, ok := flash.ParseHandoff(c.Flash.Handoff); !ok {
		return fmt.Errorf("flash.handoff must be settle or confirmed, got %q", c.Flash.Handoff)
	}
	if c.Flash.SketchName == "" {
		return errors.New("flash.sketch_name must not be empty")
	}
	// arduino-cli only builds a sketch whose file matches its directory name
	if c.Flash.SketchDir != "" && filepath.Base(c.Flash.SketchDir) != c.Flash.SketchName {
		return fmt.Errorf("flash.sketch_dir %q must end in a directory named %q", c.Flash.SketchDir, c.Flash.SketchName)
	}
	return nil
}

// Handoff returns the parsed flash.handoff value
func (c *Config) Handoff() flash.Handoff {
	h, _ := flash.ParseHandoff(c.Flash.Handoff)
	return h
}

// Workspace returns the configured sketch workspace. An empty sketch_dir
// places it under the system temp directory.
func (c *Config) Workspace() flash.Workspace {
	dir := c.Flash.SketchDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), c.Flash.SketchName)
	}
	return flash.Workspace{Dir: dir, Name: c.Flash.SketchName}
}

// BoardTable returns the default boards merged with the configured file and map
func (c *Config) BoardTable() (flash.BoardTable, error) {
	boards := flash.DefaultBoards()
	if c.Flash.BoardsFile != "" {
		var err error
		if boards, err = boards.LoadBoards(c.Flash.BoardsFile); err != nil {
			return nil, err
		}
	}
	return boards.Merge(c.Boards), nil
}
