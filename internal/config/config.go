// Package config layers built-in defaults, a YAML file, TMUX_PROMPTS_*
// environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/tmux-prompts/internal/store"
)

// Config captures runtime configuration for the application.
type Config struct {
	Storage Storage `yaml:"storage"`
	Tmux    Tmux    `yaml:"tmux"`
	Daemon  Daemon  `yaml:"daemon"`
	Logging Logging `yaml:"logging"`
	UI      UI      `yaml:"ui"`

	// File is the config file that was read, if any.
	File  string            `yaml:"-"`
	Flags map[string]string `yaml:"-"`
	Args  []string          `yaml:"-"`
}

type Storage struct {
	Root string `yaml:"root"`
}

type Tmux struct {
	Socket      string `yaml:"socket"`
	KeyTable    string `yaml:"keyTable"`
	PopupWidth  string `yaml:"popupWidth"`
	PopupHeight string `yaml:"popupHeight"`
}

type Daemon struct {
	Socket  string        `yaml:"socket"`
	Timeout time.Duration `yaml:"timeout"`
}

type Logging struct {
	FilePath string `yaml:"file"`
	Trace    bool   `yaml:"trace"`
}

type UI struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	ShowFooter bool `yaml:"footer"`
	Verbose    bool `yaml:"verbose"`
}

const (
	envPrefix      = "TMUX_PROMPTS_"
	envConfig      = envPrefix + "CONFIG"
	envRoot        = envPrefix + "ROOT"
	envTmuxSocket  = envPrefix + "TMUX_SOCKET"
	envKeyTable    = envPrefix + "KEY_TABLE"
	envPopupWidth  = envPrefix + "POPUP_WIDTH"
	envPopupHeight = envPrefix + "POPUP_HEIGHT"
	envDaemon      = envPrefix + "DAEMON_SOCKET"
	envTimeout     = envPrefix + "TIMEOUT"
	envLogFile     = envPrefix + "LOG_FILE"
	envTrace       = envPrefix + "TRACE"
	envWidth       = envPrefix + "WIDTH"
	envHeight      = envPrefix + "HEIGHT"
	envFooter      = envPrefix + "FOOTER"
	envVerbose     = envPrefix + "VERBOSE"
)

// Flag names shared by every subcommand.
const (
	FlagConfig      = "config"
	FlagRoot        = "root"
	FlagTmuxSocket  = "tmux-socket"
	FlagKeyTable    = "key-table"
	FlagPopupWidth  = "popup-width"
	FlagPopupHeight = "popup-height"
	FlagDaemon      = "daemon-socket"
	FlagTimeout     = "timeout"
	FlagLogFile     = "log-file"
	FlagTrace       = "trace"
	FlagWidth       = "width"
	FlagHeight      = "height"
	FlagFooter      = "footer"
	FlagVerbose     = "verbose"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Tmux: Tmux{
			KeyTable:    "root",
			PopupWidth:  "60%",
			PopupHeight: "50%",
		},
		Daemon: Daemon{Timeout: 5 * time.Second},
		UI:     UI{ShowFooter: true},
	}
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(FlagConfig, "", "path to the YAML config file")
	fs.String(FlagRoot, "", "storage root (default ~/.tmux-prompts)")
	fs.String(FlagTmuxSocket, "", "path to the tmux socket (overrides environment detection)")
	fs.String(FlagKeyTable, d.Tmux.KeyTable, "tmux key table the launcher key is bound in")
	fs.String(FlagPopupWidth, d.Tmux.PopupWidth, "launcher popup width")
	fs.String(FlagPopupHeight, d.Tmux.PopupHeight, "launcher popup height")
	fs.String(FlagDaemon, "", "daemon unix socket")
	fs.Duration(FlagTimeout, d.Daemon.Timeout, "timeout for every backend and tmux call")
	fs.String(FlagLogFile, "", "path to the log file")
	fs.Bool(FlagTrace, false, "enable verbose JSON trace logging")
	fs.Int(FlagWidth, 0, "desired viewport width in cells (0 uses terminal width)")
	fs.Int(FlagHeight, 0, "desired viewport height in rows (0 uses terminal height)")
	fs.Bool(FlagFooter, d.UI.ShowFooter, "show the key hint footer")
	fs.Bool(FlagVerbose, false, "print success messages for actions")
}

// Load resolves the configuration from the config file, environ and the
// flags in fs that were set explicitly.
func Load(fs *pflag.FlagSet, environ []string) (Config, error) {
	env := parseEnv(environ)
	cfg := Defaults()

	path, explicit := configPath(fs, env)
	if path != "" {
		found, err := readFile(path, &cfg)
		if err != nil {
			return Config{}, err
		}
		if !found && explicit {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
		if found {
			cfg.File = path
		}
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}
	if err := applyFlags(&cfg, fs); err != nil {
		return Config{}, err
	}
	if err := fillDerived(&cfg, env); err != nil {
		return Config{}, err
	}

	cfg.Flags = map[string]string{}
	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			cfg.Flags[f.Name] = f.Value.String()
		})
		cfg.Args = append([]string(nil), fs.Args()...)
	}
	return cfg, nil
}

func configPath(fs *pflag.FlagSet, env map[string]string) (string, bool) {
	if fs != nil {
		if f := fs.Lookup(FlagConfig); f != nil && f.Changed {
			return f.Value.String(), true
		}
	}
	if v := env[envConfig]; v != "" {
		return v, true
	}
	base := env["XDG_CONFIG_HOME"]
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "tmux-prompts", "config.yaml"), false
}

func readFile(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return true, nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	setString(&cfg.Storage.Root, env, envRoot)
	setString(&cfg.Tmux.Socket, env, envTmuxSocket)
	setString(&cfg.Tmux.KeyTable, env, envKeyTable)
	setString(&cfg.Tmux.PopupWidth, env, envPopupWidth)
	setString(&cfg.Tmux.PopupHeight, env, envPopupHeight)
	setString(&cfg.Daemon.Socket, env, envDaemon)
	setString(&cfg.Logging.FilePath, env, envLogFile)

	if v := strings.TrimSpace(env[envTimeout]); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envTimeout, err)
		}
		cfg.Daemon.Timeout = d
	}
	for key, dst := range map[string]*int{envWidth: &cfg.UI.Width, envHeight: &cfg.UI.Height} {
		if v := strings.TrimSpace(env[key]); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*bool{
		envTrace:   &cfg.Logging.Trace,
		envFooter:  &cfg.UI.ShowFooter,
		envVerbose: &cfg.UI.Verbose,
	} {
		if v := strings.TrimSpace(env[key]); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func setString(dst *string, env map[string]string, key string) {
	if v, ok := env[key]; ok && v != "" {
		*dst = v
	}
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagRoot:
			cfg.Storage.Root, err = fs.GetString(f.Name)
		case FlagTmuxSocket:
			cfg.Tmux.Socket, err = fs.GetString(f.Name)
		case FlagKeyTable:
			cfg.Tmux.KeyTable, err = fs.GetString(f.Name)
		case FlagPopupWidth:
			cfg.Tmux.PopupWidth, err = fs.GetString(f.Name)
		case FlagPopupHeight:
			cfg.Tmux.PopupHeight, err = fs.GetString(f.Name)
		case FlagDaemon:
			cfg.Daemon.Socket, err = fs.GetString(f.Name)
		case FlagTimeout:
			cfg.Daemon.Timeout, err = fs.GetDuration(f.Name)
		case FlagLogFile:
			cfg.Logging.FilePath, err = fs.GetString(f.Name)
		case FlagTrace:
			cfg.Logging.Trace, err = fs.GetBool(f.Name)
		case FlagWidth:
			cfg.UI.Width, err = fs.GetInt(f.Name)
		case FlagHeight:
			cfg.UI.Height, err = fs.GetInt(f.Name)
		case FlagFooter:
			cfg.UI.ShowFooter, err = fs.GetBool(f.Name)
		case FlagVerbose:
			cfg.UI.Verbose, err = fs.GetBool(f.Name)
		}
	})
	return err
}

func fillDerived(cfg *Config, env map[string]string) error {
	if cfg.Storage.Root == "" {
		root, err := store.DefaultRoot()
		if err != nil {
			return err
		}
		cfg.Storage.Root = root
	}
	if cfg.Daemon.Socket == "" {
		if runtimeDir := env["XDG_RUNTIME_DIR"]; runtimeDir != "" {
			cfg.Daemon.Socket = filepath.Join(runtimeDir, "tmux-prompts.sock")
		} else {
			cfg.Daemon.Socket = filepath.Join(cfg.Storage.Root, "daemon.sock")
		}
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(cfg.Storage.Root, "tmux-prompts.log")
	}
	return nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate rejects values no component can work with.
func Validate(cfg Config) error {
	if cfg.UI.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", cfg.UI.Width)
	}
	if cfg.UI.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", cfg.UI.Height)
	}
	if cfg.Daemon.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", cfg.Daemon.Timeout)
	}
	if strings.TrimSpace(cfg.Tmux.KeyTable) == "" {
		return errors.New("key table must not be empty")
	}
	return nil
}
