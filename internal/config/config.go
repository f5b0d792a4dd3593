// Package config loads plugmerge.toml, the project manifest that names the
// source modules, the merged output and the development server to talk to.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "plugmerge.toml"

// PasswordEnv overrides [rcon].password so it can stay out of the manifest.
const PasswordEnv = "PLUGMERGE_RCON_PASSWORD"

// ErrNotFound is returned when no manifest exists in the directory chain.
var ErrNotFound = errors.New("no " + FileName + " found\nrun `plugmerge init` or pass --config path/to/" + FileName)

// Closing modes for the merged output.
const (
	ClosingReopen      = "reopen"
	ClosingWrapperOnly = "wrapper-only"
)

// Config is a decoded manifest plus where it was found.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Merge  MergeConfig  `toml:"merge"`
	RCON   RCONConfig   `toml:"rcon"`
	Reload ReloadConfig `toml:"reload"`
	Watch  WatchConfig  `toml:"watch"`
	Deploy DeployConfig `toml:"deploy"`
}

// MergeConfig describes the source modules and the merged file.
type MergeConfig struct {
	SourceDir  string   `toml:"source_dir"`
	Sources    []string `toml:"sources"`
	Primary    string   `toml:"primary"`
	Output     string   `toml:"output"`
	Namespace  string   `toml:"namespace"`
	Keyword    string   `toml:"keyword"`
	Header     string   `toml:"header"`
	HeaderFile string   `toml:"header_file"`
	Closing    string   `toml:"closing"`
}

// RCONConfig locates the development server's WebRcon endpoint.
type RCONConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	Password     string   `toml:"password"`
	PollInterval Duration `toml:"poll_interval"`
}

// ReloadConfig drives the reload test.
type ReloadConfig struct {
	Plugin        string   `toml:"plugin"`
	SuccessPhrase string   `toml:"success_phrase"`
	Wait          Duration `toml:"wait"`
}

// WatchConfig drives the hook-time watch.
type WatchConfig struct {
	Command       string   `toml:"command"`
	ListingMarker string   `toml:"listing_marker"`
	Interval      Duration `toml:"interval"`
	Debounce      Duration `toml:"debounce"`
}

// DeployConfig names the deployment script run by --DeployTest.
type DeployConfig struct {
	Script string `toml:"script"`
}

// Duration decodes TOML strings such as "1s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Find walks from startDir to the filesystem root looking for plugmerge.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the manifest at path, or searches upwards from startDir when
// path is empty.
func Discover(path, startDir string) (*Config, error) {
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		path = found
	}
	return Load(path)
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg := Default()
	meta, err := toml.DecodeFile(abs, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", abs, undecoded[0])
	}
	if !meta.IsDefined("merge") {
		return nil, fmt.Errorf("%s: missing [merge]", abs)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	cfg.loadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return cfg, nil
}

// Default returns a Config with every optional field populated.
func Default() *Config {
	return &Config{
		Merge: MergeConfig{
			SourceDir: ".",
			Namespace: "Oxide.Plugins",
			Keyword:   "namespace",
			Closing:   ClosingReopen,
		},
		RCON: RCONConfig{
			Host:         "127.0.0.1",
			Port:         28016,
			PollInterval: Duration{5 * time.Second},
		},
		Reload: ReloadConfig{
			Wait: Duration{2 * time.Second},
		},
		Watch: WatchConfig{
			Command:       "oxide.plugins",
			ListingMarker: "Listing",
			Interval:      Duration{time.Second},
			Debounce:      Duration{300 * time.Millisecond},
		},
		Deploy: DeployConfig{
			Script: "./DeployTest.sh",
		},
	}
}

func (c *Config) loadFromEnv() {
	if password := os.Getenv(PasswordEnv); password != "" {
		c.RCON.Password = password
	}
}

// Validate checks the [merge] table; remote settings are checked by
// ValidateRemote only when a remote workflow is requested.
func (c *Config) Validate() error {
	m := &c.Merge
	if len(m.Sources) == 0 {
		return errors.New("[merge].sources must list at least one file")
	}
	seen := make(map[string]struct{}, len(m.Sources))
	for _, name := range m.Sources {
		if strings.TrimSpace(name) == "" {
			return errors.New("[merge].sources contains an empty name")
		}
		if name != filepath.Base(name) {
			return fmt.Errorf("[merge].sources entry %q must be a bare file name", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("[merge].sources lists %q twice", name)
		}
		seen[name] = struct{}{}
	}
	if strings.TrimSpace(m.Primary) == "" {
		return errors.New("missing [merge].primary")
	}
	if !slices.Contains(m.Sources, m.Primary) {
		return fmt.Errorf("[merge].primary %q is not listed in [merge].sources", m.Primary)
	}
	if strings.TrimSpace(m.Output) == "" {
		return errors.New("missing [merge].output")
	}
	if strings.TrimSpace(m.Namespace) == "" {
		return errors.New("[merge].namespace must not be empty")
	}
	if strings.TrimSpace(m.Keyword) == "" {
		return errors.New("[merge].keyword must not be empty")
	}
	if m.Header != "" && m.HeaderFile != "" {
		return errors.New("[merge].header and [merge].header_file are mutually exclusive")
	}
	switch m.Closing {
	case ClosingReopen, ClosingWrapperOnly:
	default:
		return fmt.Errorf("invalid [merge].closing %q (expected %s|%s)", m.Closing, ClosingReopen, ClosingWrapperOnly)
	}
	return nil
}

// ValidateRemote checks the settings needed to reach the development server.
func (c *Config) ValidateRemote() error {
	if strings.TrimSpace(c.RCON.Host) == "" {
		return errors.New("missing [rcon].host")
	}
	if c.RCON.Port <= 0 || c.RCON.Port > 65535 {
		return fmt.Errorf("invalid [rcon].port %d", c.RCON.Port)
	}
	if c.RCON.Password == "" {
		return fmt.Errorf("missing [rcon].password (or set %s)", PasswordEnv)
	}
	if c.RCON.PollInterval.Duration <= 0 {
		return errors.New("[rcon].poll_interval must be positive")
	}
	if c.Watch.Interval.Duration <= 0 {
		return errors.New("[watch].interval must be positive")
	}
	return nil
}

// SourceDir returns the absolute source directory.
func (c *Config) SourceDir() string {
	return c.resolve(c.Merge.SourceDir)
}

// OutputPath returns the absolute path of the merged file.
func (c *Config) OutputPath() string {
	return c.resolve(c.Merge.Output)
}

// DeployScript returns the deploy script path relative to the project root.
func (c *Config) DeployScript() string {
	return c.resolve(c.Deploy.Script)
}

// StateDir is where plugmerge keeps its build record.
func (c *Config) StateDir() string {
	return filepath.Join(c.Root, ".plugmerge")
}

// HeaderText returns the static header written as the first output line.
func (c *Config) HeaderText() (string, error) {
	if c.Merge.HeaderFile == "" {
		return c.Merge.Header, nil
	}
	data, err := os.ReadFile(c.resolve(c.Merge.HeaderFile))
	if err != nil {
		return "", fmt.Errorf("failed to read [merge].header_file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// PluginName is the plugin reloaded by the reload test; it defaults to the
// primary module's base name.
func (c *Config) PluginName() string {
	if c.Reload.Plugin != "" {
		return c.Reload.Plugin
	}
	return strings.TrimSuffix(c.Merge.Primary, filepath.Ext(c.Merge.Primary))
}

// ReloadPhrase is the console line fragment that marks a successful reload.
// Unset, it names the plugin so another plugin's recompile cannot match.
func (c *Config) ReloadPhrase() string {
	if c.Reload.SuccessPhrase != "" {
		return c.Reload.SuccessPhrase
	}
	return c.PluginName() + " was compiled successfully"
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}
