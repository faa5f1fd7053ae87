package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config holds workstation-level defaults shared by the forge subcommands.
// It is optional: when the settings file does not exist, Default() applies.
type Config struct {
	// Platform is the default packaging target platform (darwin, mas, win32, linux).
	Platform string `yaml:"platform"`
	// Arch is the default packaging target architecture (ia32, x64, armv7l, arm64, all).
	Arch string `yaml:"arch"`
	// OutDirName is the directory name (relative to the project) receiving packaged output.
	OutDirName string `yaml:"out_dir"`
	// NpmBinary is the package-manager executable used for installs and pruning.
	NpmBinary string `yaml:"npm_binary"`
	// GitBinary is the git executable used to initialize imported projects.
	GitBinary string `yaml:"git_binary"`
}

const (
	// DefaultConfigFilename is the default filename for forge workstation settings.
	DefaultConfigFilename = "forge-settings.yaml"

	// DefaultOutDirName is the default output directory name inside a project.
	DefaultOutDirName = "out"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")

	// supportedPlatforms enumerates packaging targets the engine understands.
	supportedPlatforms = map[string]struct{}{
		"darwin": {}, "mas": {}, "win32": {}, "linux": {}, "all": {},
	}

	// supportedArchitectures enumerates CPU targets the engine understands.
	supportedArchitectures = map[string]struct{}{
		"ia32": {}, "x64": {}, "armv7l": {}, "arm64": {}, "all": {},
	}
)

// Default returns settings for a workstation without a settings file.
func Default() *Config {
	return &Config{
		Platform:   hostPlatform(),
		Arch:       hostArch(),
		OutDirName: DefaultOutDirName,
		NpmBinary:  "npm",
		GitBinary:  "git",
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills in defaults.
// Default filling merges the host defaults into fields left empty.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := mergo.Merge(cfg, Default()); err != nil {
		return fmt.Errorf("apply default settings: %w", err)
	}

	if _, ok := supportedPlatforms[cfg.Platform]; !ok {
		return fmt.Errorf("unsupported platform: %q", cfg.Platform)
	}

	if _, ok := supportedArchitectures[cfg.Arch]; !ok {
		return fmt.Errorf("unsupported architecture: %q", cfg.Arch)
	}

	return nil
}

// SupportedPlatform reports whether the engine can target the given platform.
func SupportedPlatform(platform string) bool {
	_, ok := supportedPlatforms[platform]
	return ok
}

// SupportedArch reports whether the engine can target the given architecture.
func SupportedArch(arch string) bool {
	_, ok := supportedArchitectures[arch]
	return ok
}

// hostPlatform maps the Go runtime OS onto the packaging platform vocabulary.
func hostPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "darwin":
		return "darwin"
	default:
		return "linux"
	}
}

// hostArch maps the Go runtime architecture onto the packaging vocabulary.
func hostArch() string {
	switch runtime.GOARCH {
	case "386":
		return "ia32"
	case "arm":
		return "armv7l"
	case "arm64":
		return "arm64"
	default:
		return "x64"
	}
}
