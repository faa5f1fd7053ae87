package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/szvest/electron-forge/internal/config"
	"github.com/szvest/electron-forge/internal/logger"
	"github.com/szvest/electron-forge/internal/version"
)

var (
	// configPath to the workstation settings YAML file.
	configPath string
	// logLevel applied to all subcommands.
	logLevel string

	// rootCmd represents the base command for importing, packaging and
	// distributing desktop applications.
	rootCmd = &cobra.Command{
		Use:   "forge",
		Short: "Import, package and distribute desktop applications.",
		Long: `Forge converts existing desktop application projects into packageable ones,
stages platform bundles through the packaging engine, and turns staged builds
into distributable archives.

Workstation-level defaults (target platform, architecture, output directory,
package-manager binaries) come from a YAML settings file; every subcommand
flag overrides its corresponding setting.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level: %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the forge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to workstation settings file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}

// loadSettings reads the workstation settings behind the --config flag.
func loadSettings() (*config.Config, error) {
	return config.Load(configPath)
}

// projectDir returns the positional project directory, defaulting to the
// current directory.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return "."
}

// resolveTarget fills platform and architecture from settings when the flags
// were left empty and validates both against the supported vocabulary.
func resolveTarget(settings *config.Config, platform, arch string) (string, string, error) {
	if platform == "" {
		platform = settings.Platform
	}

	if arch == "" {
		arch = settings.Arch
	}

	if !config.SupportedPlatform(platform) {
		return "", "", fmt.Errorf("unsupported platform: %q", platform)
	}

	if !config.SupportedArch(arch) {
		return "", "", fmt.Errorf("unsupported architecture: %q", arch)
	}

	return platform, arch, nil
}
