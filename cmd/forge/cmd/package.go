package cmd

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/szvest/electron-forge/internal/config"
	"github.com/szvest/electron-forge/internal/service/packager"
)

var (
	// packagePlatform is the target platform; empty means the settings default.
	packagePlatform string
	// packageArch is the target architecture; empty means the settings default.
	packageArch string
	// packageOutDir receives the staged bundle; empty means <project>/<out_dir>.
	packageOutDir string

	// packageCmd stages the application bundle through the packaging engine.
	packageCmd = &cobra.Command{
		Use:   "package [project-dir]",
		Short: "Package the application into a platform bundle.",
		Long: `Resolves the project root, validates the declared entry point and hands the
merged packaging options to the engine. Lifecycle hooks declared in the
project's forge configuration run at their respective points.

The project directory defaults to the current directory; the nearest ancestor
carrying a manifest is packaged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			platform, arch, err := resolveTarget(settings, packagePlatform, packageArch)
			if err != nil {
				return err
			}

			outDir, err := resolveOutDir(packageOutDir, projectDir(args), settings)
			if err != nil {
				return err
			}

			buildDir, err := packager.Run(ctx, &packager.Options{
				Dir:       projectDir(args),
				Platform:  platform,
				Arch:      arch,
				OutDir:    outDir,
				NpmBinary: settings.NpmBinary,
			})
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("Packaged application into %s\n", buildDir)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	packageCmd.Flags().StringVarP(&packagePlatform, "platform", "p", "", "target platform (darwin, mas, win32, linux)")
	packageCmd.Flags().StringVarP(&packageArch, "arch", "a", "", "target architecture (ia32, x64, armv7l, arm64)")
	packageCmd.Flags().StringVarP(&packageOutDir, "out", "o", "", "directory receiving the staged bundle")
	rootCmd.AddCommand(packageCmd)
}

// resolveOutDir honors an explicit flag first, then a customized settings
// directory name under the resolved project root. Empty means the service
// default.
func resolveOutDir(flagValue, dir string, settings *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if settings.OutDirName == "" || settings.OutDirName == config.DefaultOutDirName {
		return "", nil
	}

	root, err := packager.ResolveProjectDir(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(root, settings.OutDirName), nil
}
