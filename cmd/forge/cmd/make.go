package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/szvest/electron-forge/internal/service/maker"
)

var (
	// makePlatform is the target platform; empty means the settings default.
	makePlatform string
	// makeArch is the target architecture; empty means the settings default.
	makeArch string
	// makeOutDir receives the staged bundle; empty means <project>/<out_dir>.
	makeOutDir string
	// makeTargets overrides the configured target list when non-empty.
	makeTargets []string

	// makeCmd packages the application and archives the staged build.
	makeCmd = &cobra.Command{
		Use:   "make [project-dir]",
		Short: "Package the application and produce distributable artifacts.",
		Long: `Runs a full packaging pass and then archives the staged build for every
make target configured for the platform (the zip maker by default). Artifacts
land in a make directory next to the staged bundle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			platform, arch, err := resolveTarget(settings, makePlatform, makeArch)
			if err != nil {
				return err
			}

			outDir, err := resolveOutDir(makeOutDir, projectDir(args), settings)
			if err != nil {
				return err
			}

			artifacts, err := maker.Run(ctx, &maker.Options{
				Dir:       projectDir(args),
				Platform:  platform,
				Arch:      arch,
				OutDir:    outDir,
				NpmBinary: settings.NpmBinary,
				Targets:   makeTargets,
			})
			if err != nil {
				return err
			}

			for _, artifact := range artifacts {
				color.New(color.FgGreen).Printf("Created artifact %s\n", artifact)
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	makeCmd.Flags().StringVarP(&makePlatform, "platform", "p", "", "target platform (darwin, mas, win32, linux)")
	makeCmd.Flags().StringVarP(&makeArch, "arch", "a", "", "target architecture (ia32, x64, armv7l, arm64)")
	makeCmd.Flags().StringVarP(&makeOutDir, "out", "o", "", "directory receiving the staged bundle")
	makeCmd.Flags().StringSliceVarP(&makeTargets, "targets", "t", nil, "make targets overriding the configuration")
	rootCmd.AddCommand(makeCmd)
}
