package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/szvest/electron-forge/internal/service/importer"
)

var (
	// skipConfirmation answers yes to every prompt.
	skipConfirmation bool

	// importCmd converts an existing project into a packageable one.
	importCmd = &cobra.Command{
		Use:   "import [project-dir]",
		Short: "Convert an existing application project for packaging.",
		Long: `Rewrites an existing project so forge can package it: strips the legacy
runtime and build-tool dependencies, pins the replacement runtime to the
detected version, injects a template packaging configuration, appends the
output directory to the ignore file and migrates legacy compiler settings.

The project directory defaults to the current directory. Destructive steps
ask for confirmation unless --yes is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			options := &importer.Options{
				Dir:         projectDir(args),
				Interactive: !skipConfirmation,
				NpmBinary:   settings.NpmBinary,
				GitBinary:   settings.GitBinary,
				OutDirName:  settings.OutDirName,
			}

			if err := importer.Run(ctx, options); err != nil {
				// A declined confirmation is a clean exit, not a failure.
				if errors.Is(err, importer.ErrAborted) {
					return nil
				}

				return err
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	importCmd.Flags().BoolVarP(&skipConfirmation, "yes", "y", false, "answer yes to every confirmation")
	rootCmd.AddCommand(importCmd)
}
