package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/szvest/electron-forge/internal/logger"
)

// scriptHook wraps an executable hook script found under the project's
// candidate locations. The script runs as an awaited subprocess with the
// build parameters exposed through the environment.
func scriptHook(path string) Func {
	return func(ctx context.Context, info *BuildInfo) error {
		logger.InfoKV(ctx, "Running hook script", "path", path)

		cmd := exec.CommandContext(ctx, path)
		cmd.Dir = info.ProjectDir
		cmd.Env = append(os.Environ(),
			"FORGE_PROJECT_DIR="+info.ProjectDir,
			"FORGE_BUILD_DIR="+info.BuildDir,
			"FORGE_PLATFORM="+info.Platform,
			"FORGE_ARCH="+info.Arch,
		)

		output, err := cmd.CombinedOutput()
		if len(output) > 0 {
			logger.Debugf(ctx, "Hook script output: %s", output)
		}

		if err != nil {
			return fmt.Errorf("hook script %s: %w", path, err)
		}

		return nil
	}
}
