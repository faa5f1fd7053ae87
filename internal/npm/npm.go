package npm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/szvest/electron-forge/internal/logger"
)

// Runner shells out to the package manager inside one project directory.
// Every call is an awaited subprocess: the method returns only after the
// child process has exited.
type Runner struct {
	// dir is the project directory all commands run in.
	dir string
	// binary is the package-manager executable, usually "npm".
	binary string
}

// errNoPackages rejects install/uninstall calls without package arguments.
var errNoPackages = errors.New("no packages given")

// NewRunner creates a runner for the given project directory.
func NewRunner(dir, binary string) *Runner {
	if binary == "" {
		binary = "npm"
	}

	return &Runner{dir: filepath.Clean(dir), binary: binary}
}

// Install adds the named packages. Dev selects devDependencies; exact pins
// versions without a range prefix.
func (r *Runner) Install(ctx context.Context, packages []string, dev, exact bool) error {
	if len(packages) == 0 {
		return errNoPackages
	}

	args := []string{"install"}
	if dev {
		args = append(args, "--save-dev")
	} else {
		args = append(args, "--save")
	}

	if exact {
		args = append(args, "--save-exact")
	}

	return r.run(ctx, append(args, packages...)...)
}

// InstallAll installs the dependency tree declared in the manifest.
func (r *Runner) InstallAll(ctx context.Context) error {
	return r.run(ctx, "install")
}

// Uninstall removes the named packages from the installed tree.
func (r *Runner) Uninstall(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return errNoPackages
	}

	return r.run(ctx, append([]string{"uninstall"}, packages...)...)
}

// Prune drops installed packages no longer declared in the manifest.
func (r *Runner) Prune(ctx context.Context) error {
	return r.run(ctx, "prune")
}

// PruneProduction drops devDependencies from the installed tree.
func (r *Runner) PruneProduction(ctx context.Context) error {
	return r.run(ctx, "prune", "--production")
}

// RunScript executes a manifest script by name, skipping silently when the
// project does not declare it.
func (r *Runner) RunScript(ctx context.Context, name string) error {
	return r.run(ctx, "run", name, "--if-present")
}

// Rebuild recompiles native modules for the given packaging target.
func (r *Runner) Rebuild(ctx context.Context, platform, arch string) error {
	return r.runWithEnv(ctx,
		[]string{"npm_config_platform=" + platform, "npm_config_arch=" + arch},
		"rebuild")
}

// run executes one package-manager command and waits for it to exit.
func (r *Runner) run(ctx context.Context, args ...string) error {
	return r.runWithEnv(ctx, nil, args...)
}

// runWithEnv executes one package-manager command with extra environment
// variables and waits for it to exit.
func (r *Runner) runWithEnv(ctx context.Context, env []string, args ...string) error {
	logger.InfoKV(ctx, "Running package manager",
		"command", r.binary+" "+strings.Join(args, " "), "dir", r.dir)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.dir

	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debugf(ctx, "%s output: %s", r.binary, output)
	}

	if err != nil {
		return fmt.Errorf("%s %s: %w", r.binary, strings.Join(args, " "), err)
	}

	return nil
}

// GitInit initializes version control in the directory. Idempotent: a
// directory that already carries a .git folder is left untouched.
func GitInit(ctx context.Context, dir, binary string) error {
	if binary == "" {
		binary = "git"
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		logger.Debug(ctx, "Git repository already initialized, skipping")
		return nil
	}

	cmd := exec.CommandContext(ctx, binary, "init")
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debugf(ctx, "git output: %s", output)
	}

	if err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	return nil
}
