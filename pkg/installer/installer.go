// Package installer triggers the external dependency-installation step and
// relays its output. It holds no decision logic: a non-zero exit is fatal
// to the run.
package installer

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
)

// DefaultScript is the installer entry point relative to the dotfiles root
const DefaultScript = "script/install"

// BrewfileName triggers the Homebrew bundle step on darwin
const BrewfileName = "Brewfile"

// Run triggers dependency installation under the dotfiles root: the
// installer script if one exists, and `brew bundle` on darwin when the
// root carries a Brewfile. A missing script is not an error: there is
// simply nothing to install.
func Run(dotfilesRoot, script string) error {
	if err := runScript(dotfilesRoot, script); err != nil {
		return err
	}
	return runBrewBundle(dotfilesRoot, runtime.GOOS)
}

func runScript(dotfilesRoot, script string) error {
	logger := logging.GetLogger("installer")

	if script == "" {
		script = DefaultScript
	}
	path := filepath.Join(dotfilesRoot, script)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("No installer script, skipping")
			return nil
		}
		return errors.Wrap(err, errors.ErrFileAccess, "cannot access installer script").
			WithDetail("path", path)
	}

	logger.Info().Str("path", path).Msg("Running installer")

	return relay(exec.Command(path), dotfilesRoot, filepath.Base(path))
}

// runBrewBundle installs Brewfile dependencies, darwin only
func runBrewBundle(dotfilesRoot, goos string) error {
	logger := logging.GetLogger("installer")

	if goos != "darwin" {
		return nil
	}
	brewfile := filepath.Join(dotfilesRoot, BrewfileName)
	if _, err := os.Stat(brewfile); err != nil {
		return nil
	}

	logger.Info().Str("brewfile", brewfile).Msg("Running brew bundle")

	cmd := exec.Command("brew", "bundle", "--file="+brewfile)
	return relay(cmd, dotfilesRoot, "brew")
}

// relay runs the command, forwarding every output line as an info message.
// A non-zero exit is fatal to the run.
func relay(cmd *exec.Cmd, dotfilesRoot, name string) error {
	logger := logging.GetLogger("installer")

	cmd.Dir = dotfilesRoot

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, errors.ErrInstallFailed, "cannot capture installer output")
	}
	// Interleave stderr with stdout so every line gets relayed
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, errors.ErrInstallFailed, "cannot start installer").
			WithDetail("command", name)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		logger.Info().Str("installer", name).Msg(scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		return errors.Wrap(err, errors.ErrInstallFailed, "installer exited non-zero").
			WithDetail("command", name)
	}

	logger.Info().Msg("Installer finished")
	return nil
}
