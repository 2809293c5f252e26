// Package paths provides centralized path handling for dotup: home
// directory resolution, candidate-to-destination mapping, and XDG locations
// for generated artifacts.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotup/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for the dotfiles location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// LinkSuffix is the naming convention marking a file as a link candidate
const LinkSuffix = ".symlink"

// BackupSuffix is appended to a destination moved aside by a backup decision
const BackupSuffix = ".backup"

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment
// variable. If both fail, it returns an error rather than guessing.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv(EnvHome)
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrHomeResolve,
		"unable to determine home directory: neither os.UserHomeDir() nor HOME are available")
}

// GetDotfilesRoot returns the dotfiles root from the explicit flag value,
// the DOTFILES_ROOT environment variable, or ~/.dotfiles, in that order.
func GetDotfilesRoot(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return root, nil
	}
	home, err := GetHomeDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dotfiles"), nil
}

// MapSourceToDestination derives the destination path for a candidate
// source: base name minus the link suffix, prefixed with a dot, under the
// given home directory. "vim/vimrc.symlink" maps to "<home>/.vimrc".
// An empty suffix falls back to the LinkSuffix convention.
func MapSourceToDestination(sourcePath, homeDir, suffix string) string {
	if suffix == "" {
		suffix = LinkSuffix
	}
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, suffix)
	return filepath.Join(homeDir, "."+name)
}

// BackupPath returns the path a backup decision renames the destination to.
// An empty suffix falls back to the BackupSuffix convention.
func BackupPath(destinationPath, suffix string) string {
	if suffix == "" {
		suffix = BackupSuffix
	}
	return destinationPath + suffix
}

// ConfigFilePath returns the XDG location of the generated dotup config
func ConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "dotup", "dotup.toml")
}
