package config

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	gotoml "github.com/pelletier/go-toml/v2"
)

const generatedHeader = `# dotup configuration.
# Values here are overridden by dotup.toml in the dotfiles root and by
# DOTUP_* environment variables.

`

// Generate writes a commented default config file to the given path,
// creating parent directories. An existing file is never overwritten.
func Generate(path string) (string, error) {
	logger := logging.GetLogger("config.generate")

	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "config path is empty")
	}

	if _, err := os.Stat(path); err == nil {
		return "", errors.New(errors.ErrInvalidInput, "config file already exists").
			WithDetail("path", path)
	}

	cfg := Config{
		DotfilesRoot:  "",
		LinkSuffix:    paths.LinkSuffix,
		BackupSuffix:  paths.BackupSuffix,
		Ignore:        []string{".git", ".hg", ".svn"},
		InstallScript: "script/install",
	}
	body, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot marshal default config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot create config directory").
			WithDetail("path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, append([]byte(generatedHeader), body...), 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot write config file").
			WithDetail("path", path)
	}

	logger.Info().Str("path", path).Msg("Wrote default config")
	return path, nil
}
