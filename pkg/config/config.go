// Package config loads dotup's layered configuration: embedded defaults,
// the XDG config file, an optional dotup.toml in the dotfiles root, and
// DOTUP_ environment overrides, in that order.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. DOTUP_DOTFILES_ROOT
const EnvPrefix = "DOTUP_"

// Git holds the identity defaults used when prompting for the git step
type Git struct {
	Name  string `koanf:"name" toml:"name"`
	Email string `koanf:"email" toml:"email"`
}

// Config is the resolved dotup configuration
type Config struct {
	DotfilesRoot  string   `koanf:"dotfiles_root" toml:"dotfiles_root"`
	LinkSuffix    string   `koanf:"link_suffix" toml:"link_suffix"`
	BackupSuffix  string   `koanf:"backup_suffix" toml:"backup_suffix"`
	Ignore        []string `koanf:"ignore" toml:"ignore"`
	InstallScript string   `koanf:"install_script" toml:"install_script"`
	Git           Git      `koanf:"git" toml:"git"`
}

// defaults are the embedded base layer
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"dotfiles_root":  "",
		"link_suffix":    paths.LinkSuffix,
		"backup_suffix":  paths.BackupSuffix,
		"ignore":         []string{".git", ".hg", ".svn"},
		"install_script": "script/install",
	}
}

// Load resolves the configuration. dotfilesRoot may be empty; when set, a
// dotup.toml inside it overrides the XDG config file.
func Load(dotfilesRoot string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	candidates := []string{paths.ConfigFilePath()}
	if dotfilesRoot != "" {
		candidates = append(candidates,
			filepath.Join(dotfilesRoot, ".dotup.toml"),
			filepath.Join(dotfilesRoot, "dotup.toml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse config file").
				WithDetail("path", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}
	return &cfg, nil
}

// envKey maps DOTUP_GIT_NAME to git.name and keeps flat keys flat
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch key {
	case "git_name":
		return "git.name"
	case "git_email":
		return "git.email"
	default:
		return key
	}
}
