// Package gitconfig renders the local git identity file from operator
// supplied values. It is a collaborator of the bootstrap driver: one
// straight-line templating step, invoked at most once per run.
package gitconfig

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"text/template"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/types"
)

// ArtifactName is the identity file written under the home directory
const ArtifactName = ".gitconfig.local"

//go:embed gitconfig.local.tmpl
var identityTemplate string

// Identity holds the values templated into the artifact
type Identity struct {
	AuthorName       string
	AuthorEmail      string
	CredentialHelper string
}

// CredentialHelper returns the platform's git credential helper name
func CredentialHelper(goos string) string {
	if goos == "darwin" {
		return "osxkeychain"
	}
	return "cache"
}

// Generate writes the identity artifact under homeDir. It reports whether
// the file was written: an existing artifact is never touched.
func Generate(fs types.FS, homeDir string, identity Identity) (bool, error) {
	logger := logging.GetLogger("gitconfig")
	artifact := filepath.Join(homeDir, ArtifactName)

	if _, err := fs.Stat(artifact); err == nil {
		logger.Info().Str("path", artifact).Msg("Identity file already exists, skipping")
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrap(err, errors.ErrFileAccess, "cannot inspect identity file").
			WithDetail("path", artifact)
	}

	tmpl, err := template.New("gitconfig").Parse(identityTemplate)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrTemplateRender, "invalid identity template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, identity); err != nil {
		return false, errors.Wrap(err, errors.ErrTemplateRender, "cannot render identity file")
	}

	if err := fs.WriteFile(artifact, buf.Bytes(), 0644); err != nil {
		return false, errors.Wrap(err, errors.ErrFileAccess, "cannot write identity file").
			WithDetail("path", artifact)
	}

	logger.Info().
		Str("path", artifact).
		Str("helper", identity.CredentialHelper).
		Msg("Wrote git identity file")
	return true, nil
}
