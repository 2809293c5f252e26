// Package discovery enumerates link candidates in a dotfiles tree.
//
// Scanning is bounded: only the root and its immediate subdirectories are
// searched, matching the convention of grouping dotfiles one directory deep
// by topic. Version-control metadata is never descended into.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/types"
)

// maxDepth bounds the walk: root files plus one topic directory level
const maxDepth = 2

// DefaultIgnore lists directory names never descended into
var DefaultIgnore = []string{".git", ".hg", ".svn"}

// Options tunes a scan. Zero values fall back to the conventional
// candidate suffix and the VCS ignore set.
type Options struct {
	Suffix string
	Ignore []string
}

// FindCandidates walks the dotfiles root and returns every file carrying
// the candidate suffix as a LinkCandidate with its destination resolved
// under homeDir. Results are sorted by source path for a deterministic
// run order.
func FindCandidates(fs types.FS, dotfilesRoot, homeDir string, opts Options) ([]types.LinkCandidate, error) {
	logger := logging.GetLogger("discovery")

	info, err := fs.Stat(dotfilesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "dotfiles root does not exist").
				WithDetail("path", dotfilesRoot)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access dotfiles root").
			WithDetail("path", dotfilesRoot)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "dotfiles root is not a directory").
			WithDetail("path", dotfilesRoot)
	}

	if opts.Suffix == "" {
		opts.Suffix = paths.LinkSuffix
	}
	ignoreNames := opts.Ignore
	if len(ignoreNames) == 0 {
		ignoreNames = DefaultIgnore
	}
	ignore := make(map[string]bool, len(ignoreNames))
	for _, name := range ignoreNames {
		ignore[name] = true
	}

	var candidates []types.LinkCandidate
	if err := walk(fs, dotfilesRoot, homeDir, 1, opts.Suffix, ignore, &candidates); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].SourcePath < candidates[j].SourcePath
	})

	logger.Info().
		Int("count", len(candidates)).
		Str("root", dotfilesRoot).
		Msg("Found link candidates")
	return candidates, nil
}

func walk(fs types.FS, dir, homeDir string, depth int, suffix string, ignore map[string]bool, out *[]types.LinkCandidate) error {
	logger := logging.GetLogger("discovery")

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read directory").
			WithDetail("path", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		fullPath := filepath.Join(dir, name)

		if entry.IsDir() && !strings.HasSuffix(name, suffix) {
			if ignore[name] {
				logger.Trace().Str("path", fullPath).Msg("Skipping ignored directory")
				continue
			}
			if depth < maxDepth {
				if err := walk(fs, fullPath, homeDir, depth+1, suffix, ignore, out); err != nil {
					return err
				}
			}
			continue
		}

		if !strings.HasSuffix(name, suffix) {
			continue
		}

		candidate := types.LinkCandidate{
			SourcePath:      fullPath,
			DestinationPath: paths.MapSourceToDestination(fullPath, homeDir, suffix),
		}
		*out = append(*out, candidate)

		logger.Trace().
			Str("source", candidate.SourcePath).
			Str("destination", candidate.DestinationPath).
			Msg("Found candidate")
	}

	return nil
}
