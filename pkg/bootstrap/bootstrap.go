// Package bootstrap drives a full dotup run: enumerate candidates, resolve
// them one at a time in order, then invoke the collaborator steps. The run
// policy lives in this loop and nowhere else.
package bootstrap

import (
	"github.com/arthur-debert/dotup/pkg/discovery"
	"github.com/arthur-debert/dotup/pkg/gitconfig"
	"github.com/arthur-debert/dotup/pkg/installer"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/resolver"
	"github.com/arthur-debert/dotup/pkg/types"
)

// Options configures a run
type Options struct {
	DotfilesRoot string
	// HomeDir overrides home resolution; empty means the invoking user's home
	HomeDir string
	// Policy presets the blanket policy (from --skip-all and friends)
	Policy types.RunPolicy
	// Identity, when non-nil, triggers the git identity templating step
	Identity *gitconfig.Identity
	// RunInstall triggers the dependency-installation step
	RunInstall bool
	// InstallScript overrides the installer entry point
	InstallScript string
	// LinkSuffix overrides the candidate naming convention (default ".symlink")
	LinkSuffix string
	// BackupSuffix overrides the backup naming convention (default ".backup")
	BackupSuffix string
	// Ignore overrides the directory names discovery never descends into
	Ignore []string
}

// LinkResult records what happened to one candidate
type LinkResult struct {
	Candidate types.LinkCandidate
	Action    types.Action
}

// Result summarizes a completed run
type Result struct {
	Links           []LinkResult
	Linked          int
	Skipped         int
	Overwritten     int
	BackedUp        int
	IdentityWritten bool
}

func (r *Result) record(candidate types.LinkCandidate, action types.Action) {
	r.Links = append(r.Links, LinkResult{Candidate: candidate, Action: action})
	switch action {
	case types.ActionLink:
		r.Linked++
	case types.ActionSkip:
		r.Skipped++
	case types.ActionOverwrite:
		r.Overwritten++
	case types.ActionBackup:
		r.BackedUp++
	}
}

// Run executes a bootstrap run. It stops on the first fatal error: a
// partially-linked environment with no record of progress is worse than
// stopping early, so nothing is retried and nothing is rolled back.
func Run(fs types.FS, decisions resolver.DecisionProvider, opts Options) (*Result, error) {
	logger := logging.GetLogger("bootstrap")

	homeDir := opts.HomeDir
	if homeDir == "" {
		var err error
		homeDir, err = paths.GetHomeDirectory()
		if err != nil {
			return nil, err
		}
	}

	candidates, err := discovery.FindCandidates(fs, opts.DotfilesRoot, homeDir, discovery.Options{
		Suffix: opts.LinkSuffix,
		Ignore: opts.Ignore,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	res := resolver.New(fs, decisions, opts.BackupSuffix)
	policy := opts.Policy

	for _, candidate := range candidates {
		var action types.Action
		action, policy, err = res.Resolve(candidate, policy)
		if err != nil {
			return result, err
		}
		result.record(candidate, action)
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Int("linked", result.Linked).
		Int("skipped", result.Skipped).
		Int("overwritten", result.Overwritten).
		Int("backed_up", result.BackedUp).
		Str("policy", policy.String()).
		Msg("Linking finished")

	if opts.Identity != nil {
		written, err := gitconfig.Generate(fs, homeDir, *opts.Identity)
		if err != nil {
			return result, err
		}
		result.IdentityWritten = written
	}

	if opts.RunInstall {
		if err := installer.Run(opts.DotfilesRoot, opts.InstallScript); err != nil {
			return result, err
		}
	}

	return result, nil
}
