package resolver

import (
	"os"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/types"
)

// Resolver decides and performs the filesystem mutation for one candidate
// at a time. It holds no per-candidate state; the run policy is threaded
// through Resolve by the caller.
type Resolver struct {
	fs           types.FS
	decisions    DecisionProvider
	backupSuffix string
}

// New creates a Resolver operating on the given filesystem, asking the
// given provider whenever a conflict needs an operator decision. An empty
// backupSuffix falls back to the ".backup" convention.
func New(fs types.FS, decisions DecisionProvider, backupSuffix string) *Resolver {
	return &Resolver{
		fs:           fs,
		decisions:    decisions,
		backupSuffix: backupSuffix,
	}
}

// Resolve handles a single candidate under the current run policy and
// returns the action taken together with the (possibly updated) policy.
//
// An active policy applies without inspecting the destination's prior
// content type and without prompting. Otherwise an absent destination is
// linked silently, an already-correct link is left alone, and anything else
// prompts. Mutation failures are returned as fatal errors.
func (r *Resolver) Resolve(candidate types.LinkCandidate, policy types.RunPolicy) (types.Action, types.RunPolicy, error) {
	logger := logging.GetLogger("resolver").With().
		Str("source", candidate.SourcePath).
		Str("destination", candidate.DestinationPath).
		Logger()

	if policy != types.NoPolicy {
		action := policyAction(policy)
		logger.Debug().
			Str("policy", policy.String()).
			Str("action", action.String()).
			Msg("Applying blanket policy")
		if err := r.perform(candidate, action); err != nil {
			return action, policy, err
		}
		return action, policy, nil
	}

	state, err := r.inspect(candidate)
	if err != nil {
		return types.ActionSkip, policy, err
	}

	switch state {
	case types.TargetAbsent:
		logger.Debug().Msg("Destination absent, linking")
		if err := r.link(candidate); err != nil {
			return types.ActionLink, policy, err
		}
		return types.ActionLink, policy, nil

	case types.TargetLinkedCorrect:
		logger.Debug().Msg("Already linked correctly")
		return types.ActionSkip, policy, nil
	}

	decision, err := r.decisions.Decide(candidate, state)
	if err != nil {
		return types.ActionSkip, policy, err
	}

	logger.Debug().
		Str("state", state.String()).
		Str("action", decision.Action.String()).
		Bool("sticky", decision.Sticky).
		Msg("Conflict decision")

	if err := r.perform(candidate, decision.Action); err != nil {
		return decision.Action, policy, err
	}

	if decision.Sticky {
		policy = stickyPolicy(decision.Action)
		logger.Info().Str("policy", policy.String()).Msg("Blanket policy set for remaining candidates")
	}
	return decision.Action, policy, nil
}

// inspect observes the current state of the candidate's destination.
// Never cached: each candidate sees the filesystem as it is right now.
func (r *Resolver) inspect(candidate types.LinkCandidate) (types.TargetState, error) {
	info, err := r.fs.Lstat(candidate.DestinationPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.TargetAbsent, nil
		}
		return types.TargetAbsent, errors.Wrap(err, errors.ErrFileAccess, "cannot inspect destination").
			WithDetail("path", candidate.DestinationPath)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := r.fs.Readlink(candidate.DestinationPath)
		if err != nil {
			return types.TargetLinkedElsewhere, errors.Wrap(err, errors.ErrFileAccess, "cannot read existing symlink").
				WithDetail("path", candidate.DestinationPath)
		}
		if target == candidate.SourcePath {
			return types.TargetLinkedCorrect, nil
		}
		return types.TargetLinkedElsewhere, nil
	}

	if info.IsDir() {
		return types.TargetDirectory, nil
	}
	return types.TargetRegularFile, nil
}

// perform executes the resolved action. At most one mutation of each kind
// happens per invocation.
func (r *Resolver) perform(candidate types.LinkCandidate, action types.Action) error {
	switch action {
	case types.ActionSkip:
		return nil

	case types.ActionLink:
		return r.link(candidate)

	case types.ActionOverwrite:
		if err := r.fs.RemoveAll(candidate.DestinationPath); err != nil {
			return errors.Wrap(err, errors.ErrFileRemove, "cannot remove existing destination").
				WithDetail("path", candidate.DestinationPath)
		}
		return r.link(candidate)

	case types.ActionBackup:
		backupPath := paths.BackupPath(candidate.DestinationPath, r.backupSuffix)
		if _, err := r.fs.Lstat(backupPath); err == nil {
			return errors.New(errors.ErrBackupConflict, "backup path already occupied").
				WithDetail("path", backupPath)
		} else if !os.IsNotExist(err) {
			return errors.Wrap(err, errors.ErrFileAccess, "cannot inspect backup path").
				WithDetail("path", backupPath)
		}
		if _, err := r.fs.Lstat(candidate.DestinationPath); err != nil {
			if os.IsNotExist(err) {
				// Blanket BackupAll on an absent destination: nothing to move
				return r.link(candidate)
			}
			return errors.Wrap(err, errors.ErrFileAccess, "cannot inspect destination").
				WithDetail("path", candidate.DestinationPath)
		}
		if err := r.fs.Rename(candidate.DestinationPath, backupPath); err != nil {
			return errors.Wrap(err, errors.ErrFileRename, "cannot move destination to backup").
				WithDetail("path", candidate.DestinationPath).
				WithDetail("backup", backupPath)
		}
		return r.link(candidate)
	}
	return errors.Newf(errors.ErrInternal, "unknown action %d", action)
}

// link creates the symlink. A failure here is fatal to the run: the parent
// is unwritable or the source vanished since enumeration.
func (r *Resolver) link(candidate types.LinkCandidate) error {
	if err := r.fs.Symlink(candidate.SourcePath, candidate.DestinationPath); err != nil {
		return errors.Wrap(err, errors.ErrSymlinkCreate, "cannot create symlink").
			WithDetail("source", candidate.SourcePath).
			WithDetail("destination", candidate.DestinationPath)
	}
	return nil
}

// policyAction maps an active blanket policy to the action it forces
func policyAction(policy types.RunPolicy) types.Action {
	switch policy {
	case types.SkipAll:
		return types.ActionSkip
	case types.OverwriteAll:
		return types.ActionOverwrite
	case types.BackupAll:
		return types.ActionBackup
	default:
		return types.ActionSkip
	}
}

// stickyPolicy maps a sticky decision to the policy it establishes
func stickyPolicy(action types.Action) types.RunPolicy {
	switch action {
	case types.ActionSkip:
		return types.SkipAll
	case types.ActionOverwrite:
		return types.OverwriteAll
	case types.ActionBackup:
		return types.BackupAll
	default:
		return types.NoPolicy
	}
}
