// Package types defines the shared types and capability interfaces used
// across dotup.
package types

import "io/fs"

// FS is the filesystem interface required for dotup operations.
// The resolver only ever performs single mutations through it, which keeps
// every branch testable against a temporary directory.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Mutations used by conflict resolution
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// LinkCandidate is a source file eligible to be linked into the home
// directory. Immutable once computed by discovery.
type LinkCandidate struct {
	// SourcePath is the absolute path of the *.symlink file
	SourcePath string
	// DestinationPath is the dotted target under the home directory
	DestinationPath string
}

// TargetState is the observed state of a candidate's destination at
// decision time. It is recomputed fresh for every candidate.
type TargetState int

const (
	// TargetAbsent means nothing exists at the destination
	TargetAbsent TargetState = iota
	// TargetLinkedCorrect means the destination is already a symlink to the source
	TargetLinkedCorrect
	// TargetLinkedElsewhere means the destination is a symlink to something else
	TargetLinkedElsewhere
	// TargetRegularFile means a regular file occupies the destination
	TargetRegularFile
	// TargetDirectory means a directory occupies the destination
	TargetDirectory
)

func (s TargetState) String() string {
	switch s {
	case TargetAbsent:
		return "absent"
	case TargetLinkedCorrect:
		return "linked"
	case TargetLinkedElsewhere:
		return "symlink to elsewhere"
	case TargetRegularFile:
		return "file"
	case TargetDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Action is what the resolver decided to do with a candidate
type Action int

const (
	// ActionSkip leaves the destination untouched
	ActionSkip Action = iota
	// ActionLink creates the symlink onto an absent destination
	ActionLink
	// ActionOverwrite removes the destination, then links
	ActionOverwrite
	// ActionBackup renames the destination aside, then links
	ActionBackup
)

func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionLink:
		return "link"
	case ActionOverwrite:
		return "overwrite"
	case ActionBackup:
		return "backup"
	default:
		return "unknown"
	}
}

// Decision is an operator choice for one conflicting candidate. Sticky
// decisions become the run policy for all remaining candidates.
type Decision struct {
	Action Action
	Sticky bool
}

// RunPolicy is the blanket policy carried across candidates within a single
// run. It is owned by the sequential driver loop, set at most once per
// sticky decision, and never persisted.
type RunPolicy int

const (
	// NoPolicy means every conflict prompts
	NoPolicy RunPolicy = iota
	// SkipAll skips every remaining candidate without prompting
	SkipAll
	// OverwriteAll overwrites every remaining candidate without prompting
	OverwriteAll
	// BackupAll backs up every remaining candidate without prompting
	BackupAll
)

func (p RunPolicy) String() string {
	switch p {
	case NoPolicy:
		return "none"
	case SkipAll:
		return "skip-all"
	case OverwriteAll:
		return "overwrite-all"
	case BackupAll:
		return "backup-all"
	default:
		return "unknown"
	}
}
