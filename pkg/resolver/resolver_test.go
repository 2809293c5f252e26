package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/filesystem"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t    *testing.T
	root string
	home string
}

func newTestEnv(t *testing.T) *testEnv {
	return &testEnv{t: t, root: t.TempDir(), home: t.TempDir()}
}

// candidate creates a source file and returns the matching candidate
func (e *testEnv) candidate(name, content string) types.LinkCandidate {
	e.t.Helper()
	source := filepath.Join(e.root, name+paths.LinkSuffix)
	require.NoError(e.t, os.WriteFile(source, []byte(content), 0644))
	return types.LinkCandidate{
		SourcePath:      source,
		DestinationPath: filepath.Join(e.home, "."+name),
	}
}

func (e *testEnv) writeDest(candidate types.LinkCandidate, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(candidate.DestinationPath, []byte(content), 0644))
}

func (e *testEnv) assertLinked(candidate types.LinkCandidate) {
	e.t.Helper()
	target, err := os.Readlink(candidate.DestinationPath)
	require.NoError(e.t, err, "destination should be a symlink")
	assert.Equal(e.t, candidate.SourcePath, target)
}

func TestResolveAbsentCreatesLink(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("vimrc", "set nocompatible")
	provider := &ScriptedProvider{}
	r := New(filesystem.NewOS(), provider, "")

	action, policy, err := r.Resolve(cand, types.NoPolicy)
	require.NoError(t, err)
	assert.Equal(t, types.ActionLink, action)
	assert.Equal(t, types.NoPolicy, policy, "absent destination must not change policy")
	assert.Empty(t, provider.Asked, "absent destination must not prompt")
	env.assertLinked(cand)
}

func TestResolveAlreadyLinkedIsNoop(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("zshrc", "export EDITOR=vim")
	require.NoError(t, os.Symlink(cand.SourcePath, cand.DestinationPath))
	before, err := os.Lstat(cand.DestinationPath)
	require.NoError(t, err)

	provider := &ScriptedProvider{}
	r := New(filesystem.NewOS(), provider, "")

	action, policy, err := r.Resolve(cand, types.NoPolicy)
	require.NoError(t, err)
	assert.Equal(t, types.ActionSkip, action)
	assert.Equal(t, types.NoPolicy, policy)
	assert.Empty(t, provider.Asked, "correct link must not prompt")

	after, err := os.Lstat(cand.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "no mutation expected")
	env.assertLinked(cand)
}

func TestResolveConflictDecisions(t *testing.T) {
	tests := []struct {
		name     string
		decision types.Decision
		action   types.Action
		policy   types.RunPolicy
	}{
		{"skip once", types.Decision{Action: types.ActionSkip}, types.ActionSkip, types.NoPolicy},
		{"overwrite once", types.Decision{Action: types.ActionOverwrite}, types.ActionOverwrite, types.NoPolicy},
		{"backup once", types.Decision{Action: types.ActionBackup}, types.ActionBackup, types.NoPolicy},
		{"skip all", types.Decision{Action: types.ActionSkip, Sticky: true}, types.ActionSkip, types.SkipAll},
		{"overwrite all", types.Decision{Action: types.ActionOverwrite, Sticky: true}, types.ActionOverwrite, types.OverwriteAll},
		{"backup all", types.Decision{Action: types.ActionBackup, Sticky: true}, types.ActionBackup, types.BackupAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cand := env.candidate("bashrc", "alias ll='ls -l'")
			env.writeDest(cand, "old content")

			provider := &ScriptedProvider{Decisions: []types.Decision{tt.decision}}
			r := New(filesystem.NewOS(), provider, "")

			action, policy, err := r.Resolve(cand, types.NoPolicy)
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.policy, policy)
			require.Len(t, provider.Asked, 1)

			switch tt.action {
			case types.ActionSkip:
				content, err := os.ReadFile(cand.DestinationPath)
				require.NoError(t, err)
				assert.Equal(t, "old content", string(content), "skip must not touch the destination")
			case types.ActionOverwrite:
				env.assertLinked(cand)
			case types.ActionBackup:
				env.assertLinked(cand)
				backup, err := os.ReadFile(paths.BackupPath(cand.DestinationPath, ""))
				require.NoError(t, err)
				assert.Equal(t, "old content", string(backup), "backup must preserve content byte for byte")
			}
		})
	}
}

func TestResolveBlanketPolicySkipsPrompt(t *testing.T) {
	tests := []struct {
		name   string
		policy types.RunPolicy
		action types.Action
	}{
		{"skip all", types.SkipAll, types.ActionSkip},
		{"overwrite all", types.OverwriteAll, types.ActionOverwrite},
		{"backup all", types.BackupAll, types.ActionBackup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			cand := env.candidate("gitignore", "*.o")
			env.writeDest(cand, "stale")

			provider := &ScriptedProvider{}
			r := New(filesystem.NewOS(), provider, "")

			action, policy, err := r.Resolve(cand, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.policy, policy, "blanket policy persists unchanged")
			assert.Empty(t, provider.Asked, "blanket policy must not prompt")
		})
	}
}

// The overwrite-all scenario: first conflict prompts, every later conflict
// is overwritten silently regardless of its prior state.
func TestResolveStickyOverwriteScenario(t *testing.T) {
	env := newTestEnv(t)
	a := env.candidate("a", "content A")
	b := env.candidate("b", "content B")
	env.writeDest(a, "old X")
	require.NoError(t, os.Mkdir(b.DestinationPath, 0755))

	provider := &ScriptedProvider{Decisions: []types.Decision{
		{Action: types.ActionOverwrite, Sticky: true},
	}}
	r := New(filesystem.NewOS(), provider, "")

	policy := types.NoPolicy
	var err error
	_, policy, err = r.Resolve(a, policy)
	require.NoError(t, err)
	require.Equal(t, types.OverwriteAll, policy)

	_, policy, err = r.Resolve(b, policy)
	require.NoError(t, err)
	assert.Equal(t, types.OverwriteAll, policy)
	assert.Len(t, provider.Asked, 1, "second conflict must not prompt")

	env.assertLinked(a)
	env.assertLinked(b)
}

func TestResolveNoConflictNoPrompts(t *testing.T) {
	env := newTestEnv(t)
	a := env.candidate("a", "content A")
	b := env.candidate("b", "content B")

	provider := &ScriptedProvider{}
	r := New(filesystem.NewOS(), provider, "")

	policy := types.NoPolicy
	for _, cand := range []types.LinkCandidate{a, b} {
		var err error
		_, policy, err = r.Resolve(cand, policy)
		require.NoError(t, err)
	}

	assert.Empty(t, provider.Asked)
	env.assertLinked(a)
	env.assertLinked(b)
}

func TestResolveSymlinkElsewherePrompts(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("profile", "export PATH")
	other := filepath.Join(env.root, "other")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.Symlink(other, cand.DestinationPath))

	provider := &ScriptedProvider{Decisions: []types.Decision{
		{Action: types.ActionOverwrite},
	}}
	r := New(filesystem.NewOS(), provider, "")

	action, _, err := r.Resolve(cand, types.NoPolicy)
	require.NoError(t, err)
	assert.Equal(t, types.ActionOverwrite, action)
	require.Len(t, provider.Asked, 1)
	env.assertLinked(cand)
}

func TestResolveOverwriteDirectory(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("config", "settings")
	require.NoError(t, os.MkdirAll(filepath.Join(cand.DestinationPath, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cand.DestinationPath, "nested", "file"), []byte("x"), 0644))

	provider := &ScriptedProvider{Decisions: []types.Decision{
		{Action: types.ActionOverwrite},
	}}
	r := New(filesystem.NewOS(), provider, "")

	_, _, err := r.Resolve(cand, types.NoPolicy)
	require.NoError(t, err)
	env.assertLinked(cand)
}

func TestResolveBackupConflictFailsFast(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("vimrc", "set nu")
	env.writeDest(cand, "current")
	require.NoError(t, os.WriteFile(paths.BackupPath(cand.DestinationPath, ""), []byte("previous backup"), 0644))

	provider := &ScriptedProvider{Decisions: []types.Decision{
		{Action: types.ActionBackup},
	}}
	r := New(filesystem.NewOS(), provider, "")

	_, _, err := r.Resolve(cand, types.NoPolicy)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupConflict))

	// Neither the destination nor the old backup may have been touched
	content, err := os.ReadFile(cand.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "current", string(content))
	backup, err := os.ReadFile(paths.BackupPath(cand.DestinationPath, ""))
	require.NoError(t, err)
	assert.Equal(t, "previous backup", string(backup))
}

func TestResolveBackupAllOnAbsentDestination(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("inputrc", "set editing-mode vi")

	r := New(filesystem.NewOS(), &ScriptedProvider{}, "")
	action, policy, err := r.Resolve(cand, types.BackupAll)
	require.NoError(t, err)
	assert.Equal(t, types.ActionBackup, action)
	assert.Equal(t, types.BackupAll, policy)
	env.assertLinked(cand)
	_, err = os.Lstat(paths.BackupPath(cand.DestinationPath, ""))
	assert.True(t, os.IsNotExist(err), "no backup file for an absent destination")
}

func TestResolveCustomBackupSuffix(t *testing.T) {
	env := newTestEnv(t)
	cand := env.candidate("vimrc", "set nu")
	env.writeDest(cand, "old content")

	provider := &ScriptedProvider{Decisions: []types.Decision{
		{Action: types.ActionBackup},
	}}
	r := New(filesystem.NewOS(), provider, ".orig")

	_, _, err := r.Resolve(cand, types.NoPolicy)
	require.NoError(t, err)
	env.assertLinked(cand)

	backup, err := os.ReadFile(cand.DestinationPath + ".orig")
	require.NoError(t, err)
	assert.Equal(t, "old content", string(backup))
	_, err = os.Lstat(cand.DestinationPath + paths.BackupSuffix)
	assert.True(t, os.IsNotExist(err), "default-suffix backup must not appear")
}

func TestResolveMissingSourceIsFatal(t *testing.T) {
	env := newTestEnv(t)
	cand := types.LinkCandidate{
		SourcePath:      filepath.Join(env.root, "vanished.symlink"),
		DestinationPath: filepath.Join(env.home, "nope", ".vanished"),
	}

	r := New(filesystem.NewOS(), &ScriptedProvider{}, "")
	_, _, err := r.Resolve(cand, types.NoPolicy)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkCreate))
}

// Running twice over the same unchanged sources yields an identical final
// state: the second pass sees correct links and mutates nothing.
func TestResolveIdempotence(t *testing.T) {
	env := newTestEnv(t)
	a := env.candidate("a", "content A")
	b := env.candidate("b", "content B")
	env.writeDest(a, "old")

	run := func() {
		provider := &ScriptedProvider{Decisions: []types.Decision{
			{Action: types.ActionOverwrite, Sticky: true},
		}}
		r := New(filesystem.NewOS(), provider, "")
		policy := types.NoPolicy
		for _, cand := range []types.LinkCandidate{a, b} {
			var err error
			_, policy, err = r.Resolve(cand, policy)
			require.NoError(t, err)
		}
	}

	run()
	env.assertLinked(a)
	env.assertLinked(b)
	run()
	env.assertLinked(a)
	env.assertLinked(b)
}
