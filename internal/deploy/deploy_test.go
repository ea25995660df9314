package deploy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
)

func TestDeploy_PushesTargetTreeToLocalRemote(t *testing.T) {
	tmp := t.TempDir()

	remoteDir := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	targetDir := filepath.Join(tmp, "site")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "index.html"), []byte("<html></html>"), 0o644))

	settings := &config.Settings{
		Target: targetDir,
		Deploy: config.DeployConfig{Remote: remoteDir, Branch: "deploy"},
	}

	require.NoError(t, NewClient(settings).Deploy(context.Background()))

	remote, err := git.PlainOpen(remoteDir)
	require.NoError(t, err)
	ref, err := remote.Reference(plumbing.NewBranchReferenceName("deploy"), true)
	require.NoError(t, err)
	require.False(t, ref.Hash().IsZero())
}

func TestDeploy_CleanTreeIsNoop(t *testing.T) {
	tmp := t.TempDir()

	remoteDir := filepath.Join(tmp, "remote.git")
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	targetDir := filepath.Join(tmp, "site")
	require.NoError(t, os.MkdirAll(targetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(targetDir, "index.html"), []byte("<html></html>"), 0o644))

	settings := &config.Settings{
		Target: targetDir,
		Deploy: config.DeployConfig{Remote: remoteDir, Branch: "deploy"},
	}
	client := NewClient(settings)

	require.NoError(t, client.Deploy(context.Background()))
	// Second run with no changes commits nothing and pushes nothing.
	require.NoError(t, client.Deploy(context.Background()))
}

func TestDeploy_MissingRemoteIsConfigError(t *testing.T) {
	settings := &config.Settings{
		Target: t.TempDir(),
		Deploy: config.DeployConfig{Branch: "deploy"},
	}
	err := NewClient(settings).Deploy(context.Background())
	require.Error(t, err)
	require.True(t, qerrors.IsCategory(err, qerrors.CategoryConfig))
}
