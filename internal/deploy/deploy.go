// Package deploy publishes the built site: the target tree is committed to a
// git branch and pushed to the configured remote.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/jakeisnt/quine/internal/config"
	qerrors "github.com/jakeisnt/quine/internal/errors"
	"github.com/jakeisnt/quine/internal/logfields"
)

const remoteName = "deploy"

// Client deploys a built target directory.
type Client struct {
	settings *config.Settings
}

// NewClient creates a deploy client for the settings' target directory.
func NewClient(settings *config.Settings) *Client {
	return &Client{settings: settings}
}

// Deploy commits the current target tree and pushes it to the configured
// remote/branch. The target directory keeps its own repository, independent
// of any repository the source tree lives in.
func (c *Client) Deploy(ctx context.Context) error {
	target := c.settings.Target
	deployCfg := c.settings.Deploy
	if deployCfg.Remote == "" {
		return qerrors.New(qerrors.CategoryConfig, qerrors.SeverityFatal, "deploy.remote is not configured")
	}

	repo, err := c.openOrInit(target, deployCfg.Branch)
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to get worktree")
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to stage site")
	}

	status, err := worktree.Status()
	if err != nil {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to read status")
	}
	if status.IsClean() {
		slog.Info("Nothing to deploy, tree unchanged", logfields.Target(target))
		return nil
	}

	commit, err := worktree.Commit(fmt.Sprintf("Deploy %s", time.Now().Format(time.RFC3339)), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "quine",
			Email: "quine@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to commit site")
	}

	if err := c.ensureRemote(repo, deployCfg.Remote); err != nil {
		return err
	}

	auth, err := authentication(deployCfg.Auth)
	if err != nil {
		return err
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", deployCfg.Branch, deployCfg.Branch))
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       auth,
		Force:      true,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal,
			"failed to push to "+deployCfg.Remote)
	}

	slog.Info("Site deployed",
		logfields.Target(target),
		slog.String("remote", deployCfg.Remote),
		slog.String("branch", deployCfg.Branch),
		slog.String("commit", commit.String()[:8]))
	return nil
}

// openOrInit opens the repository embedded in the target directory, creating
// it on the deploy branch if this is the first deploy.
func (c *Client) openOrInit(target, branch string) (*git.Repository, error) {
	if _, err := os.Stat(filepath.Join(target, ".git")); err == nil {
		repo, err := git.PlainOpen(target)
		if err != nil {
			return nil, qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to open deploy repository")
		}
		return repo, nil
	}

	repo, err := git.PlainInitWithOptions(target, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(branch),
		},
	})
	if err != nil {
		return nil, qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to init deploy repository")
	}
	slog.Debug("Initialized deploy repository", logfields.Target(target), slog.String("branch", branch))
	return repo, nil
}

// ensureRemote points the deploy remote at the configured URL, replacing a
// stale one.
func (c *Client) ensureRemote(repo *git.Repository, url string) error {
	remote, err := repo.Remote(remoteName)
	if err == nil {
		if len(remote.Config().URLs) > 0 && remote.Config().URLs[0] == url {
			return nil
		}
		if err := repo.DeleteRemote(remoteName); err != nil {
			return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to replace deploy remote")
		}
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: remoteName,
		URLs: []string{url},
	})
	if err != nil {
		return qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal, "failed to create deploy remote")
	}
	return nil
}

// authentication creates a transport auth method from config.
func authentication(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth.IsZero() {
		return nil, nil
	}
	switch auth.Type {
	case config.AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, qerrors.Wrap(err, qerrors.CategoryGit, qerrors.SeverityFatal,
				"failed to load SSH key from "+keyPath)
		}
		return publicKeys, nil

	case config.AuthTypeToken:
		if auth.Token == "" {
			return nil, qerrors.New(qerrors.CategoryConfig, qerrors.SeverityFatal, "token authentication requires a token")
		}
		return &http.BasicAuth{Username: "token", Password: auth.Token}, nil

	case config.AuthTypeBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, qerrors.New(qerrors.CategoryConfig, qerrors.SeverityFatal, "basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil

	default:
		return nil, qerrors.New(qerrors.CategoryConfig, qerrors.SeverityFatal,
			fmt.Sprintf("unsupported authentication type: %s", auth.Type))
	}
}
