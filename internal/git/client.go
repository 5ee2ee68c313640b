package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/attackbuild/internal/logfields"
)

// Source identifies the remote branch a checkout tracks.
type Source struct {
	URL    string
	Branch string
	// Depth limits fetched history; zero or negative fetches everything.
	Depth int
}

// Client handles Git operations
type Client struct {
	proxy    transport.ProxyOptions
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes clone and fetch traffic through a proxy URL.
func WithProxy(url string) Option {
	return func(c *Client) { c.proxy = transport.ProxyOptions{URL: url} }
}

// WithProgress streams remote progress messages to w.
func WithProgress(w io.Writer) Option {
	return func(c *Client) { c.progress = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new Git client.
func NewClient(opts ...Option) *Client {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exists reports whether path holds a git checkout.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// Sync brings the checkout at path to the head of src, cloning when no
// checkout exists. It returns the checked out commit.
func (c *Client) Sync(ctx context.Context, src Source, path string) (plumbing.Hash, error) {
	if !Exists(path) {
		c.logger.Debug("Repository missing, cloning", logfields.Path(path))
		return c.Clone(ctx, src, path)
	}
	return c.Update(ctx, src, path)
}

// Clone replaces path with a fresh clone of src.
func (c *Client) Clone(ctx context.Context, src Source, path string) (plumbing.Hash, error) {
	c.logger.Debug("Cloning repository", logfields.URL(src.URL), slog.String("branch", src.Branch), logfields.Path(path))
	if err := os.RemoveAll(path); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to remove existing directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:          src.URL,
		Progress:     c.progress,
		Tags:         git.NoTags,
		ProxyOptions: c.proxy,
	}
	if src.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(src.Branch)
		opts.SingleBranch = true
	}
	if src.Depth > 0 {
		opts.Depth = src.Depth
	}

	repository, err := git.PlainCloneContext(ctx, path, false, opts)
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(err, "clone", src.URL)
	}
	ref, err := repository.Head()
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(err, "clone", src.URL)
	}
	c.logger.Info("Repository cloned successfully",
		logfields.URL(src.URL),
		slog.String("commit", shortHash(ref.Hash())),
		logfields.Path(path))
	return ref.Hash(), nil
}

// Update fetches src into the checkout at path and hard resets the local
// branch to the remote head. Local changes are discarded.
func (c *Client) Update(ctx context.Context, src Source, path string) (plumbing.Hash, error) {
	repository, err := git.PlainOpen(path)
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(fmt.Errorf("open repo: %w", err), "update", src.URL)
	}

	branch, err := resolveTargetBranch(repository, src)
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(err, "update", src.URL)
	}

	if err := c.fetchOrigin(ctx, repository, src, branch); err != nil {
		return plumbing.ZeroHash, ClassifyGitError(err, "fetch", src.URL)
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(fmt.Errorf("remote ref: %w", err), "update", src.URL)
	}

	wt, err := repository.Worktree()
	if err != nil {
		return plumbing.ZeroHash, ClassifyGitError(fmt.Errorf("worktree: %w", err), "update", src.URL)
	}
	if err := checkoutBranch(repository, wt, branch, remoteRef.Hash()); err != nil {
		return plumbing.ZeroHash, ClassifyGitError(err, "update", src.URL)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return plumbing.ZeroHash, ClassifyGitError(fmt.Errorf("hard reset: %w", err), "update", src.URL)
	}

	c.logger.Info("Repository updated",
		slog.String("branch", branch),
		slog.String("commit", shortHash(remoteRef.Hash())),
		logfields.Path(path))
	return remoteRef.Hash(), nil
}

// fetchOrigin fetches branch from origin with the configured depth and proxy.
func (c *Client) fetchOrigin(ctx context.Context, repository *git.Repository, src Source, branch string) error {
	refSpec := ggitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", branch, branch))
	opts := &git.FetchOptions{
		RemoteName:   "origin",
		RemoteURL:    src.URL,
		RefSpecs:     []ggitcfg.RefSpec{refSpec},
		Tags:         git.NoTags,
		Progress:     c.progress,
		Force:        true,
		ProxyOptions: c.proxy,
	}
	if src.Depth > 0 {
		opts.Depth = src.Depth
	}
	if err := repository.FetchContext(ctx, opts); err != nil && !stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

// resolveTargetBranch prefers the configured branch, then the current HEAD
// branch, then "master".
func resolveTargetBranch(repository *git.Repository, src Source) (string, error) {
	if src.Branch != "" {
		return src.Branch, nil
	}
	if headRef, err := repository.Head(); err == nil && headRef.Name().IsBranch() {
		return headRef.Name().Short(), nil
	}
	return "master", nil
}

// checkoutBranch checks out branch, creating it at hash when missing.
func checkoutBranch(repository *git.Repository, wt *git.Worktree, branch string, hash plumbing.Hash) error {
	local := plumbing.NewBranchReferenceName(branch)
	if _, err := repository.Reference(local, true); err != nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Hash: hash, Create: true, Force: true}); err != nil {
			return fmt.Errorf("checkout new branch: %w", err)
		}
		return nil
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: local, Force: true}); err != nil {
		return fmt.Errorf("checkout existing branch: %w", err)
	}
	return nil
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:8]
}
