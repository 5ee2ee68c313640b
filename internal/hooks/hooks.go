// Package hooks runs the external programs that build modules delegate to:
// page generators, the site builder and the link checkers.
package hooks

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/logfields"
)

// Environment is the build state exported to every hook.
type Environment struct {
	Refresh               bool
	NoStixLinkReplacement bool
	Proxy                 string
	ContentDir            string
	OutputDir             string
	DataDir               string
}

// Vars returns the environment as KEY=VALUE pairs.
func (e Environment) Vars() []string {
	vars := []string{
		"ATTACK_REFRESH=" + strconv.FormatBool(e.Refresh),
		"ATTACK_NO_STIX_LINK_REPLACEMENT=" + strconv.FormatBool(e.NoStixLinkReplacement),
		"ATTACK_PROXY=" + e.Proxy,
		"ATTACK_CONTENT_DIR=" + e.ContentDir,
		"ATTACK_OUTPUT_DIR=" + e.OutputDir,
		"ATTACK_DATA_DIR=" + e.DataDir,
	}
	if e.Proxy != "" {
		vars = append(vars,
			"HTTP_PROXY="+e.Proxy, "HTTPS_PROXY="+e.Proxy,
			"http_proxy="+e.Proxy, "https_proxy="+e.Proxy,
		)
	}
	return vars
}

// Executor runs configured commands.
type Executor struct {
	env    Environment
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithOutput sets where streamed command output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		if stdout != nil {
			e.stdout = stdout
		}
		if stderr != nil {
			e.stderr = stderr
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExecutor creates an Executor exporting env to every command.
func NewExecutor(env Environment, opts ...Option) *Executor {
	e := &Executor{
		env:    env,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes cmd, streaming its output. A non-zero exit is a module error.
func (e *Executor) Run(ctx context.Context, name string, cmd config.CommandConfig) error {
	c, err := e.command(ctx, name, cmd)
	if err != nil {
		return err
	}
	c.Stdout = e.stdout
	c.Stderr = e.stderr

	e.logger.Info("Running hook", logfields.Module(name), logfields.Command(strings.Join(cmd.Command, " ")))
	if err := c.Run(); err != nil {
		e.logger.Error("Hook failed", logfields.Module(name), logfields.Error(err))
		return e.failure(name, cmd, err)
	}
	return nil
}

// Output executes cmd and returns its combined output. The output is
// returned alongside a failure so callers can report it.
func (e *Executor) Output(ctx context.Context, name string, cmd config.CommandConfig) ([]byte, error) {
	c, err := e.command(ctx, name, cmd)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	c.Stdout = &buf
	c.Stderr = &buf

	e.logger.Debug("Running hook", logfields.Module(name), logfields.Command(strings.Join(cmd.Command, " ")))
	if err := c.Run(); err != nil {
		return buf.Bytes(), e.failure(name, cmd, err)
	}
	return buf.Bytes(), nil
}

func (e *Executor) command(ctx context.Context, name string, cmd config.CommandConfig) (*exec.Cmd, error) {
	if !cmd.Configured() {
		return nil, errors.ConfigError("no command configured").
			Module(name).
			Build()
	}
	path, err := exec.LookPath(cmd.Command[0])
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryModule, "hook binary not found").
			Module(name).
			WithContext("command", cmd.Command[0]).
			Build()
	}

	c := exec.CommandContext(ctx, path, cmd.Command[1:]...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), e.env.Vars()...)
	c.Env = append(c.Env, sortedEnv(cmd.Env)...)
	return c, nil
}

func (e *Executor) failure(name string, cmd config.CommandConfig, err error) error {
	b := errors.WrapError(err, errors.CategoryModule, "hook failed").
		Module(name).
		WithContext("command", strings.Join(cmd.Command, " "))
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		b = b.WithContext("exit_code", exitErr.ExitCode())
	}
	return b.Build()
}

func sortedEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// ExitCode returns the exit status carried by a hook failure.
func ExitCode(err error) (int, bool) {
	ce, ok := errors.AsClassified(err)
	if !ok {
		return 0, false
	}
	code, ok := ce.Context()["exit_code"].(int)
	return code, ok
}
