package hooks

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
)

func shell(script string) config.CommandConfig {
	return config.CommandConfig{Command: []string{"sh", "-c", script}}
}

func TestEnvironmentVars(t *testing.T) {
	env := Environment{Refresh: true, ContentDir: "content", OutputDir: "output", DataDir: "data"}
	vars := env.Vars()
	assert.Contains(t, vars, "ATTACK_REFRESH=true")
	assert.Contains(t, vars, "ATTACK_NO_STIX_LINK_REPLACEMENT=false")
	assert.Contains(t, vars, "ATTACK_CONTENT_DIR=content")
	for _, v := range vars {
		assert.False(t, strings.HasPrefix(v, "HTTP_PROXY="), "no proxy vars without a proxy")
	}

	env.Proxy = "http://proxy:3128"
	vars = env.Vars()
	assert.Contains(t, vars, "ATTACK_PROXY=http://proxy:3128")
	assert.Contains(t, vars, "HTTPS_PROXY=http://proxy:3128")
}

func TestRunStreamsOutputAndEnv(t *testing.T) {
	var stdout, stderr bytes.Buffer
	e := NewExecutor(Environment{OutputDir: "site"}, WithOutput(&stdout, &stderr))

	cmd := shell(`echo "$ATTACK_OUTPUT_DIR $EXTRA"; echo oops >&2`)
	cmd.Env = map[string]string{"EXTRA": "yes"}
	require.NoError(t, e.Run(context.Background(), "techniques", cmd))

	assert.Equal(t, "site yes\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())
}

func TestRunUsesDir(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	e := NewExecutor(Environment{}, WithOutput(&stdout, &stdout))

	cmd := shell("pwd")
	cmd.Dir = dir
	require.NoError(t, e.Run(context.Background(), "search", cmd))
	assert.Contains(t, stdout.String(), dir)
}

func TestRunFailure(t *testing.T) {
	var out bytes.Buffer
	e := NewExecutor(Environment{}, WithOutput(&out, &out))

	err := e.Run(context.Background(), "groups", shell("exit 3"))
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryModule, ce.Category())
	module, _ := ce.Context().GetString("module")
	assert.Equal(t, "groups", module)
	assert.Equal(t, 3, ce.Context()["exit_code"])
}

func TestRunUnconfigured(t *testing.T) {
	e := NewExecutor(Environment{})
	err := e.Run(context.Background(), "groups", config.CommandConfig{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestRunMissingBinary(t *testing.T) {
	e := NewExecutor(Environment{})
	err := e.Run(context.Background(), "groups", config.CommandConfig{Command: []string{"attackbuild-no-such-binary"}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryModule))
}

func TestOutputCapturesOnFailure(t *testing.T) {
	e := NewExecutor(Environment{})
	out, err := e.Output(context.Background(), "links", shell("echo broken /a.html; exit 1"))
	require.Error(t, err)
	assert.Equal(t, "broken /a.html\n", string(out))

	out, err = e.Output(context.Background(), "links", shell("echo ok"))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(out))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExecutor(Environment{})
	assert.Error(t, e.Run(ctx, "search", shell("sleep 5")))
}

func TestExitCode(t *testing.T) {
	e := NewExecutor(Environment{})
	_, err := e.Output(context.Background(), "links", shell("exit 4"))
	code, ok := ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 4, code)

	_, ok = ExitCode(e.Run(context.Background(), "links", config.CommandConfig{}))
	assert.False(t, ok)
	_, ok = ExitCode(assert.AnError)
	assert.False(t, ok)
}
