package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Commands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		args  []string
		check func(t *testing.T, inv *Invocation)
	}{
		{
			name: "discover with globs",
			args: []string{"discover", "-r", "defs", "--exclude", "**/drafts/**", "--include", "**/*.yaml"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandDiscover, inv.Command)
				assert.Equal(t, "defs", inv.Config.RootPath)
				assert.Equal(t, []string{"**/drafts/**"}, inv.Config.Exclude)
				assert.Equal(t, []string{"**/*.yaml"}, inv.Config.Include)
			},
		},
		{
			name: "generate one",
			args: []string{"generate", "CustomerPage", "--root", "defs", "--format", "yaml"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandGenerate, inv.Command)
				assert.Equal(t, "CustomerPage", inv.Primary)
				assert.False(t, inv.All)
				assert.Equal(t, "yaml", inv.Config.OutputFormat)
			},
		},
		{
			name: "generate all",
			args: []string{"generate", "--all", "--root", "defs", "-o", "out"},
			check: func(t *testing.T, inv *Invocation) {
				assert.True(t, inv.All)
				assert.Equal(t, "out", inv.Config.OutputDir)
			},
		},
		{
			name: "validate definition",
			args: []string{"validate", "--definition", "CustomerRow", "--root", "defs"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandValidate, inv.Command)
				assert.Equal(t, "CustomerRow", inv.Definition)
				assert.Empty(t, inv.Primary)
			},
		},
		{
			name: "exec with json content",
			args: []string{"exec", "setVals", `{"a": 1}`, "--root", "defs"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, "setVals", inv.Action)
				assert.True(t, inv.Content.IsObject())
			},
		},
		{
			name: "exec with plain content",
			args: []string{"exec", "openModal", "Confirm", "--root", "defs"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, "Confirm", inv.Content.Text())
			},
		},
		{
			name: "exec without content",
			args: []string{"exec", "log", "--root", "defs"},
			check: func(t *testing.T, inv *Invocation) {
				assert.True(t, inv.Content.IsNull())
			},
		},
		{
			name: "render",
			args: []string{"render", "CustomerPage", "--root", "defs", "--match-policy", "contains"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandRender, inv.Command)
				assert.Equal(t, "contains", inv.Config.MatchPolicy)
			},
		},
		{
			name: "serve",
			args: []string{"serve", "--root", "defs", "-p", "9000", "--watch", "--debounce", "1s"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandServe, inv.Command)
				assert.Equal(t, 9000, inv.Config.Port)
				assert.True(t, inv.Config.Watch)
				assert.Equal(t, time.Second, inv.Config.Debounce)
			},
		},
		{
			name: "watch",
			args: []string{"watch", "--root", "defs", "--log-format", "json", "--log-level", "debug"},
			check: func(t *testing.T, inv *Invocation) {
				assert.Equal(t, CommandWatch, inv.Command)
				assert.Equal(t, "json", inv.Config.LogFormat)
				assert.Equal(t, "debug", inv.Config.LogLevel)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inv, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.False(t, shouldExit)
			require.NotNil(t, inv)
			tc.check(t, inv)
		})
	}
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{}, {"-h"}, {"generate", "--help"}} {
		out := &bytes.Buffer{}
		inv, shouldExit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, shouldExit)
		assert.Nil(t, inv)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"discover", "--this-is-not-a-valid-flag"}, "unknown flag: --this-is-not-a-valid-flag"},
		{"unknown command", []string{"launch"}, `unknown command "launch"`},
		{"missing root", []string{"discover"}, "RootPath is a required configuration field"},
		{"generate without target", []string{"generate", "-r", "defs"}, "generate needs a primary eventType or --all"},
		{"generate both", []string{"generate", "X", "--all", "-r", "defs"}, "not both"},
		{"validate without target", []string{"validate", "-r", "defs"}, "validate needs a primary eventType or --definition"},
		{"render without primary", []string{"render", "-r", "defs"}, "accepts 1 arg(s)"},
		{"bad log level", []string{"discover", "-r", "defs", "--log-level", "trace"}, "invalid log level"},
		{"bad debounce", []string{"watch", "-r", "defs", "--debounce", "soon"}, "invalid debounce"},
		{"missing config file", []string{"discover", "-c", "absent.toml"}, "failed to read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.False(t, shouldExit)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

func TestParse_ConfigFilePrecedence(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pagegridgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: from-file\nlogLevel: warn\nport: 7000\n"), 0o600))

	inv, _, err := Parse([]string{"serve", "-c", path, "--log-level", "error"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "from-file", inv.Config.RootPath)
	assert.Equal(t, "error", inv.Config.LogLevel, "explicit flags win over the file")
	assert.Equal(t, 7000, inv.Config.Port, "the file wins over flag defaults")
}
