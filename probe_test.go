//go:build !windows

package featurecheck

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTool creates an executable shell script acting as the build tool.
func writeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakecargo")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestExecRunner_Run(t *testing.T) {
	t.Run("success streams output", func(t *testing.T) {
		tool := writeTool(t, `echo "out:$*"; echo "err:$1" >&2`)
		var stdout, stderr bytes.Buffer

		inv := ExecRunner{}.Run(context.Background(), tool, []string{"check", "--features", "a"}, &stdout, &stderr)
		require.True(t, inv.Success())
		assert.Equal(t, 0, inv.ExitCode)
		assert.Equal(t, "out:check --features a\n", stdout.String())
		assert.Equal(t, "err:check\n", stderr.String())
		assert.Equal(t, []string{"check", "--features", "a"}, inv.Args)
	})

	t.Run("non-zero exit", func(t *testing.T) {
		tool := writeTool(t, "exit 101")

		inv := ExecRunner{}.Run(context.Background(), tool, []string{"check"}, nil, nil)
		assert.False(t, inv.Success())
		assert.Equal(t, 101, inv.ExitCode)
		assert.Error(t, inv.Err)
	})

	t.Run("missing executable", func(t *testing.T) {
		inv := ExecRunner{}.Run(context.Background(), "featurecheck-no-such-tool", []string{"--version"}, nil, nil)
		assert.False(t, inv.Success())
		assert.Equal(t, -1, inv.ExitCode)
		assert.True(t, notFound(inv.Err))
	})
}

func TestProbeTool(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		tool := writeTool(t, `echo "cargo 1.80.0"`)
		assert.NoError(t, ProbeTool(context.Background(), ExecRunner{}, tool))
	})

	t.Run("not on PATH", func(t *testing.T) {
		err := ProbeTool(context.Background(), ExecRunner{}, "featurecheck-no-such-tool")
		assert.ErrorIs(t, err, ErrToolNotFound)
	})

	t.Run("missing absolute path", func(t *testing.T) {
		err := ProbeTool(context.Background(), ExecRunner{}, filepath.Join(t.TempDir(), "cargo"))
		assert.ErrorIs(t, err, ErrToolNotFound)
	})

	t.Run("version query fails", func(t *testing.T) {
		tool := writeTool(t, "exit 3")
		err := ProbeTool(context.Background(), ExecRunner{}, tool)
		assert.ErrorIs(t, err, ErrToolInvocation)
		assert.NotErrorIs(t, err, ErrToolNotFound)
	})
}

func TestToolVersion(t *testing.T) {
	tool := writeTool(t, `printf 'cargo 1.80.0 (376290515 2024-07-16)\nextra\n'`)

	got, err := ToolVersion(context.Background(), ExecRunner{}, tool)
	require.NoError(t, err)
	assert.Equal(t, "cargo 1.80.0 (376290515 2024-07-16)", got)

	_, err = ToolVersion(context.Background(), ExecRunner{}, "featurecheck-no-such-tool")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestVerify_WithExecRunner(t *testing.T) {
	// Fails the check of feature b and the tests of feature c.
	tool := writeTool(t, `
[ "$1" = "--version" ] && exit 0
[ "$1" = "check" ] && [ "$4" = "b" ] && exit 101
[ "$1" = "test" ] && [ "$4" = "c" ] && exit 101
exit 0`)

	var out bytes.Buffer
	v := New(
		WithTool(tool),
		WithManifestPath(writeManifest(t, threeFeatures)),
		WithTargetDir(filepath.Join(t.TempDir(), "features_check")),
		WithTests(true),
		WithOutput(&out),
		WithToolOutput(nil, nil),
	)

	report, err := v.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, report.CompileFailures)
	assert.Equal(t, []string{"c"}, report.TestFailures)
}
