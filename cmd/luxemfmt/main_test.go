package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// withCapturedStdout runs fn with os.Stdout replaced by a pipe and returns
// everything written to it. The fmt/validate commands write straight to
// os.Stdout (as a small reformatting CLI naturally does), so capturing at
// the os.Stdout level is the only way to assert on their output without
// shelling out to a built binary.
func withCapturedStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func withStdin(t *testing.T, content string, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()

	go func() {
		_, _ = w.Write([]byte(content))
		_ = w.Close()
	}()

	fn()
}

func TestFmtCommandCompact(t *testing.T) {
	fmtPretty, fmtSpaces, fmtIndent = false, false, 1
	var out string
	withStdin(t, "{b: 2, a: 1}", func() {
		out = withCapturedStdout(t, func() {
			err := runFmt(fmtCmd, nil)
			require.NoError(t, err)
		})
	})
	require.Equal(t, "{b: 2,a: 1,},", out)
}

func TestFmtCommandPretty(t *testing.T) {
	fmtPretty, fmtSpaces, fmtIndent = true, true, 1
	defer func() { fmtPretty, fmtSpaces, fmtIndent = false, false, 1 }()
	var out string
	withStdin(t, "{a:1}", func() {
		out = withCapturedStdout(t, func() {
			err := runFmt(fmtCmd, nil)
			require.NoError(t, err)
		})
	})
	require.Equal(t, "{\n a: 1,\n},\n", out)
}

func TestValidateCommandOK(t *testing.T) {
	var out string
	withStdin(t, "{a:1}", func() {
		out = withCapturedStdout(t, func() {
			err := runValidate(validateCmd, nil)
			require.NoError(t, err)
		})
	})
	require.Equal(t, "ok\n", out)
}

func TestValidateCommandReportsParseError(t *testing.T) {
	withStdin(t, "{a:1", func() {
		err := runValidate(validateCmd, nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unclosed_container")
	})
}

func TestFmtCommandReadsFromFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "doc-*.luxem")
	require.NoError(t, err)
	_, err = f.WriteString("[1,2,3]")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fmtPretty, fmtSpaces, fmtIndent = false, false, 1
	out := withCapturedStdout(t, func() {
		err := runFmt(fmtCmd, []string{f.Name()})
		require.NoError(t, err)
	})
	require.Equal(t, "[1,2,3,],", out)
}
