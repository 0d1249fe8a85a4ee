package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with the given args against a buffer
// and restores the persistent format flag afterwards, since rootCmd is a
// package-level singleton.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		require.NoError(t, rootCmd.PersistentFlags().Set("format", "text"))
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, BuildDate, info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.GOOS)
	assert.Equal(t, runtime.GOARCH, info.GOARCH)
}

func TestVersionCommand_Text(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "Version: "+Version)
	assert.Contains(t, out, "Commit: "+Commit)
	assert.Contains(t, out, "Go Version: "+runtime.Version())
	assert.Contains(t, out, "OS/Arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := executeCommand(t, "version", "--format", "json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestVersionCommand_BadFormat(t *testing.T) {
	_, err := executeCommand(t, "version", "--format", "yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "yaml")
}
