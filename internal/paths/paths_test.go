package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDirPrecedence(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{"flag beats env", "/from/flag", "/from/env", "/from/flag"},
		{"env when flag empty", "", "/from/env", "/from/env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfigDirPlatformDefault(t *testing.T) {
	t.Setenv(EnvConfigDir, "")

	switch runtime.GOOS {
	case "linux":
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg/routeticker", got)

		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		got, err = ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "routeticker"), got)
	default:
		base, err := os.UserConfigDir()
		require.NoError(t, err)
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "routeticker"), got)
	}
}

func TestResolveDataDirPrecedence(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name        string
		flag        string
		configValue string
		env         string
		want        string
	}{
		{"flag beats everything", "/from/flag", "/from/config", "/from/env", "/from/flag"},
		{"config value beats env", "", "/from/config", "/from/env", "/from/config"},
		{"env when the rest are empty", "", "", "/from/env", "/from/env"},
		{"repo-local default", "", "", "", filepath.Join(cwd, DefaultDataDirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := ResolveDataDir(tt.flag, tt.configValue)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMakesRelativePathsAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "relative/env")

	got, err := ResolveConfigDir("relative/flag")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "config dir %q is not absolute", got)

	got, err = ResolveDataDir("", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "data dir %q is not absolute", got)
}
