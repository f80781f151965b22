package configpaths_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gyromouse/gyromouse/internal/configpaths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatePathsRouteUserPath(t *testing.T) {
	tests := []struct {
		path  string
		check func(j, y, tm []string) string
	}{
		{"/tmp/a.toml", func(_, _, tm []string) string { return tm[0] }},
		{"/tmp/a.yml", func(_, y, _ []string) string { return y[0] }},
		{"/tmp/a.yaml", func(_, y, _ []string) string { return y[0] }},
		{"/tmp/a.json", func(j, _, _ []string) string { return j[0] }},
		{"/tmp/a.conf", func(j, _, _ []string) string { return j[0] }},
	}
	for _, tt := range tests {
		j, y, tm := configpaths.ConfigCandidatePaths(tt.path)
		assert.Equal(t, tt.path, tt.check(j, y, tm))
	}
}

func TestCandidatePathsIncludeWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	j, y, tm := configpaths.ConfigCandidatePaths("")
	assert.Contains(t, j, filepath.Join(wd, "gyromouse.json"))
	assert.Contains(t, y, filepath.Join(wd, "gyromouse.yml"))
	assert.Contains(t, tm, filepath.Join(wd, "gyromouse.toml"))
	if runtime.GOOS != "windows" {
		assert.Contains(t, j, "/etc/gyromouse/gyromouse.json")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses XDG_CONFIG_HOME")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := configpaths.DefaultConfigPath("yml")
	require.NoError(t, err)
	assert.Equal(t, "/xdg/gyromouse/gyromouse.yaml", p)

	p, err = configpaths.DefaultConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, "/xdg/gyromouse/gyromouse.json", p)
}
