package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepo creates a directory that looks like a git checkout and returns it.
func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	return root
}

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	path := filepath.Join(root, DirName, FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "main", cfg.MainBranch)
	assert.Equal(t, "upstream/main", cfg.UpstreamBranch())
	assert.True(t, cfg.AutoStash)
	assert.True(t, cfg.AutoAddUpstream)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{
			name:   "Defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:          "Empty upstream URL",
			mutate:        func(c *Config) { c.UpstreamURL = "  " },
			errorContains: "upstream_url must not be empty",
		},
		{
			name:          "Empty branch",
			mutate:        func(c *Config) { c.MainBranch = "" },
			errorContains: "main_branch must not be empty",
		},
		{
			name:          "Whitespace in remote name",
			mutate:        func(c *Config) { c.UpstreamRemote = "up stream" },
			errorContains: "must not contain whitespace",
		},
		{
			name: "Same remote for upstream and origin",
			mutate: func(c *Config) {
				c.UpstreamRemote = "origin"
			},
			errorContains: "both \"origin\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	root := newRepo(t)

	cfg, source, err := Load(root, "")
	require.NoError(t, err)
	assert.Empty(t, source)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDiscoversFileFromSubdirectory(t *testing.T) {
	root := newRepo(t)
	path := writeConfig(t, root, `
project_name: demo
upstream_url: https://example.com/demo.git
auto_stash: false
`)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg, source, err := Load(sub, "")
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, "https://example.com/demo.git", cfg.UpstreamURL)
	assert.False(t, cfg.AutoStash, "explicit false must override the default")
	assert.True(t, cfg.AutoAddUpstream, "absent key keeps the default")
	assert.Equal(t, "main", cfg.MainBranch)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("main_branch: develop\nauto_add_upstream: false\n"), 0644))

	cfg, source, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Equal(t, "develop", cfg.MainBranch)
	assert.Equal(t, "upstream/develop", cfg.UpstreamBranch())
	assert.False(t, cfg.AutoAddUpstream)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	root := newRepo(t)
	writeConfig(t, root, "upstream: https://example.com/x.git\n")

	_, _, err := Load(root, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadEmptyFile(t *testing.T) {
	root := newRepo(t)
	writeConfig(t, root, "")

	cfg, _, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadInvalidValues(t *testing.T) {
	root := newRepo(t)
	writeConfig(t, root, "origin_remote: upstream\n")

	_, _, err := Load(root, "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFindFileOutsideRepository(t *testing.T) {
	_, found, err := FindFile(t.TempDir())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMarshal(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "upstream_remote: upstream")
	assert.Contains(t, string(data), "auto_stash: true")
}
