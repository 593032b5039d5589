// Package config holds the settings that drive a fork sync run.
//
// A Config is built once at startup from compiled-in defaults, optionally
// overlaid with a YAML file, and then passed by value to everything that
// needs it. Nothing changes it after Load returns.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-repository directory holding grove files.
	DirName = ".grove"
	// FileName is the config file looked up inside DirName.
	FileName = "sync.yml"
)

// ErrInvalid is wrapped by every validation and parse failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective, read-only configuration for one run.
type Config struct {
	ProjectName     string `yaml:"project_name"`
	UpstreamURL     string `yaml:"upstream_url"`
	MainBranch      string `yaml:"main_branch"`
	UpstreamRemote  string `yaml:"upstream_remote"`
	OriginRemote    string `yaml:"origin_remote"`
	AutoStash       bool   `yaml:"auto_stash"`
	AutoAddUpstream bool   `yaml:"auto_add_upstream"`
}

// File is the on-disk form of the config. Every field is optional; booleans
// are pointers so an explicit false can be told apart from an absent key.
type File struct {
	ProjectName     string `yaml:"project_name,omitempty" jsonschema:"description=Display name printed in the run banner"`
	UpstreamURL     string `yaml:"upstream_url,omitempty" jsonschema:"description=URL of the original repository the fork tracks"`
	MainBranch      string `yaml:"main_branch,omitempty" jsonschema:"description=Branch merged from upstream and pushed to origin"`
	UpstreamRemote  string `yaml:"upstream_remote,omitempty" jsonschema:"description=Name of the remote pointing at upstream"`
	OriginRemote    string `yaml:"origin_remote,omitempty" jsonschema:"description=Name of the remote pointing at your fork"`
	AutoStash       *bool  `yaml:"auto_stash,omitempty" jsonschema:"description=Stash uncommitted changes before syncing and restore them afterwards"`
	AutoAddUpstream *bool  `yaml:"auto_add_upstream,omitempty" jsonschema:"description=Add the upstream remote when it is missing"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		ProjectName:     "Yuxi-Know",
		UpstreamURL:     "https://github.com/xerrors/Yuxi-Know.git",
		MainBranch:      "main",
		UpstreamRemote:  "upstream",
		OriginRemote:    "origin",
		AutoStash:       true,
		AutoAddUpstream: true,
	}
}

// UpstreamBranch is the remote-tracking ref merged into the main branch,
// e.g. "upstream/main".
func (c Config) UpstreamBranch() string {
	return c.UpstreamRemote + "/" + c.MainBranch
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	fields := []struct {
		key   string
		value string
	}{
		{"project_name", c.ProjectName},
		{"upstream_url", c.UpstreamURL},
		{"main_branch", c.MainBranch},
		{"upstream_remote", c.UpstreamRemote},
		{"origin_remote", c.OriginRemote},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalid, f.key)
		}
	}

	for _, f := range fields[2:] {
		if strings.ContainsAny(f.value, " \t\r\n") {
			return fmt.Errorf("%w: %s %q must not contain whitespace", ErrInvalid, f.key, f.value)
		}
	}

	if c.UpstreamRemote == c.OriginRemote {
		return fmt.Errorf("%w: upstream_remote and origin_remote are both %q", ErrInvalid, c.OriginRemote)
	}
	return nil
}

// Apply overlays the keys present in f onto c.
func (f File) Apply(c Config) Config {
	if f.ProjectName != "" {
		c.ProjectName = f.ProjectName
	}
	if f.UpstreamURL != "" {
		c.UpstreamURL = f.UpstreamURL
	}
	if f.MainBranch != "" {
		c.MainBranch = f.MainBranch
	}
	if f.UpstreamRemote != "" {
		c.UpstreamRemote = f.UpstreamRemote
	}
	if f.OriginRemote != "" {
		c.OriginRemote = f.OriginRemote
	}
	if f.AutoStash != nil {
		c.AutoStash = *f.AutoStash
	}
	if f.AutoAddUpstream != nil {
		c.AutoAddUpstream = *f.AutoAddUpstream
	}
	return c
}

// FindFile walks up from startDir to the directory containing .git and
// returns the path of the config file there. found is false when the file
// does not exist or no .git was seen before reaching the filesystem root.
func FindFile(startDir string) (path string, found bool, err error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			path = filepath.Join(dir, DirName, FileName)
			if _, err := os.Stat(path); err != nil {
				if os.IsNotExist(err) {
					return path, false, nil
				}
				return "", false, fmt.Errorf("stat config file: %w", err)
			}
			return path, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// ReadFile parses a config file.
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		return f, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return f, nil
}

// Load builds the effective configuration. An explicit path must exist;
// otherwise the file is discovered from startDir and is optional. The
// returned source is the file that was applied, or "" for pure defaults.
func Load(startDir, explicitPath string) (cfg Config, source string, err error) {
	cfg = Default()

	path := explicitPath
	if path == "" {
		var found bool
		path, found, err = FindFile(startDir)
		if err != nil {
			return cfg, "", err
		}
		if !found {
			return cfg, "", cfg.Validate()
		}
	}

	f, err := ReadFile(path)
	if err != nil {
		return cfg, "", err
	}

	cfg = f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
