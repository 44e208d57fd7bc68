package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors the KDL layout:
//
//	include = ["**/*.hpp"]
//	[extract]
//	workers = 4
//	kinds = ["ClassDecl", "CXXMethod"]
//
// Pointer fields tell "unset" from a zero value so defaults survive.
type tomlConfig struct {
	Version *int `toml:"version"`
	Project struct {
		Root *string `toml:"root"`
		Name *string `toml:"name"`
	} `toml:"project"`
	Log struct {
		Info *bool `toml:"info"`
	} `toml:"log"`
	Extract struct {
		Workers          *int     `toml:"workers"`
		Kinds            []string `toml:"kinds"`
		MaxFileSize      any      `toml:"max_file_size"`
		FollowSymlinks   *bool    `toml:"follow_symlinks"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
	} `toml:"extract"`
	Watch struct {
		DebounceMs *int `toml:"debounce_ms"`
	} `toml:"watch"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

func parseTOML(content []byte) (*Config, error) {
	return decodeTOML(content, parseBase())
}

// decodeTOML is the TOML counterpart of decodeKDL.
func decodeTOML(content []byte, cfg *Config) (*Config, error) {
	var raw tomlConfig
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	setIf(&cfg.Version, raw.Version)
	setIf(&cfg.Project.Root, raw.Project.Root)
	setIf(&cfg.Project.Name, raw.Project.Name)
	setIf(&cfg.Log.Info, raw.Log.Info)
	setIf(&cfg.Extract.Workers, raw.Extract.Workers)
	setIf(&cfg.Extract.FollowSymlinks, raw.Extract.FollowSymlinks)
	setIf(&cfg.Extract.RespectGitignore, raw.Extract.RespectGitignore)
	setIf(&cfg.Watch.DebounceMs, raw.Watch.DebounceMs)
	if raw.Extract.Kinds != nil {
		cfg.Extract.Kinds = raw.Extract.Kinds
	}
	if raw.Include != nil {
		cfg.Include = raw.Include
	}
	if raw.Exclude != nil {
		cfg.Exclude = raw.Exclude
	}

	switch v := raw.Extract.MaxFileSize.(type) {
	case nil:
	case int64:
		cfg.Extract.MaxFileSize = v
	case string:
		sz, err := parseSize(v)
		if err != nil {
			return nil, fmt.Errorf("invalid max_file_size %q: %w", v, err)
		}
		cfg.Extract.MaxFileSize = sz
	default:
		return nil, fmt.Errorf("invalid max_file_size: expected integer or size string, got %T", v)
	}

	return cfg, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// EncodeTOML renders cfg in the .rht.toml format. The output loads back to
// an equal Config.
func (c *Config) EncodeTOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return data, nil
}
