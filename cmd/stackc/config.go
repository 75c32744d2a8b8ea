package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"stackc/internal/layout"
)

const configFileName = "stackc.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project projectSection `toml:"project"`
	Build   buildSection   `toml:"build"`
	Layout  layoutSection  `toml:"layout"`
	Trace   traceSection   `toml:"trace"`
}

type projectSection struct {
	Name  string   `toml:"name"`
	Units []string `toml:"units"`
}

type buildSection struct {
	OutDir   string `toml:"out_dir"`
	Jobs     int    `toml:"jobs"`
	Listing  bool   `toml:"listing"`
	Cache    bool   `toml:"cache"`
	CacheDir string `toml:"cache_dir"`
}

type layoutSection struct {
	RefSize    int `toml:"ref_size"`
	RefAlign   int `toml:"ref_align"`
	HeaderSize int `toml:"header_size"`
}

type traceSection struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaultConfig() projectConfig {
	def := layout.Linear32()
	return projectConfig{
		Build: buildSection{
			OutDir:  "out",
			Listing: true,
			Cache:   true,
		},
		Layout: layoutSection{
			RefSize:    def.RefSize,
			HeaderSize: def.HeaderSize,
		},
		Trace: traceSection{Level: "off", Format: "auto"},
	}
}

// target converts the [layout] section. A ref_align of 0 follows ref_size.
func (c *projectConfig) target() layout.Target {
	align := c.Layout.RefAlign
	if align == 0 {
		align = c.Layout.RefSize
	}
	return layout.Target{
		Name:       fmt.Sprintf("linear%d", c.Layout.RefSize*8),
		RefSize:    c.Layout.RefSize,
		RefAlign:   align,
		HeaderSize: c.Layout.HeaderSize,
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds stackc.toml at or above startDir. Without one the
// defaults apply and Root is startDir.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findConfig(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return &projectManifest{Root: startDir, Config: defaultConfig()}, false, nil
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %v", path, undecoded)
	}
	if cfg.Build.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if err := cfg.target().Validate(); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [layout]: %w", path, err)
	}
	return cfg, nil
}
