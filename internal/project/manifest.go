package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project file looked up from the working directory.
const ManifestName = "symbex.toml"

// Manifest is a loaded symbex.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Engine EngineConfig `toml:"engine"`
	Build  BuildConfig  `toml:"build"`
	Trace  TraceConfig  `toml:"trace"`
}

type EngineConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type BuildConfig struct {
	Jobs   int    `toml:"jobs"`
	Cache  bool   `toml:"cache"`
	OutDir string `toml:"out_dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Defaults is the configuration used without a manifest.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{MaxDepth: 1000},
		Build:  BuildConfig{Jobs: 0, Cache: true},
		Trace:  TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// FindManifest walks up from startDir to locate symbex.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// LoadManifest finds and decodes the manifest above startDir. Without one
// it returns ok=false and no error.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes one manifest file over the defaults. Keys the file
// leaves out keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("engine", "max_depth") && cfg.Engine.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("%s: [engine].max_depth must be positive", path)
	}
	if meta.IsDefined("build", "jobs") && cfg.Build.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	if meta.IsDefined("build", "out_dir") && strings.TrimSpace(cfg.Build.OutDir) == "" {
		return Config{}, fmt.Errorf("%s: [build].out_dir is empty", path)
	}
	if cfg.Build.OutDir != "" && !filepath.IsAbs(cfg.Build.OutDir) {
		cfg.Build.OutDir = filepath.Join(filepath.Dir(path), filepath.FromSlash(cfg.Build.OutDir))
	}
	return cfg, nil
}

// Hash summarizes the settings that change specialization output, for
// use in cache keys.
func (c Config) Hash() Digest {
	return HashBytes(fmt.Appendf(nil, "max_depth=%d", c.Engine.MaxDepth))
}
