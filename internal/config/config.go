package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/rht/internal/ast"
)

// Config file names looked up in the project root and the home directory.
const (
	KDLFileName  = ".rht.kdl"
	TOMLFileName = ".rht.toml"
)

// Defaults shared by the loaders.
const (
	DefaultMaxFileSize     = 8 * 1024 * 1024
	DefaultWatchDebounceMs = 300
)

type Config struct {
	Version int      `toml:"version"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Project Project  `toml:"project"`
	Log     Log      `toml:"log"`
	Extract Extract  `toml:"extract"`
	Watch   Watch    `toml:"watch"`
}

type Project struct {
	Root string `toml:"root"`
	Name string `toml:"name"`
}

type Log struct {
	Info bool `toml:"info"` // Enable the "I: " informational stream
}

type Extract struct {
	Workers          int      `toml:"workers"` // 0 = auto-detect (NumCPU-1)
	Kinds            []string `toml:"kinds"`   // Cursor kind names to report, e.g. "ClassDecl"
	MaxFileSize      int64    `toml:"max_file_size"`
	FollowSymlinks   bool     `toml:"follow_symlinks"`
	RespectGitignore bool     `toml:"respect_gitignore"`
}

type Watch struct {
	DebounceMs int `toml:"debounce_ms"`
}

// DefaultKinds are the declaration kinds reported when no filter is set.
var DefaultKinds = []string{
	ast.KindNamespace.String(),
	ast.KindClassDecl.String(),
	ast.KindStructDecl.String(),
	ast.KindUnionDecl.String(),
	ast.KindClassTemplate.String(),
	ast.KindEnumDecl.String(),
	ast.KindFunctionDecl.String(),
	ast.KindFunctionTemplate.String(),
	ast.KindCXXMethod.String(),
	ast.KindConstructor.String(),
	ast.KindDestructor.String(),
	ast.KindFieldDecl.String(),
	ast.KindTypedefDecl.String(),
	ast.KindTypeAliasDecl.String(),
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		Version: 1,
		Project: Project{Root: cwd},
		Extract: Extract{
			Workers:          0,
			Kinds:            append([]string(nil), DefaultKinds...),
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
		},
		Watch: Watch{DebounceMs: DefaultWatchDebounceMs},
		Include: []string{
			"**/*.{h,hh,hpp,hxx,inl}",
			"**/*.{c,cc,cpp,cxx}",
		},
		Exclude: getDefaultExclusions(),
	}
}

func getDefaultExclusions() []string {
	return []string{
		// VCS metadata and hidden directories
		"**/.git/**",
		"**/.*/**",

		// Build trees
		"**/build/**",
		"**/out/**",
		"**/cmake-build-*/**",
		"**/CMakeFiles/**",
		"**/bazel-*/**",
		"**/_deps/**",

		// Vendored dependencies
		"**/third_party/**",
		"**/external/**",
		"**/vcpkg_installed/**",
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot layers the project config over the global one in the home
// directory. path names an explicit config file and wins over both.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	if path != "" {
		cfg, err := loadFile(path, rootDir, nil)
		if err != nil {
			return nil, err
		}
		return cfg, ValidateConfig(cfg)
	}

	// Step 1: global base config from ~/.rht.kdl or ~/.rht.toml
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := loadDir(homeDir, nil); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config, read over the global one
	projectConfig, err := loadDir(searchDir, baseConfig)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = projectConfig
		cfg.Exclude = mergeExclusions(baseConfig.Exclude, projectConfig.Exclude)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project = Project{Root: absOr(searchDir)}
		cfg = baseConfig
	default:
		cfg = Default()
		cfg.Project.Root = absOr(searchDir)
		cfg.EnrichExclusionsWithBuildArtifacts()
	}
	return cfg, ValidateConfig(cfg)
}

// LoadFile loads a single config file, choosing the format by extension.
func LoadFile(path string) (*Config, error) {
	return loadFile(path, "", nil)
}

// loadFile parses path over base, or over the defaults when base is nil. A
// config without a project root gets rootDir, or the directory holding the
// file when rootDir is empty.
func loadFile(path, rootDir string, base *Config) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg *Config
	switch filepath.Ext(path) {
	case ".toml":
		cfg, err = decodeTOML(content, overlayBase(base))
	default:
		cfg, err = decodeKDL(string(content), overlayBase(base))
	}
	if err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" && rootDir != "" {
		cfg.Project.Root = absOr(rootDir)
	}
	resolveRoot(cfg, filepath.Dir(path))
	return cfg, nil
}

// parseBase is the starting point of the file parsers: defaults with the
// project root left for resolveRoot.
func parseBase() *Config {
	cfg := Default()
	cfg.Project.Root = ""
	return cfg
}

// overlayBase is the starting point for a file read over base: a copy of
// base without its project identity.
func overlayBase(base *Config) *Config {
	if base == nil {
		return parseBase()
	}
	cfg := *base
	cfg.Project = Project{}
	cfg.Include = append([]string(nil), base.Include...)
	cfg.Exclude = append([]string(nil), base.Exclude...)
	cfg.Extract.Kinds = append([]string(nil), base.Extract.Kinds...)
	return &cfg
}

// loadDir returns the KDL or TOML config in dir read over base, or nil when
// neither exists. KDL wins when both are present.
func loadDir(dir string, base *Config) (*Config, error) {
	for _, name := range []string{KDLFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return loadFile(path, "", base)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return nil, nil
}

// resolveRoot makes the project root absolute, relative to the directory
// holding the config file.
func resolveRoot(cfg *Config, configDir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = absOr(configDir)
		return
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(absOr(configDir), cfg.Project.Root)
	}
	cfg.Project.Root = filepath.Clean(cfg.Project.Root)
}

func absOr(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// mergeExclusions keeps the global exclusions when a project config sets
// its own.
func mergeExclusions(base, project []string) []string {
	return DeduplicatePatterns(append(append([]string(nil), base...), project...))
}

// EnrichExclusionsWithBuildArtifacts adds the build directories found under
// the project root to the exclusion list.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	if detected := detector.DetectOutputDirectories(); len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}

// KindFilter resolves Extract.Kinds to cursor kinds.
func (c *Config) KindFilter() ([]ast.Kind, error) {
	kinds := make([]ast.Kind, 0, len(c.Extract.Kinds))
	for _, name := range c.Extract.Kinds {
		k, ok := ast.ParseKind(name)
		if !ok {
			if suggestion := closestKind(name); suggestion != "" {
				return nil, fmt.Errorf("unknown cursor kind %q (did you mean %q?)", name, suggestion)
			}
			return nil, fmt.Errorf("unknown cursor kind %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// closestKind returns the kind name within two edits of name, ignoring
// case, or "" when none is that close.
func closestKind(name string) string {
	lower := strings.ToLower(name)
	best, bestDistance := "", 3
	for k := ast.KindTranslationUnit; k <= ast.KindCompoundStmt; k++ {
		if d := edlib.LevenshteinDistance(lower, strings.ToLower(k.String())); d < bestDistance {
			best, bestDistance = k.String(), d
		}
	}
	return best
}

// WorkerCount returns Extract.Workers, or NumCPU-1 (at least 1) when unset.
func (c *Config) WorkerCount() int {
	if c.Extract.Workers > 0 {
		return c.Extract.Workers
	}
	return max(1, runtime.NumCPU()-1)
}
