// Build tree detection for C and C++ projects. Out-of-source build
// directories hold generated headers and copied sources that would otherwise
// be reported twice.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// BuildArtifactDetector finds build output directories below a project root
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns exclusion globs such as "**/build-debug/**"
// for every build tree it recognizes.
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectBuildDirectories()...)
	patterns = append(patterns, bad.detectCMakePresets()...)
	return DeduplicatePatterns(patterns)
}

// detectBuildDirectories looks at the top-level directories for the marker
// files CMake and Meson leave in a configured build tree.
func (bad *BuildArtifactDetector) detectBuildDirectories() []string {
	entries, err := os.ReadDir(bad.projectRoot)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(bad.projectRoot, e.Name())
		for _, marker := range []string{"CMakeCache.txt", "build.ninja", "meson-private"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				patterns = append(patterns, "**/"+e.Name()+"/**")
				break
			}
		}
	}
	return patterns
}

// detectCMakePresets reads binaryDir from CMakePresets.json. Only the part
// before the first macro is usable: "${sourceDir}/out/${presetName}" yields
// "out".
func (bad *BuildArtifactDetector) detectCMakePresets() []string {
	var patterns []string
	for _, name := range []string{"CMakePresets.json", "CMakeUserPresets.json"} {
		data, err := os.ReadFile(filepath.Join(bad.projectRoot, name))
		if err != nil {
			continue
		}
		var presets struct {
			ConfigurePresets []struct {
				BinaryDir string `json:"binaryDir"`
			} `json:"configurePresets"`
		}
		if json.Unmarshal(data, &presets) != nil {
			continue
		}
		for _, p := range presets.ConfigurePresets {
			if dir := presetDirectory(p.BinaryDir); dir != "" {
				patterns = append(patterns, "**/"+dir+"/**")
			}
		}
	}
	return patterns
}

func presetDirectory(binaryDir string) string {
	if filepath.IsAbs(binaryDir) {
		return ""
	}
	dir := strings.TrimPrefix(binaryDir, "${sourceDir}/")
	if i := strings.Index(dir, "${"); i >= 0 {
		dir = dir[:i]
	}
	dir = strings.Trim(filepath.ToSlash(dir), "/")
	if dir == "" || strings.HasPrefix(dir, "..") {
		return ""
	}
	return dir
}

// DeduplicatePatterns removes duplicate exclusion patterns
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}

func baseName(root string) string {
	name := filepath.Base(root)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
