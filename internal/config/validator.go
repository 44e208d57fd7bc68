package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	rhterrors "github.com/standardbeagle/rht/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return rhterrors.NewConfigError("project", cfg.Project.Root, err)
	}

	if err := v.validateExtractConfig(&cfg.Extract); err != nil {
		return rhterrors.NewConfigError("extract", "", err)
	}

	if cfg.Watch.DebounceMs < 0 {
		return rhterrors.NewConfigError("watch.debounce_ms", strconv.Itoa(cfg.Watch.DebounceMs),
			errors.New("debounce cannot be negative"))
	}

	for _, field := range []struct {
		name     string
		patterns []string
	}{{"include", cfg.Include}, {"exclude", cfg.Exclude}} {
		for _, p := range field.patterns {
			if !doublestar.ValidatePattern(p) {
				return rhterrors.NewConfigError(field.name, p, doublestar.ErrBadPattern)
			}
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateExtractConfig(extract *Extract) error {
	// Workers: 0 means auto-detect
	if extract.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", extract.Workers)
	}

	if extract.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size cannot be negative, got %d", extract.MaxFileSize)
	}

	if extract.MaxFileSize > 256*1024*1024 {
		return fmt.Errorf("max_file_size should not exceed 256MB, got %d", extract.MaxFileSize)
	}

	cfg := Config{Extract: *extract}
	if _, err := cfg.KindFilter(); err != nil {
		return err
	}
	return nil
}

// setSmartDefaults fills the settings a config file may leave at zero.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Extract.MaxFileSize == 0 {
		cfg.Extract.MaxFileSize = DefaultMaxFileSize
	}

	if len(cfg.Extract.Kinds) == 0 {
		cfg.Extract.Kinds = append([]string(nil), DefaultKinds...)
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = baseName(cfg.Project.Root)
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
