package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrMissingPath means a configured template or entry file does not exist.
	ErrMissingPath = errors.New("path does not exist")
	// ErrMalformedPath means a configured path is empty or unusable.
	ErrMalformedPath = errors.New("malformed path")
)

// Validate checks the template and local entry points on fs. Every problem is
// reported; any error means no descriptor may be handed to the engine.
func (c *Config) Validate(fs afero.Fs) error {
	var errs []error

	if err := checkFile(fs, "template", c.Template, c.TemplatePath()); err != nil {
		errs = append(errs, err)
	}

	if len(c.Entry) == 0 {
		errs = append(errs, fmt.Errorf("entry: no entry points configured: %w", ErrMalformedPath))
	}

	names := make([]string, 0, len(c.Entry))
	for name := range c.Entry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		specs := c.Entry[name]
		if name == "" || len(specs) == 0 {
			errs = append(errs, fmt.Errorf("entry %q: %w", name, ErrMalformedPath))
			continue
		}
		for _, spec := range specs {
			if !IsLocalSpecifier(spec) {
				if spec == "" || strings.ContainsRune(spec, 0) {
					errs = append(errs, fmt.Errorf("entry %q: %q: %w", name, spec, ErrMalformedPath))
				}
				continue
			}
			if err := checkFile(fs, "entry "+name, spec, c.entryPath(spec)); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// IsLocalSpecifier reports whether an entry refers to a file rather than a package.
func IsLocalSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || filepath.IsAbs(spec)
}

func (c *Config) entryPath(spec string) string {
	if filepath.IsAbs(spec) {
		return filepath.Clean(spec)
	}
	return filepath.Join(c.SourcePath(), spec)
}

func checkFile(fs afero.Fs, what, raw, resolved string) error {
	if strings.TrimSpace(raw) == "" || strings.ContainsRune(raw, 0) {
		return fmt.Errorf("%s: %q: %w", what, raw, ErrMalformedPath)
	}
	info, err := fs.Stat(resolved)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", what, resolved, ErrMissingPath)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %s is a directory: %w", what, resolved, ErrMalformedPath)
	}
	return nil
}
