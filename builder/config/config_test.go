package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// changeToTempDir changes to a temp directory and returns a cleanup function
func changeToTempDir(t *testing.T) func() {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
	return func() {
		if err := os.Chdir(originalDir); err != nil {
			t.Errorf("Failed to restore original directory: %v", err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SourceDir != "src" {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, "src")
	}
	if cfg.OutputDir != "dist" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "dist")
	}
	if cfg.DevServer.Port != 9000 {
		t.Errorf("DevServer.Port = %d, want 9000", cfg.DevServer.Port)
	}
	if !cfg.DevServer.Hot || !cfg.DevServer.Open || !cfg.DevServer.Inline {
		t.Error("dev server should default to hot, open and inline")
	}
	if cfg.Features.CopyAssets {
		t.Error("CopyAssets should be disabled by default")
	}
	if cfg.Features.ExtractPublicPath {
		t.Error("ExtractPublicPath should be disabled by default")
	}
	if len(cfg.Aliases) != 3 {
		t.Errorf("Aliases = %v, want 3 entries", cfg.Aliases)
	}
	if got := cfg.Entry["main"]; len(got) != 2 || got[1] != "./index.tsx" {
		t.Errorf("Entry[main] = %v", got)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if !filepath.IsAbs(cfg.Root) {
		t.Errorf("Root = %q should be absolute", cfg.Root)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	yamlContent := `
sourceDir: "app"
outputDir: "build"
entry:
  admin: ["./admin.tsx"]
aliases:
  "@lib": "lib"
devServer:
  port: 8080
  open: false
features:
  copyAssets: true
`
	if err := os.WriteFile(DefaultFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SourceDir != "app" {
		t.Errorf("SourceDir = %q, want %q", cfg.SourceDir, "app")
	}
	if cfg.OutputDir != "build" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "build")
	}
	if cfg.DevServer.Port != 8080 {
		t.Errorf("DevServer.Port = %d, want 8080", cfg.DevServer.Port)
	}
	if cfg.DevServer.Open {
		t.Error("DevServer.Open should be false")
	}
	if !cfg.DevServer.Hot {
		t.Error("DevServer.Hot should keep its default")
	}
	if !cfg.Features.CopyAssets {
		t.Error("CopyAssets should be enabled")
	}
	if _, ok := cfg.Entry["main"]; ok {
		t.Error("entry from file should replace the default entry")
	}
	if len(cfg.Aliases) != 1 || cfg.Aliases["@lib"] != "lib" {
		t.Errorf("Aliases = %v, want only @lib", cfg.Aliases)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	if err := os.WriteFile(DefaultFile, []byte("invalid: yaml: content: ["), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load([]string{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.SourceDir != "src" {
		t.Errorf("SourceDir = %q, want default %q", cfg.SourceDir, "src")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	if err := os.WriteFile(DefaultFile, []byte("devServer:\n  port: 8080\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	args := []string{"-env", "development", "-port", "3000", "-format", "YAML", "-out", "out/desc.yaml", "-copy-assets", "-public-path"}
	cfg, err := Load(args)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Signal != "development" {
		t.Errorf("Signal = %q, want development", cfg.Signal)
	}
	if cfg.DevServer.Port != 3000 {
		t.Errorf("DevServer.Port = %d, want 3000", cfg.DevServer.Port)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if cfg.DescriptorFile() != filepath.Join(cfg.Root, "out", "desc.yaml") {
		t.Errorf("DescriptorFile() = %q", cfg.DescriptorFile())
	}
	if !cfg.Features.CopyAssets || !cfg.Features.ExtractPublicPath {
		t.Error("feature flags should be enabled")
	}
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	_, err := Load([]string{"-config", "path/that/does/not/exist.yaml"})
	if err == nil {
		t.Fatal("Load() should fail when -config names a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}

	// The implicit default file may be absent.
	if _, err := Load([]string{"-env", "development"}); err != nil {
		t.Errorf("Load() without -config error = %v", err)
	}
}

func TestLoad_BadFlag(t *testing.T) {
	cleanup := changeToTempDir(t)
	defer cleanup()

	if _, err := Load([]string{"-no-such-flag"}); err == nil {
		t.Error("Load() should fail on unknown flags")
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name   string
		port   int
		format string
		want   int
	}{
		{"zero port", 0, "json", 9000},
		{"negative port", -1, "json", 9000},
		{"too large", 70000, "json", 9000},
		{"valid", 4000, "json", 4000},
		{"unknown format", 4000, "toml", 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DevServer.Port = tt.port
			cfg.Format = tt.format
			cfg.validate()
			if cfg.DevServer.Port != tt.want {
				t.Errorf("Port = %d, want %d", cfg.DevServer.Port, tt.want)
			}
			if cfg.Format != "json" {
				t.Errorf("Format = %q, want json", cfg.Format)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = "/project"

	if got := cfg.SourcePath(); got != "/project/src" {
		t.Errorf("SourcePath() = %q", got)
	}
	if got := cfg.OutputPath(); got != "/project/dist" {
		t.Errorf("OutputPath() = %q", got)
	}
	if got := cfg.PublicPathOrDefault(); got != "/project/dist" {
		t.Errorf("PublicPathOrDefault() = %q", got)
	}
	cfg.PublicPath = "/static/"
	if got := cfg.PublicPathOrDefault(); got != "/static/" {
		t.Errorf("PublicPathOrDefault() = %q", got)
	}
	if got := cfg.TemplatePath(); got != "/project/src/index.html" {
		t.Errorf("TemplatePath() = %q", got)
	}

	aliases := cfg.AliasPaths()
	want := map[string]string{
		"@core":       "/project/src/core",
		"@components": "/project/src/components",
		"@src":        "/project/src",
	}
	for k, v := range want {
		if aliases[k] != v {
			t.Errorf("AliasPaths()[%q] = %q, want %q", k, aliases[k], v)
		}
	}
}

func TestValidate(t *testing.T) {
	newFs := func(files ...string) afero.Fs {
		fs := afero.NewMemMapFs()
		for _, f := range files {
			if err := afero.WriteFile(fs, f, []byte("x"), 0644); err != nil {
				t.Fatalf("write %s: %v", f, err)
			}
		}
		return fs
	}

	tests := []struct {
		name    string
		files   []string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:  "all present",
			files: []string{"/project/src/index.html", "/project/src/index.tsx"},
		},
		{
			name:    "missing template",
			files:   []string{"/project/src/index.tsx"},
			wantErr: ErrMissingPath,
		},
		{
			name:    "missing entry",
			files:   []string{"/project/src/index.html"},
			wantErr: ErrMissingPath,
		},
		{
			name:    "empty template",
			files:   []string{"/project/src/index.tsx"},
			mutate:  func(c *Config) { c.Template = "" },
			wantErr: ErrMalformedPath,
		},
		{
			name:    "no entries",
			files:   []string{"/project/src/index.html"},
			mutate:  func(c *Config) { c.Entry = nil },
			wantErr: ErrMalformedPath,
		},
		{
			name:    "empty entry list",
			files:   []string{"/project/src/index.html"},
			mutate:  func(c *Config) { c.Entry = map[string][]string{"main": {}} },
			wantErr: ErrMalformedPath,
		},
		{
			name:    "template is a directory",
			files:   []string{"/project/src/index.html/keep", "/project/src/index.tsx"},
			wantErr: ErrMalformedPath,
		},
		{
			name:   "package specifiers are not checked",
			files:  []string{"/project/src/index.html"},
			mutate: func(c *Config) { c.Entry = map[string][]string{"vendor": {"react"}} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Root = "/project"
			if tt.mutate != nil {
				tt.mutate(cfg)
			}

			err := cfg.Validate(newFs(tt.files...))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsLocalSpecifier(t *testing.T) {
	tests := map[string]bool{
		"./index.tsx":     true,
		"../shared/a.ts":  true,
		"/abs/entry.ts":   true,
		"@babel/polyfill": false,
		"react":           false,
	}
	for spec, want := range tests {
		if got := IsLocalSpecifier(spec); got != want {
			t.Errorf("IsLocalSpecifier(%q) = %v, want %v", spec, got, want)
		}
	}
}
