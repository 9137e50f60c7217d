// handles koshpack.yaml and command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the project root.
const DefaultFile = "koshpack.yaml"

// Features holds toggles that exist in the pipeline but ship disabled.
type Features struct {
	// CopyAssets adds the asset copy plugin (favicon into the output dir).
	CopyAssets bool `yaml:"copyAssets"`
	// ExtractPublicPath passes the public path to the stylesheet extraction loader.
	ExtractPublicPath bool `yaml:"extractPublicPath"`
}

type DevServerConfig struct {
	Port        int  `yaml:"port"`
	Open        bool `yaml:"open"`
	Hot         bool `yaml:"hot"`
	Inline      bool `yaml:"inline"`
	WriteToDisk bool `yaml:"writeToDisk"`
}

type Config struct {
	// Root is the absolute project directory; every relative path hangs off it.
	Root string `yaml:"-"`
	// Signal is the mode signal given with -env; empty means read NODE_ENV.
	Signal string `yaml:"-"`

	SourceDir    string              `yaml:"sourceDir"`
	OutputDir    string              `yaml:"outputDir"`
	PublicPath   string              `yaml:"publicPath"` // defaults to the output dir
	Entry        map[string][]string `yaml:"entry"`
	Template     string              `yaml:"template"` // relative to SourceDir
	HTMLFilename string              `yaml:"htmlFilename"`
	Extensions   []string            `yaml:"extensions"`
	Aliases      map[string]string   `yaml:"aliases"` // short name -> subdir of SourceDir
	CopyFrom     string              `yaml:"copyFrom"`
	DevServer    DevServerConfig     `yaml:"devServer"`
	Features     Features            `yaml:"features"`

	// Emission
	DescriptorPath string `yaml:"descriptorPath"`
	Format         string `yaml:"format"`
	CacheDir       string `yaml:"cacheDir"`
}

// Formats accepted by -format.
var Formats = []string{"json", "yaml", "js"}

// DefaultConfig returns the stock pipeline layout.
func DefaultConfig() *Config {
	return &Config{
		SourceDir:    "src",
		OutputDir:    "dist",
		Entry:        map[string][]string{"main": {"@babel/polyfill", "./index.tsx"}},
		Template:     "./index.html",
		HTMLFilename: "index.html",
		Extensions:   []string{".js", ".jsx", ".ts", ".tsx"},
		Aliases: map[string]string{
			"@core":       "core",
			"@components": "components",
			"@src":        "",
		},
		CopyFrom: "assets/favicon.png",
		DevServer: DevServerConfig{
			Port:   9000,
			Open:   true,
			Hot:    true,
			Inline: true,
		},
		DescriptorPath: "koshpack.descriptor.json",
		Format:         "json",
		CacheDir:       ".koshpack-cache",
	}
}

// Load reads the config file (koshpack.yaml unless -config says otherwise)
// and applies command-line overrides. A missing default file means defaults,
// a missing -config file is an error, and a file that fails to parse is
// reported and ignored.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("koshpack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFlag := fs.String("config", DefaultFile, "Path to the config file")
	envFlag := fs.String("env", "", "Mode signal (overrides NODE_ENV)")
	outFlag := fs.String("out", "", "Descriptor output path")
	formatFlag := fs.String("format", "", "Descriptor format: json, yaml or js")
	portFlag := fs.Int("port", 0, "Dev server port")
	copyFlag := fs.Bool("copy-assets", false, "Enable the asset copy plugin")
	publicFlag := fs.Bool("public-path", false, "Pass the public path to the CSS extraction loader")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	configPath, err := filepath.Abs(*configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Root = filepath.Dir(configPath)

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// yaml.v3 merges into existing maps, so maps start empty and are
		// only defaulted when the file leaves them out.
		loaded := DefaultConfig()
		loaded.Entry, loaded.Aliases = nil, nil
		if err := yaml.Unmarshal(data, loaded); err != nil {
			slog.Warn("Failed to parse config, using defaults", "path", configPath, "error", err)
		} else {
			loaded.Root = cfg.Root
			if loaded.Entry == nil {
				loaded.Entry = cfg.Entry
			}
			if loaded.Aliases == nil {
				loaded.Aliases = cfg.Aliases
			}
			cfg = loaded
		}
	case errors.Is(err, os.ErrNotExist):
		if configSet(fs) {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Apply flags that were explicitly set
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "env":
			cfg.Signal = *envFlag
		case "out":
			cfg.DescriptorPath = *outFlag
		case "format":
			cfg.Format = strings.ToLower(*formatFlag)
		case "port":
			cfg.DevServer.Port = *portFlag
		case "copy-assets":
			cfg.Features.CopyAssets = *copyFlag
		case "public-path":
			cfg.Features.ExtractPublicPath = *publicFlag
		}
	})

	cfg.validate()
	return cfg, nil
}

func configSet(fs *flag.FlagSet) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			set = true
		}
	})
	return set
}

// validate clamps values into usable ranges
func (c *Config) validate() {
	if c.SourceDir == "" {
		c.SourceDir = "src"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.HTMLFilename == "" {
		c.HTMLFilename = "index.html"
	}
	if c.DevServer.Port < 1 || c.DevServer.Port > 65535 {
		c.DevServer.Port = 9000
	}
	if c.DescriptorPath == "" {
		c.DescriptorPath = "koshpack.descriptor.json"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".koshpack-cache"
	}
	valid := false
	for _, f := range Formats {
		if c.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		slog.Warn("Unknown descriptor format, using json", "format", c.Format)
		c.Format = "json"
	}
}

// SourcePath is the absolute source root (the engine's context).
func (c *Config) SourcePath() string {
	return c.abs(c.SourceDir)
}

// OutputPath is the absolute output directory.
func (c *Config) OutputPath() string {
	return c.abs(c.OutputDir)
}

// PublicPathOrDefault returns PublicPath, falling back to the output directory.
func (c *Config) PublicPathOrDefault() string {
	if c.PublicPath != "" {
		return c.PublicPath
	}
	return c.OutputPath()
}

// TemplatePath is the absolute path of the HTML template.
func (c *Config) TemplatePath() string {
	if filepath.IsAbs(c.Template) {
		return filepath.Clean(c.Template)
	}
	return filepath.Join(c.SourcePath(), c.Template)
}

// AliasPaths resolves Aliases against the source root.
func (c *Config) AliasPaths() map[string]string {
	out := make(map[string]string, len(c.Aliases))
	for name, dir := range c.Aliases {
		out[name] = filepath.Join(c.SourcePath(), dir)
	}
	return out
}

// DescriptorFile is the absolute path the descriptor is written to.
func (c *Config) DescriptorFile() string {
	return c.abs(c.DescriptorPath)
}

// CachePath is the absolute history store directory.
func (c *Config) CachePath() string {
	return c.abs(c.CacheDir)
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
