// defines the descriptor types handed to the external bundling engine
package models

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// BuildMode is the development/production switch every composer keys off.
// The zero value is Production so an unset mode fails safe.
type BuildMode int

const (
	Production BuildMode = iota
	Development
)

// Mode names as the bundling engine spells them.
const (
	DevelopmentName = "development"
	ProductionName  = "production"
)

func (m BuildMode) String() string {
	if m == Development {
		return DevelopmentName
	}
	return ProductionName
}

// IsDev reports whether m is Development.
func (m BuildMode) IsDev() bool {
	return m == Development
}

func (m BuildMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Filename placeholders understood by the bundling engine.
const (
	NamePlaceholder = "[name]"
	HashPlaceholder = "[hash]"
)

// FilenamePattern is an output naming template such as "[name].[hash].js".
type FilenamePattern string

// Hashed reports whether the pattern embeds a content hash.
func (p FilenamePattern) Hashed() bool {
	return strings.Contains(string(p), HashPlaceholder)
}

// Ext returns the asset kind the pattern ends with ("js", "css", ...).
func (p FilenamePattern) Ext() string {
	s := string(p)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// TransformStep is one loader in a rule's chain.
type TransformStep struct {
	Loader  string `json:"loader" yaml:"loader"`
	Options any    `json:"options,omitempty" yaml:"options,omitempty"`
}

// ExtractOptions configures the stylesheet extraction loader.
type ExtractOptions struct {
	HMR        bool   `json:"hmr" yaml:"hmr"`
	PublicPath string `json:"publicPath,omitempty" yaml:"publicPath,omitempty"`
}

// BabelOptions configures the script transpilation loader.
type BabelOptions struct {
	Presets []string `json:"presets" yaml:"presets"`
	Plugins []string `json:"plugins" yaml:"plugins"`
}

// LoaderRule pairs a file matcher with its transform chain.
// Use is declared in engine order: the last step runs first.
type LoaderRule struct {
	Test    string          `json:"test" yaml:"test"`
	Exclude string          `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Use     []TransformStep `json:"use" yaml:"use"`
}

// matchers caches compiled rule patterns. Patterns that fail to compile are
// stored as nil and never match.
var matchers sync.Map // pattern -> *regexp.Regexp

func matcher(pattern string) *regexp.Regexp {
	if re, ok := matchers.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	actual, _ := matchers.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp)
}

// Valid reports whether both matchers of the rule compile.
func (r LoaderRule) Valid() bool {
	return matcher(r.Test) != nil && (r.Exclude == "" || matcher(r.Exclude) != nil)
}

// Matches reports whether path is handled by the rule.
func (r LoaderRule) Matches(path string) bool {
	test := matcher(r.Test)
	if test == nil || !test.MatchString(path) {
		return false
	}
	if r.Exclude != "" {
		if ex := matcher(r.Exclude); ex == nil || ex.MatchString(path) {
			return false
		}
	}
	return true
}

// Minimizer is an output-time optimization pass.
type Minimizer struct {
	Name    string `json:"name" yaml:"name"`
	Package string `json:"package" yaml:"package"`
}

// SplitChunks is the shared chunk policy.
type SplitChunks struct {
	Chunks string `json:"chunks" yaml:"chunks"`
}

// OptimizationConfig holds the chunk policy and ordered minimizers.
// Minimizer is empty outside Production.
type OptimizationConfig struct {
	SplitChunks SplitChunks `json:"splitChunks" yaml:"splitChunks"`
	Minimizer   []Minimizer `json:"minimizer,omitempty" yaml:"minimizer,omitempty"`
}

// PluginDescriptor names a whole-build plugin and its options.
type PluginDescriptor struct {
	Name    string `json:"name" yaml:"name"`
	Package string `json:"package" yaml:"package"`
	Options any    `json:"options,omitempty" yaml:"options,omitempty"`
}

type HTMLMinify struct {
	CollapseWhitespace bool `json:"collapseWhitespace" yaml:"collapseWhitespace"`
}

type HTMLOptions struct {
	Template string     `json:"template" yaml:"template"`
	Filename string     `json:"filename" yaml:"filename"`
	Minify   HTMLMinify `json:"minify" yaml:"minify"`
	Cache    bool       `json:"cache" yaml:"cache"`
}

type CopyPattern struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type CopyOptions struct {
	Patterns []CopyPattern `json:"patterns" yaml:"patterns"`
}

type CSSExtractOptions struct {
	Filename FilenamePattern `json:"filename" yaml:"filename"`
}

type Output struct {
	Filename   FilenamePattern `json:"filename" yaml:"filename"`
	Path       string          `json:"path" yaml:"path"`
	PublicPath string          `json:"publicPath,omitempty" yaml:"publicPath,omitempty"`
}

type Resolve struct {
	Extensions []string          `json:"extensions" yaml:"extensions"`
	Alias      map[string]string `json:"alias" yaml:"alias"`
}

// DevServer is only meaningful when the engine runs in serve mode.
type DevServer struct {
	ContentBase string `json:"contentBase" yaml:"contentBase"`
	Port        int    `json:"port" yaml:"port"`
	Open        bool   `json:"open" yaml:"open"`
	Hot         bool   `json:"hot" yaml:"hot"`
	Inline      bool   `json:"inline" yaml:"inline"`
	WriteToDisk bool   `json:"writeToDisk,omitempty" yaml:"writeToDisk,omitempty"`
}

// Devtool is the source map policy. The empty value disables source maps
// and is written as a literal false.
type Devtool string

const (
	DevtoolNone      Devtool = ""
	DevtoolSourceMap Devtool = "source-map"
)

// Enabled reports whether source maps are generated.
func (d Devtool) Enabled() bool {
	return d != DevtoolNone
}

func (d Devtool) MarshalJSON() ([]byte, error) {
	if !d.Enabled() {
		return []byte("false"), nil
	}
	return json.Marshal(string(d))
}

func (d Devtool) MarshalYAML() (any, error) {
	if !d.Enabled() {
		return false, nil
	}
	return string(d), nil
}

type Module struct {
	Rules []LoaderRule `json:"rules" yaml:"rules"`
}

// BuildDescriptor is the assembled configuration consumed by the bundling
// engine. It is built once per invocation and not modified afterwards.
type BuildDescriptor struct {
	Mode         BuildMode           `json:"mode" yaml:"mode"`
	Context      string              `json:"context" yaml:"context"`
	Entry        map[string][]string `json:"entry" yaml:"entry"`
	Output       Output              `json:"output" yaml:"output"`
	Resolve      Resolve             `json:"resolve" yaml:"resolve"`
	Optimization OptimizationConfig  `json:"optimization" yaml:"optimization"`
	DevServer    DevServer           `json:"devServer" yaml:"devServer"`
	Devtool      Devtool             `json:"devtool" yaml:"devtool"`
	Plugins      []PluginDescriptor  `json:"plugins" yaml:"plugins"`
	Module       Module              `json:"module" yaml:"module"`
}

// Plugin returns the first plugin with the given name.
func (d BuildDescriptor) Plugin(name string) (PluginDescriptor, bool) {
	for _, p := range d.Plugins {
		if p.Name == name {
			return p, true
		}
	}
	return PluginDescriptor{}, false
}
