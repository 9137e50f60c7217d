// Package engine hands an assembled descriptor to esbuild.
package engine

import (
	"maps"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// probeExtensions are the file kinds the rule table is checked against when
// building the esbuild loader map.
var probeExtensions = []string{
	".css", ".less", ".sass", ".scss",
	".png", ".jpg", ".jpeg", ".svg", ".gif",
	".ttf", ".woff", ".woff2", ".eot",
	".xml", ".csv",
	".ts", ".tsx",
}

// Options translates d into esbuild build options.
func Options(d models.BuildDescriptor) api.BuildOptions {
	minify := len(d.Optimization.Minimizer) > 0
	splitting := d.Optimization.SplitChunks.Chunks == compose.ChunksAll

	entries, inject := entryPoints(d.Entry)

	opts := api.BuildOptions{
		AbsWorkingDir:       d.Context,
		EntryPointsAdvanced: entries,
		Inject:              inject,
		Bundle:              true,
		Write:               false,
		Metafile:            true,
		Outdir:              d.Output.Path,
		PublicPath:          d.Output.PublicPath,
		EntryNames:          namePattern(d.Output.Filename),
		AssetNames:          namePattern(d.Output.Filename),
		ChunkNames:          "chunks/[name]-[hash]",
		MinifyWhitespace:    minify,
		MinifyIdentifiers:   minify,
		MinifySyntax:        minify,
		Sourcemap:           api.SourceMapNone,
		Splitting:           splitting,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		ResolveExtensions:   slices.Clone(d.Resolve.Extensions),
		Alias:               maps.Clone(d.Resolve.Alias),
		Loader:              Loaders(d.Module.Rules),
		Define: map[string]string{
			"process.env.NODE_ENV": `"` + d.Mode.String() + `"`,
		},
		LogLevel: api.LogLevelSilent,
	}

	if d.Devtool.Enabled() {
		opts.Sourcemap = api.SourceMapLinked
	}
	if splitting {
		// esbuild only splits ES module output
		opts.Format = api.FormatESModule
	}
	return opts
}

// entryPoints maps each named entry to its last specifier. Earlier
// specifiers (polyfills) are injected into every output.
func entryPoints(entry map[string][]string) ([]api.EntryPoint, []string) {
	var points []api.EntryPoint
	var inject []string
	for _, name := range slices.Sorted(maps.Keys(entry)) {
		specs := entry[name]
		if len(specs) == 0 {
			continue
		}
		points = append(points, api.EntryPoint{InputPath: specs[len(specs)-1], OutputPath: name})
		for _, s := range specs[:len(specs)-1] {
			if !slices.Contains(inject, s) {
				inject = append(inject, s)
			}
		}
	}
	return points, inject
}

// namePattern drops the extension esbuild adds on its own.
func namePattern(p models.FilenamePattern) string {
	s := string(p)
	if ext := p.Ext(); ext != "" {
		s = strings.TrimSuffix(s, "."+ext)
	}
	return s
}

// Loaders derives the esbuild loader for every probed extension from the rule
// table. Extensions whose chain esbuild cannot run are left out; see
// Unsupported.
func Loaders(rules []models.LoaderRule) map[string]api.Loader {
	out := make(map[string]api.Loader)
	for _, ext := range probeExtensions {
		if l, ok := loaderFor(rules, ext); ok {
			out[ext] = l
		}
	}
	return out
}

// Unsupported lists probed extensions that a rule claims but esbuild has no
// native loader for (stylesheet preprocessors).
func Unsupported(rules []models.LoaderRule) []string {
	var out []string
	for _, ext := range probeExtensions {
		if _, ok := ruleFor(rules, ext); !ok {
			continue
		}
		if _, ok := loaderFor(rules, ext); !ok {
			out = append(out, ext)
		}
	}
	return out
}

func ruleFor(rules []models.LoaderRule, ext string) (models.LoaderRule, bool) {
	i := slices.IndexFunc(rules, func(r models.LoaderRule) bool { return r.Matches("file" + ext) })
	if i < 0 {
		return models.LoaderRule{}, false
	}
	return rules[i], true
}

func loaderFor(rules []models.LoaderRule, ext string) (api.Loader, bool) {
	rule, ok := ruleFor(rules, ext)
	if !ok || len(rule.Use) == 0 {
		return api.LoaderNone, false
	}

	names := make([]string, len(rule.Use))
	for i, step := range rule.Use {
		names[i] = step.Loader
	}

	switch {
	case slices.Contains(names, compose.LoaderLess), slices.Contains(names, compose.LoaderSass):
		return api.LoaderNone, false
	case slices.Contains(names, compose.LoaderCSS):
		return api.LoaderCSS, true
	case slices.Contains(names, compose.LoaderFile):
		return api.LoaderFile, true
	case slices.Contains(names, compose.LoaderXML), slices.Contains(names, compose.LoaderCSV):
		return api.LoaderText, true
	case slices.Contains(names, compose.LoaderBabel):
		if ext == ".tsx" {
			return api.LoaderTSX, true
		}
		return api.LoaderTS, true
	}
	return api.LoaderNone, false
}
