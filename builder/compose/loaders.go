package compose

import (
	"slices"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// AssetType is a family of source files sharing one loader chain.
type AssetType int

const (
	CSS AssetType = iota
	Less
	Sass
	Image
	Font
	XML
	CSV
	TypeScript
	TSX
)

var assetTypeNames = [...]string{"css", "less", "sass", "image", "font", "xml", "csv", "ts", "tsx"}

func (t AssetType) String() string {
	if int(t) < len(assetTypeNames) {
		return assetTypeNames[t]
	}
	return "unknown"
}

// AssetTypes lists every type in rule declaration order.
func AssetTypes() []AssetType {
	return []AssetType{CSS, Less, Sass, Image, Font, XML, CSV, TypeScript, TSX}
}

// Loader names.
const (
	LoaderExtract = "mini-css-extract-plugin/dist/loader"
	LoaderCSS     = "css-loader"
	LoaderLess    = "less-loader"
	LoaderSass    = "sass-loader"
	LoaderFile    = "file-loader"
	LoaderXML     = "xml-loader"
	LoaderCSV     = "csv-loader"
	LoaderBabel   = "babel-loader"
)

// Babel presets and plugins.
const (
	PresetEnv             = "@babel/preset-env"
	PresetTypeScript      = "@babel/preset-typescript"
	PresetReact           = "@babel/react"
	PluginClassProperties = "@babel/plugin-proposal-class-properties"
)

// Rule matchers, written as engine regular expressions.
const (
	testCSS    = `\.css$`
	testLess   = `\.less$`
	testSass   = `\.s[ac]ss$`
	testImage  = `\.(png|jpg|jpeg|svg|gif)$`
	testFont   = `\.(ttf|woff|woff2|eot)$`
	testXML    = `\.xml$`
	testCSV    = `\.csv$`
	testTS     = `\.ts$`
	testTSX    = `\.tsx$`
	excludeDep = `(node_modules|bower_components)`
)

// LoaderOptions carries the disabled-by-default loader toggles.
type LoaderOptions struct {
	// PublicPath is handed to the extraction loader when non-empty.
	PublicPath string
}

// Chain returns the transform steps for t in engine declaration order.
func Chain(t AssetType, mode models.BuildMode) []models.TransformStep {
	return ChainWith(t, mode, LoaderOptions{})
}

// ChainWith is Chain with explicit loader options.
func ChainWith(t AssetType, mode models.BuildMode, opts LoaderOptions) []models.TransformStep {
	switch t {
	case CSS:
		return stylesheetChain(mode, opts, "")
	case Less:
		return stylesheetChain(mode, opts, LoaderLess)
	case Sass:
		return stylesheetChain(mode, opts, LoaderSass)
	case Image, Font:
		return single(LoaderFile)
	case XML:
		return single(LoaderXML)
	case CSV:
		return single(LoaderCSV)
	case TypeScript:
		return []models.TransformStep{babelStep(PresetTypeScript)}
	case TSX:
		return []models.TransformStep{babelStep(PresetTypeScript, PresetReact)}
	}
	return nil
}

// stylesheetChain builds extract -> css -> preprocessor. The engine applies
// chains last-to-first, so the preprocessor is declared last to run first.
func stylesheetChain(mode models.BuildMode, opts LoaderOptions, preprocessor string) []models.TransformStep {
	base := []models.TransformStep{
		{Loader: LoaderExtract, Options: models.ExtractOptions{HMR: mode.IsDev(), PublicPath: opts.PublicPath}},
		{Loader: LoaderCSS},
	}
	if preprocessor == "" {
		return base
	}
	return append(base, models.TransformStep{Loader: preprocessor})
}

func single(loader string) []models.TransformStep {
	return []models.TransformStep{{Loader: loader}}
}

// BabelOptions returns the transpiler options: the base preset and class
// properties plugin, with extra presets appended after the base.
func BabelOptions(extra ...string) models.BabelOptions {
	return models.BabelOptions{
		Presets: append([]string{PresetEnv}, extra...),
		Plugins: []string{PluginClassProperties},
	}
}

func babelStep(presets ...string) models.TransformStep {
	return models.TransformStep{Loader: LoaderBabel, Options: BabelOptions(presets...)}
}

// Rules returns the full per-type rule table. Files matching none of them
// are passed through by the engine untouched.
func Rules(mode models.BuildMode, opts LoaderOptions) []models.LoaderRule {
	return []models.LoaderRule{
		{Test: testCSS, Use: ChainWith(CSS, mode, opts)},
		{Test: testLess, Use: ChainWith(Less, mode, opts)},
		{Test: testSass, Use: ChainWith(Sass, mode, opts)},
		{Test: testImage, Use: ChainWith(Image, mode, opts)},
		{Test: testFont, Use: ChainWith(Font, mode, opts)},
		{Test: testXML, Use: ChainWith(XML, mode, opts)},
		{Test: testCSV, Use: ChainWith(CSV, mode, opts)},
		{Test: testTS, Exclude: excludeDep, Use: ChainWith(TypeScript, mode, opts)},
		{Test: testTSX, Exclude: excludeDep, Use: ChainWith(TSX, mode, opts)},
	}
}

// ChainFor finds the chain the engine would apply to path. The boolean is
// false for unmatched files, which are passed through unprocessed.
func ChainFor(path string, mode models.BuildMode, opts LoaderOptions) ([]models.TransformStep, bool) {
	rules := Rules(mode, opts)
	i := slices.IndexFunc(rules, func(r models.LoaderRule) bool { return r.Matches(path) })
	if i < 0 {
		return nil, false
	}
	return rules[i].Use, true
}

// Classify returns the asset type for path, if any rule claims it.
func Classify(path string) (AssetType, bool) {
	rules := Rules(models.Production, LoaderOptions{})
	for i, r := range rules {
		if r.Matches(path) {
			return AssetTypes()[i], true
		}
	}
	return 0, false
}
