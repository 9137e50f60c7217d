package compose

import "github.com/Kush-Singh-26/koshpack/builder/models"

// Plugin names.
const (
	PluginClean          = "clean"
	PluginHTML           = "html"
	PluginCopy           = "copy"
	PluginCSSExtract     = "css-extract"
	PluginBundleAnalyzer = "bundle-analyzer"
)

// PluginOptions carries the static inputs of the plugin list.
type PluginOptions struct {
	Template     string
	HTMLFilename string
	// Copy enables the asset copy plugin when non-nil.
	Copy *models.CopyPattern
}

// Plugins returns the whole-build plugins for mode. Production is the
// development list plus the bundle analyzer at the end.
func Plugins(mode models.BuildMode, opts PluginOptions) []models.PluginDescriptor {
	plugins := basePlugins(mode, opts)
	if mode.IsDev() {
		return plugins
	}
	return append(plugins, models.PluginDescriptor{Name: PluginBundleAnalyzer, Package: "webpack-bundle-analyzer"})
}

func basePlugins(mode models.BuildMode, opts PluginOptions) []models.PluginDescriptor {
	head := []models.PluginDescriptor{
		{Name: PluginClean, Package: "clean-webpack-plugin"},
		{
			Name:    PluginHTML,
			Package: "html-webpack-plugin",
			Options: models.HTMLOptions{
				Template: opts.Template,
				Filename: cond(opts.HTMLFilename != "", opts.HTMLFilename, "index.html"),
				Minify:   models.HTMLMinify{CollapseWhitespace: !mode.IsDev()},
				Cache:    false,
			},
		},
	}

	var copyStep []models.PluginDescriptor
	if opts.Copy != nil {
		copyStep = []models.PluginDescriptor{{
			Name:    PluginCopy,
			Package: "copy-webpack-plugin",
			Options: models.CopyOptions{Patterns: []models.CopyPattern{*opts.Copy}},
		}}
	}

	extract := models.PluginDescriptor{
		Name:    PluginCSSExtract,
		Package: "mini-css-extract-plugin",
		Options: models.CSSExtractOptions{Filename: Filename(KindStylesheet, mode)},
	}

	return append(append(head, copyStep...), extract)
}
