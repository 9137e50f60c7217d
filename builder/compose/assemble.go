package compose

import (
	"maps"
	"path/filepath"
	"slices"

	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// Assemble composes the full descriptor for mode. It cannot fail: cfg is
// expected to have passed Validate before the result is handed on.
func Assemble(mode models.BuildMode, cfg *config.Config) models.BuildDescriptor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return models.BuildDescriptor{
		Mode:    mode,
		Context: cfg.SourcePath(),
		Entry:   entries(cfg.Entry),
		Output: models.Output{
			Filename:   Filename(KindScript, mode),
			Path:       cfg.OutputPath(),
			PublicPath: cfg.PublicPathOrDefault(),
		},
		Resolve: models.Resolve{
			Extensions: slices.Clone(cfg.Extensions),
			Alias:      cfg.AliasPaths(),
		},
		Optimization: Optimization(mode),
		DevServer: models.DevServer{
			ContentBase: cfg.OutputPath(),
			Port:        cfg.DevServer.Port,
			Open:        cfg.DevServer.Open,
			Hot:         cfg.DevServer.Hot,
			Inline:      cfg.DevServer.Inline,
			WriteToDisk: cfg.DevServer.WriteToDisk,
		},
		Devtool: cond(mode.IsDev(), models.DevtoolSourceMap, models.DevtoolNone),
		Plugins: Plugins(mode, pluginOptions(cfg)),
		Module:  models.Module{Rules: Rules(mode, loaderOptions(cfg))},
	}
}

func entries(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for name, specs := range maps.All(in) {
		out[name] = slices.Clone(specs)
	}
	return out
}

func loaderOptions(cfg *config.Config) LoaderOptions {
	if !cfg.Features.ExtractPublicPath {
		return LoaderOptions{}
	}
	return LoaderOptions{PublicPath: cfg.PublicPathOrDefault()}
}

func pluginOptions(cfg *config.Config) PluginOptions {
	opts := PluginOptions{
		Template:     cfg.Template,
		HTMLFilename: cfg.HTMLFilename,
	}
	if cfg.Features.CopyAssets && cfg.CopyFrom != "" {
		opts.Copy = &models.CopyPattern{
			From: filepath.Join(cfg.SourcePath(), cfg.CopyFrom),
			To:   cfg.OutputPath(),
		}
	}
	return opts
}
