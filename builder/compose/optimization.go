package compose

import "github.com/Kush-Singh-26/koshpack/builder/models"

// Minimizer names.
const (
	MinimizerCSS    = "css-minimizer"
	MinimizerScript = "script-minimizer"
)

// ChunksAll splits every shared chunk. It applies in both modes since it
// affects caching rather than code size.
const ChunksAll = "all"

// Minimizers returns the output-time minimizers for mode: stylesheet then
// script in Production, none in Development.
func Minimizers(mode models.BuildMode) []models.Minimizer {
	if mode.IsDev() {
		return []models.Minimizer{}
	}
	return []models.Minimizer{
		{Name: MinimizerCSS, Package: "optimize-css-assets-webpack-plugin"},
		{Name: MinimizerScript, Package: "terser-webpack-plugin"},
	}
}

// Optimization returns the chunk policy plus the minimizers for mode.
func Optimization(mode models.BuildMode) models.OptimizationConfig {
	return models.OptimizationConfig{
		SplitChunks: models.SplitChunks{Chunks: ChunksAll},
		Minimizer:   Minimizers(mode),
	}
}
