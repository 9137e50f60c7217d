package utils

import (
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

// Media types handled by the shared minifier.
const (
	MediaJSON = "application/json"
	MediaJS   = "text/javascript"
	MediaHTML = "text/html"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

// Minifier returns the shared minifier for descriptors and generated pages.
func Minifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.AddFunc(MediaJSON, json.Minify)
		minifier.AddFunc(MediaJS, js.Minify)
		minifier.AddFunc(MediaHTML, html.Minify)
	})
	return minifier
}
