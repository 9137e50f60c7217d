// Package compose turns a BuildMode into the parts of a build descriptor.
// Every function here is pure: same mode and options, same result, fresh slices.
package compose

import "github.com/Kush-Singh-26/koshpack/builder/models"

// Asset kinds named in output patterns.
const (
	KindScript     = "js"
	KindStylesheet = "css"
)

// Filename returns the output pattern for an asset kind. Production names
// carry a content hash for long-term caching; development names never do.
func Filename(kind string, mode models.BuildMode) models.FilenamePattern {
	if mode.IsDev() {
		return models.FilenamePattern(models.NamePlaceholder + "." + kind)
	}
	return models.FilenamePattern(models.NamePlaceholder + "." + models.HashPlaceholder + "." + kind)
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
