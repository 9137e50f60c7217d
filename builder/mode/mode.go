// Package mode turns the environment signal into a BuildMode.
package mode

import "github.com/Kush-Singh-26/koshpack/builder/models"

// EnvVar is the environment variable read as the mode signal.
const EnvVar = "NODE_ENV"

// Resolve maps the signal to a BuildMode. Only the exact development marker
// selects Development; everything else, including empty input, is Production.
func Resolve(signal string) models.BuildMode {
	if signal == models.DevelopmentName {
		return models.Development
	}
	return models.Production
}

// FromEnv resolves the mode from EnvVar using lookup (usually os.Getenv).
func FromEnv(lookup func(string) string) models.BuildMode {
	if lookup == nil {
		return models.Production
	}
	return Resolve(lookup(EnvVar))
}
