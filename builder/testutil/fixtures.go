// Package testutil provides testing utilities and fixtures
package testutil

import (
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/config"
)

// ProjectRoot is the root used by in-memory project fixtures.
const ProjectRoot = "/project"

// CreateTestConfig returns the default configuration rooted at ProjectRoot.
func CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Root = ProjectRoot
	return cfg
}

// CreateTestProject creates an in-memory project that passes validation for
// the default configuration.
func CreateTestProject() (afero.Fs, *config.Config) {
	cfg := CreateTestConfig()
	fs := CreateTestFilesystemWithContent(map[string]string{
		cfg.TemplatePath():                       "<!doctype html><html><body><div id=\"root\"></div></body></html>\n",
		cfg.SourcePath() + "/index.tsx":          "import \"@core/app\";\n",
		cfg.SourcePath() + "/core/app.ts":        "export const app = 1;\n",
		cfg.SourcePath() + "/assets/favicon.png": "",
	})
	return fs, cfg
}
