// Package emit renders a build descriptor into the file the bundling engine reads.
package emit

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/koshpack/builder/models"
	"github.com/Kush-Singh-26/koshpack/builder/utils"
)

// Format is a descriptor serialization.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	JS   Format = "js"
)

// ParseFormat accepts json, yaml (or yml) and js, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "js", "javascript":
		return JS, nil
	}
	return "", fmt.Errorf("unknown descriptor format %q", s)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == YAML {
		return ".yaml"
	}
	return "." + string(f)
}

// Render serializes d. Production output is minified; development output is
// indented for reading.
func Render(d models.BuildDescriptor, f Format) ([]byte, error) {
	minify := !d.Mode.IsDev()

	switch f {
	case JSON:
		if !minify {
			data, err := json.MarshalIndent(d, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to encode descriptor: %w", err)
			}
			return append(data, '\n'), nil
		}
		data, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		return minifyBytes(utils.MediaJSON, data)

	case YAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		return data, nil

	case JS:
		data, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode descriptor: %w", err)
		}
		src, err := toModule(data, !minify)
		if err != nil {
			return nil, err
		}
		if !minify {
			return src, nil
		}
		return minifyBytes(utils.MediaJS, src)
	}

	return nil, fmt.Errorf("unknown descriptor format %q", f)
}

func minifyBytes(mediaType string, data []byte) ([]byte, error) {
	out, err := utils.Minifier().Bytes(mediaType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to minify %s: %w", mediaType, err)
	}
	return out, nil
}
