package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

// validatePath ensures that the user-provided path is within the base directory
// and prevents path traversal attacks.
func validatePath(baseDir, userPath string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base directory: %w", err)
	}

	absUserPath, err := filepath.Abs(filepath.Join(absBase, filepath.Clean("/"+userPath)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	relPath, err := filepath.Rel(absBase, absUserPath)
	if err != nil {
		return "", fmt.Errorf("path validation error: %w", err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt detected")
	}

	return absUserPath, nil
}

// normalizeRequestPath converts the request path to a clean slash path.
func normalizeRequestPath(rawPath string) string {
	return filepath.ToSlash(filepath.Clean("/" + rawPath))
}

// isHashedAsset checks if filename carries an esbuild content hash
// (e.g. main.K3W6BXYT.js).
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}
	hashPart := parts[len(parts)-2]
	if len(hashPart) != 8 {
		return false
	}
	for _, c := range hashPart {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
