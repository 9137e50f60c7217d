package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

// Result summarizes one bundle run.
type Result struct {
	Files    []string          // written paths, sorted
	Entries  map[string]string // entry input -> output, from the metafile
	Scripts  []string          // entry script outputs
	Styles   []string          // stylesheet outputs
	Page     string            // generated HTML page, if any
	Analysis string            // bundle analyzer report, if any
	Warnings int
	Bytes    int64
}

type metafile struct {
	Outputs map[string]struct {
		EntryPoint string `json:"entryPoint"`
	} `json:"outputs"`
}

// Bundle runs esbuild for d and writes the outputs through destFs. The
// descriptor's plugins then run against srcFs and destFs.
func Bundle(srcFs, destFs afero.Fs, d models.BuildDescriptor, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, ext := range Unsupported(d.Module.Rules) {
		logger.Warn("esbuild has no loader for this file type; imports will fail", "ext", ext)
	}

	result := api.Build(Options(d))
	for _, w := range result.Warnings {
		logger.Warn("esbuild", "msg", formatMessage(w))
	}
	if len(result.Errors) > 0 {
		errs := make([]error, 0, len(result.Errors))
		for _, m := range result.Errors {
			errs = append(errs, errors.New(formatMessage(m)))
		}
		return nil, fmt.Errorf("esbuild failed with %d errors: %w", len(result.Errors), errors.Join(errs...))
	}

	if err := cleanOutput(destFs, d); err != nil {
		return nil, err
	}

	res := &Result{Entries: make(map[string]string), Warnings: len(result.Warnings)}
	for _, out := range result.OutputFiles {
		if err := writeFile(destFs, out.Path, out.Contents); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, out.Path)
		res.Bytes += int64(len(out.Contents))
		if strings.HasSuffix(out.Path, ".css") {
			res.Styles = append(res.Styles, out.Path)
		}
	}

	var meta metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	for outPath, info := range meta.Outputs {
		if info.EntryPoint == "" {
			continue
		}
		res.Entries[info.EntryPoint] = outPath
		if strings.HasSuffix(outPath, ".js") {
			res.Scripts = append(res.Scripts, absolute(d.Context, outPath))
		}
	}
	slices.Sort(res.Scripts)
	slices.Sort(res.Styles)

	if err := runPlugins(srcFs, destFs, d, res, result.Metafile); err != nil {
		return nil, err
	}
	slices.Sort(res.Files)
	return res, nil
}

// absolute resolves a metafile path, which esbuild reports relative to the
// working directory.
func absolute(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

func writeFile(fs afero.Fs, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}
