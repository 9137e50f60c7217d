package engine

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/models"
	"github.com/Kush-Singh-26/koshpack/builder/utils"
)

// cleanOutput empties the output directory when the clean plugin is listed.
func cleanOutput(destFs afero.Fs, d models.BuildDescriptor) error {
	if _, ok := d.Plugin(compose.PluginClean); !ok || d.Output.Path == "" {
		return nil
	}
	if err := destFs.RemoveAll(d.Output.Path); err != nil {
		return fmt.Errorf("failed to clean %s: %w", d.Output.Path, err)
	}
	return nil
}

// runPlugins applies the post-build plugins in descriptor order. Stylesheet
// extraction is native to esbuild, so css-extract needs no work here.
func runPlugins(srcFs, destFs afero.Fs, d models.BuildDescriptor, res *Result, meta string) error {
	for _, p := range d.Plugins {
		switch p.Name {
		case compose.PluginHTML:
			opts, ok := p.Options.(models.HTMLOptions)
			if !ok {
				return fmt.Errorf("html plugin: unexpected options %T", p.Options)
			}
			page, err := writePage(srcFs, destFs, d, opts, res)
			if err != nil {
				return err
			}
			res.Page = page
			res.Files = append(res.Files, page)

		case compose.PluginCopy:
			opts, ok := p.Options.(models.CopyOptions)
			if !ok {
				return fmt.Errorf("copy plugin: unexpected options %T", p.Options)
			}
			for _, pattern := range opts.Patterns {
				copied, err := copyPattern(srcFs, destFs, pattern)
				if err != nil {
					return err
				}
				res.Files = append(res.Files, copied...)
			}

		case compose.PluginBundleAnalyzer:
			res.Analysis = api.AnalyzeMetafile(meta, api.AnalyzeMetafileOptions{})
		}
	}
	return nil
}

// writePage renders the HTML template with tags for the bundle outputs.
func writePage(srcFs, destFs afero.Fs, d models.BuildDescriptor, opts models.HTMLOptions, res *Result) (string, error) {
	tmplPath := absolute(d.Context, opts.Template)
	tmpl, err := afero.ReadFile(srcFs, tmplPath)
	if err != nil {
		return "", fmt.Errorf("html plugin: failed to read template: %w", err)
	}

	pagePath := filepath.Join(d.Output.Path, opts.Filename)
	moduleScripts := d.Optimization.SplitChunks.Chunks == compose.ChunksAll

	var links, scripts strings.Builder
	for _, s := range res.Styles {
		fmt.Fprintf(&links, "<link rel=\"stylesheet\" href=\"%s\">\n", pageURL(pagePath, s))
	}
	for _, s := range res.Scripts {
		if moduleScripts {
			fmt.Fprintf(&scripts, "<script type=\"module\" src=\"%s\"></script>\n", pageURL(pagePath, s))
		} else {
			fmt.Fprintf(&scripts, "<script defer src=\"%s\"></script>\n", pageURL(pagePath, s))
		}
	}

	page := injectBefore(string(tmpl), "</head>", links.String())
	page = injectBefore(page, "</body>", scripts.String())

	out := []byte(page)
	if opts.Minify.CollapseWhitespace {
		out, err = utils.Minifier().Bytes(utils.MediaHTML, out)
		if err != nil {
			return "", fmt.Errorf("html plugin: failed to minify page: %w", err)
		}
	}

	if err := writeFile(destFs, pagePath, out); err != nil {
		return "", err
	}
	return pagePath, nil
}

// pageURL is target relative to the page, with forward slashes.
func pageURL(pagePath, target string) string {
	rel, err := filepath.Rel(filepath.Dir(pagePath), target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return "./" + filepath.ToSlash(rel)
}

// injectBefore inserts tags before the last occurrence of marker, or appends
// them when the template has no such tag.
func injectBefore(doc, marker, tags string) string {
	if tags == "" {
		return doc
	}
	i := strings.LastIndex(strings.ToLower(doc), marker)
	if i < 0 {
		return doc + tags
	}
	return doc[:i] + tags + doc[i:]
}

// copyPattern copies a file or directory tree from srcFs into the To directory on destFs.
func copyPattern(srcFs, destFs afero.Fs, pattern models.CopyPattern) ([]string, error) {
	info, err := srcFs.Stat(pattern.From)
	if err != nil {
		return nil, fmt.Errorf("copy plugin: %w", err)
	}

	if !info.IsDir() {
		dst := filepath.Join(pattern.To, filepath.Base(pattern.From))
		return []string{dst}, copyFile(srcFs, destFs, pattern.From, dst)
	}

	var copied []string
	err = afero.Walk(srcFs, pattern.From, func(path string, info fs.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(pattern.From, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(pattern.To, rel)
		copied = append(copied, dst)
		return copyFile(srcFs, destFs, path, dst)
	})
	return copied, err
}

func copyFile(srcFs, destFs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(srcFs, src)
	if err != nil {
		return fmt.Errorf("copy plugin: %w", err)
	}
	return writeFile(destFs, dst, data)
}
