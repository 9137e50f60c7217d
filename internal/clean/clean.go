package clean

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/emit"
)

// Run removes emitted descriptors and the history store. cleanOutput also
// removes the bundle output directory.
func Run(cfg *config.Config, cleanOutput bool) {
	start := time.Now()

	for _, path := range descriptorFiles(cfg) {
		if err := os.Remove(path); err == nil {
			fmt.Printf("🧹 Removed '%s'\n", path)
		} else if !os.IsNotExist(err) {
			fmt.Printf("⚠️ Failed to remove '%s': %v\n", path, err)
		}
	}

	cleanDirAsync(cfg.CachePath())
	if cleanOutput {
		cleanDirAsync(cfg.OutputPath())
	}

	fmt.Printf("🧹 Clean initiated in %v (backgrounding deletion).\n", time.Since(start))
}

// descriptorFiles is the configured descriptor plus its siblings in the
// other formats, since -format may have changed between runs.
func descriptorFiles(cfg *config.Config) []string {
	path := cfg.DescriptorFile()
	base := path[:len(path)-len(filepath.Ext(path))]

	out := []string{path}
	for _, f := range []emit.Format{emit.JSON, emit.YAML, emit.JS} {
		if p := base + f.Ext(); p != path {
			out = append(out, p)
		}
	}
	return out
}

func cleanDirAsync(absPath string) {
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return
	}

	dir := filepath.Dir(absPath)
	base := filepath.Base(absPath)
	tempName := fmt.Sprintf("%s_deleting_%d", base, time.Now().UnixNano())
	tempPath := filepath.Join(dir, tempName)

	fmt.Printf("🧹 Moving '%s' to trash...\n", absPath)
	if err := os.Rename(absPath, tempPath); err != nil {
		fmt.Printf("⚠️ Rename failed (%v), deleting synchronously...\n", err)
		if err := os.RemoveAll(absPath); err != nil {
			fmt.Printf("❌ Failed to remove '%s': %v\n", absPath, err)
		}
		return
	}

	go func() {
		_ = os.RemoveAll(tempPath)
	}()
}
