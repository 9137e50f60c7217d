package scaffold

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshpack/builder/config"
)

const defaultConfigYaml = `# koshpack configuration
sourceDir: "src"
outputDir: "dist"
# publicPath defaults to the output directory

entry:
  main:
    - "@babel/polyfill"
    - "./index.tsx"

template: "./index.html"
htmlFilename: "index.html"

extensions: [".js", ".jsx", ".ts", ".tsx"]

# Import aliases, relative to sourceDir
aliases:
  "@core": "core"
  "@components": "components"
  "@src": ""

copyFrom: "assets/favicon.png"

devServer:
  port: 9000
  open: true
  hot: true
  inline: true
  writeToDisk: false

features:
  copyAssets: false
  extractPublicPath: false

descriptorPath: "koshpack.descriptor.json"
format: "json" # json, yaml or js
cacheDir: ".koshpack-cache"
`

const indexHTML = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>koshpack app</title>
  </head>
  <body>
    <div id="root"></div>
  </body>
</html>
`

const indexTSX = `import { greeting } from "@core/greeting";
import { Banner } from "@components/Banner";

document.getElementById("root")!.textContent = Banner(greeting("koshpack"));
`

const greetingTS = `export const greeting = (name: string): string => ` + "`Hello from ${name}`" + `;
`

const bannerTSX = `export const Banner = (text: string): string => text.toUpperCase();
`

// file is one scaffolded file, relative to the project root.
type file struct {
	path    string
	content string
}

func files() []file {
	return []file{
		{config.DefaultFile, defaultConfigYaml},
		{"src/index.html", indexHTML},
		{"src/index.tsx", indexTSX},
		{"src/core/greeting.ts", greetingTS},
		{"src/components/Banner.tsx", bannerTSX},
	}
}

// Run initializes a new koshpack project under root. Existing files are kept.
func Run(fs afero.Fs, root string) error {
	fmt.Println("🌱 Initializing new koshpack project...")

	for _, dir := range []string{"src/core", "src/components", "src/assets"} {
		if err := fs.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
		fmt.Printf("   📁 Created '%s/'\n", dir)
	}

	for _, f := range files() {
		path := filepath.Join(root, f.path)
		if ok, _ := afero.Exists(fs, path); ok {
			fmt.Printf("   ⚠️ '%s' already exists, skipping.\n", f.path)
			continue
		}
		if err := afero.WriteFile(fs, path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		fmt.Printf("   📄 Created '%s'\n", f.path)
	}

	fmt.Println("\n✅ Project initialized successfully!")
	fmt.Println("   👉 Run 'koshpack emit' to write the build descriptor.")
	return nil
}
