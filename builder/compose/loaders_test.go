package compose

import (
	"reflect"
	"testing"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

func loaders(chain []models.TransformStep) []string {
	out := make([]string, len(chain))
	for i, s := range chain {
		out[i] = s.Loader
	}
	return out
}

func TestChain_Stylesheets(t *testing.T) {
	tests := []struct {
		name string
		t    AssetType
		mode models.BuildMode
		want []string
	}{
		{"css dev", CSS, models.Development, []string{LoaderExtract, LoaderCSS}},
		{"css prod", CSS, models.Production, []string{LoaderExtract, LoaderCSS}},
		{"less dev", Less, models.Development, []string{LoaderExtract, LoaderCSS, LoaderLess}},
		{"sass prod", Sass, models.Production, []string{LoaderExtract, LoaderCSS, LoaderSass}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := Chain(tt.t, tt.mode)
			if got := loaders(chain); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Chain(%v) = %v, want %v", tt.t, got, tt.want)
			}
			opts, ok := chain[0].Options.(models.ExtractOptions)
			if !ok {
				t.Fatalf("extract options have type %T", chain[0].Options)
			}
			if opts.HMR != tt.mode.IsDev() {
				t.Errorf("extract HMR = %v, want %v", opts.HMR, tt.mode.IsDev())
			}
			if opts.PublicPath != "" {
				t.Errorf("extract PublicPath = %q, want empty by default", opts.PublicPath)
			}
		})
	}
}

func TestChain_PreprocessorAppendedLast(t *testing.T) {
	for _, mode := range []models.BuildMode{models.Development, models.Production} {
		plain := Chain(CSS, mode)
		for _, tt := range []struct {
			t    AssetType
			last string
		}{{Less, LoaderLess}, {Sass, LoaderSass}} {
			chain := Chain(tt.t, mode)
			if len(chain) != len(plain)+1 {
				t.Errorf("%v/%v: chain length %d, want %d", mode, tt.t, len(chain), len(plain)+1)
				continue
			}
			if !reflect.DeepEqual(chain[:len(plain)], plain) {
				t.Errorf("%v/%v: chain prefix differs from plain css chain", mode, tt.t)
			}
			if chain[len(chain)-1].Loader != tt.last {
				t.Errorf("%v/%v: last loader = %q, want %q", mode, tt.t, chain[len(chain)-1].Loader, tt.last)
			}
		}
	}
}

func TestChain_SingleStep(t *testing.T) {
	tests := []struct {
		t    AssetType
		want string
	}{
		{Image, LoaderFile},
		{Font, LoaderFile},
		{XML, LoaderXML},
		{CSV, LoaderCSV},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			chain := Chain(tt.t, models.Production)
			if len(chain) != 1 || chain[0].Loader != tt.want || chain[0].Options != nil {
				t.Errorf("Chain(%v) = %+v, want single %q", tt.t, chain, tt.want)
			}
		})
	}
}

func TestChain_Scripts(t *testing.T) {
	ts := Chain(TypeScript, models.Development)
	tsx := Chain(TSX, models.Development)

	if len(ts) != 1 || ts[0].Loader != LoaderBabel {
		t.Fatalf("ts chain = %v", loaders(ts))
	}
	if len(tsx) != 1 || tsx[0].Loader != LoaderBabel {
		t.Fatalf("tsx chain = %v", loaders(tsx))
	}

	base := ts[0].Options.(models.BabelOptions)
	templ := tsx[0].Options.(models.BabelOptions)

	if want := []string{PresetEnv, PresetTypeScript}; !reflect.DeepEqual(base.Presets, want) {
		t.Errorf("ts presets = %v, want %v", base.Presets, want)
	}
	if want := []string{PresetEnv, PresetTypeScript, PresetReact}; !reflect.DeepEqual(templ.Presets, want) {
		t.Errorf("tsx presets = %v, want %v", templ.Presets, want)
	}
	if len(templ.Presets) <= len(base.Presets) || !reflect.DeepEqual(templ.Presets[:len(base.Presets)], base.Presets) {
		t.Error("templating presets must strictly extend the base presets")
	}
	for _, o := range []models.BabelOptions{base, templ} {
		if !reflect.DeepEqual(o.Plugins, []string{PluginClassProperties}) {
			t.Errorf("plugins = %v, want class properties only", o.Plugins)
		}
	}

	if !reflect.DeepEqual(Chain(TypeScript, models.Production), ts) {
		t.Error("script chain should not depend on mode")
	}
}

func TestChain_Unknown(t *testing.T) {
	if got := Chain(AssetType(99), models.Production); got != nil {
		t.Errorf("Chain(99) = %v, want nil", got)
	}
	if AssetType(99).String() != "unknown" {
		t.Error("unknown asset type should stringify as unknown")
	}
}

func TestChainWith_PublicPath(t *testing.T) {
	chain := ChainWith(Sass, models.Production, LoaderOptions{PublicPath: "/static/"})
	opts := chain[0].Options.(models.ExtractOptions)
	if opts.PublicPath != "/static/" {
		t.Errorf("PublicPath = %q, want /static/", opts.PublicPath)
	}
}

func TestRules(t *testing.T) {
	rules := Rules(models.Production, LoaderOptions{})
	if len(rules) != len(AssetTypes()) {
		t.Fatalf("Rules() = %d rules, want %d", len(rules), len(AssetTypes()))
	}
	for i, r := range rules {
		if r.Test == "" || len(r.Use) == 0 {
			t.Errorf("rule %d is incomplete: %+v", i, r)
		}
		if !r.Valid() {
			t.Errorf("rule %d matchers do not compile: %q, %q", i, r.Test, r.Exclude)
		}
		wantExclude := AssetTypes()[i] == TypeScript || AssetTypes()[i] == TSX
		if (r.Exclude != "") != wantExclude {
			t.Errorf("rule %d (%v) exclude = %q", i, AssetTypes()[i], r.Exclude)
		}
	}
}

func TestChainFor(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		matched bool
	}{
		{"app.ts", []string{LoaderBabel}, true},
		{"src/App.tsx", []string{LoaderBabel}, true},
		{"styles/app.scss", []string{LoaderExtract, LoaderCSS, LoaderSass}, true},
		{"styles/app.sass", []string{LoaderExtract, LoaderCSS, LoaderSass}, true},
		{"theme.less", []string{LoaderExtract, LoaderCSS, LoaderLess}, true},
		{"base.css", []string{LoaderExtract, LoaderCSS}, true},
		{"logo.svg", []string{LoaderFile}, true},
		{"font.woff2", []string{LoaderFile}, true},
		{"feed.xml", []string{LoaderXML}, true},
		{"data.csv", []string{LoaderCSV}, true},
		{"node_modules/lib/index.ts", nil, false},
		{"bower_components/x/y.tsx", nil, false},
		{"README.md", nil, false},
		{"index.js", nil, false},
		{"photo.webp", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			chain, ok := ChainFor(tt.path, models.Production, LoaderOptions{})
			if ok != tt.matched {
				t.Fatalf("ChainFor(%q) matched = %v, want %v", tt.path, ok, tt.matched)
			}
			if ok && !reflect.DeepEqual(loaders(chain), tt.want) {
				t.Errorf("ChainFor(%q) = %v, want %v", tt.path, loaders(chain), tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]AssetType{
		"a.css": CSS, "a.less": Less, "a.scss": Sass, "a.png": Image,
		"a.eot": Font, "a.xml": XML, "a.csv": CSV, "a.ts": TypeScript, "a.tsx": TSX,
	}
	for path, want := range tests {
		got, ok := Classify(path)
		if !ok || got != want {
			t.Errorf("Classify(%q) = %v, %v; want %v", path, got, ok, want)
		}
	}
	if _, ok := Classify("a.go"); ok {
		t.Error("Classify(a.go) should not match")
	}
}
