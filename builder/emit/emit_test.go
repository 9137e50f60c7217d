package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/koshpack/builder/compose"
	"github.com/Kush-Singh-26/koshpack/builder/config"
	"github.com/Kush-Singh-26/koshpack/builder/models"
)

func descriptor(mode models.BuildMode) models.BuildDescriptor {
	cfg := config.DefaultConfig()
	cfg.Root = "/project"
	return compose.Assemble(mode, cfg)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"yaml", YAML, false},
		{"yml", YAML, false},
		{" js ", JS, false},
		{"javascript", JS, false},
		{"toml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	if JSON.Ext() != ".json" || YAML.Ext() != ".yaml" || JS.Ext() != ".js" {
		t.Errorf("unexpected extensions: %s %s %s", JSON.Ext(), YAML.Ext(), JS.Ext())
	}
}

func TestRender_JSON(t *testing.T) {
	for _, mode := range []models.BuildMode{models.Development, models.Production} {
		t.Run(mode.String(), func(t *testing.T) {
			data, err := Render(descriptor(mode), JSON)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			var got map[string]any
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if got["mode"] != mode.String() {
				t.Errorf("mode = %v, want %s", got["mode"], mode)
			}

			indented := bytes.Contains(data, []byte("\n  "))
			if indented != mode.IsDev() {
				t.Errorf("indented = %v for %s", indented, mode)
			}
		})
	}
}

func TestRender_JSONDevtool(t *testing.T) {
	data, err := Render(descriptor(models.Production), JSON)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"devtool":false`)) {
		t.Errorf("production devtool should be false: %s", data)
	}
}

func TestRender_YAML(t *testing.T) {
	data, err := Render(descriptor(models.Development), YAML)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got struct {
		Mode    string `yaml:"mode"`
		Devtool string `yaml:"devtool"`
		Module  struct {
			Rules []struct {
				Test string `yaml:"test"`
			} `yaml:"rules"`
		} `yaml:"module"`
	}
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.Mode != "development" {
		t.Errorf("mode = %q", got.Mode)
	}
	if got.Devtool != "source-map" {
		t.Errorf("devtool = %q", got.Devtool)
	}
	if len(got.Module.Rules) == 0 || got.Module.Rules[0].Test != `\.css$` {
		t.Errorf("rules = %+v", got.Module.Rules)
	}
}

func TestRender_JSModule(t *testing.T) {
	data, err := Render(descriptor(models.Development), JS)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	src := string(data)

	for _, want := range []string{
		"module.exports = {",
		`test: /\.css$/`,
		`exclude: /(node_modules|bower_components)/`,
		`"@core": "/project/src/core"`,
		"devtool: \"source-map\"",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("module missing %q:\n%s", want, src)
		}
	}
	if !strings.HasSuffix(src, "};\n") {
		t.Errorf("module should end with a terminated statement")
	}
}

func TestRender_JSModuleEvaluates(t *testing.T) {
	for _, mode := range []models.BuildMode{models.Development, models.Production} {
		t.Run(mode.String(), func(t *testing.T) {
			data, err := Render(descriptor(mode), JS)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if err := VerifyJS(data, mode); err != nil {
				t.Errorf("VerifyJS() error = %v\n%s", err, data)
			}
		})
	}
}

func TestRender_JSModuleMatcherNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Root = "/project"
	cfg.Entry["test"] = []string{"./spec.tsx"}
	cfg.Aliases["exclude"] = "lib"
	d := compose.Assemble(models.Development, cfg)

	for _, mode := range []models.BuildMode{models.Development, models.Production} {
		t.Run(mode.String(), func(t *testing.T) {
			d.Mode = mode
			data, err := Render(d, JS)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			src := string(data)
			if strings.Contains(src, `/.\/spec.tsx/`) || strings.Contains(src, `/\/project\/src\/lib/`) {
				t.Errorf("entry or alias written as a regex literal:\n%s", src)
			}
			if err := VerifyJS(data, mode); err != nil {
				t.Errorf("VerifyJS() error = %v\n%s", err, data)
			}
		})
	}

	d.Mode = models.Development
	data, err := Render(d, JS)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{`"./spec.tsx"`, `exclude: "/project/src/lib"`, `test: /\.css$/`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("module missing %q:\n%s", want, data)
		}
	}
}

func TestIsMatcher(t *testing.T) {
	tests := []struct {
		path []string
		want bool
	}{
		{[]string{"module", "rules", element, "test"}, true},
		{[]string{"module", "rules", element, "exclude"}, true},
		{[]string{"module", "rules", element, "exclude", element}, true},
		{[]string{"module", "rules", element, "use"}, false},
		{[]string{"entry", "test", element}, false},
		{[]string{"resolve", "alias", "exclude"}, false},
		{[]string{"test"}, false},
	}

	for _, tt := range tests {
		if got := isMatcher(tt.path); got != tt.want {
			t.Errorf("isMatcher(%v) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestVerifyJS_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "module.exports = {"},
		{"not an object", "module.exports = 42;"},
		{"string matcher", `module.exports = {mode: "production", plugins: [], module: {rules: [{test: "\\.css$", use: ["css-loader"]}]}};`},
		{"empty chain", `module.exports = {mode: "production", plugins: [], module: {rules: [{test: /\.css$/, use: []}]}};`},
		{"wrong mode", `module.exports = {mode: "development", plugins: [], module: {rules: []}};`},
		{"regex entry", `module.exports = {mode: "production", plugins: [], entry: {test: [/spec/]}, module: {rules: []}};`},
		{"regex alias", `module.exports = {mode: "production", plugins: [], resolve: {alias: {exclude: /lib/}}, module: {rules: []}};`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyJS([]byte(tt.src), models.Production); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRegexLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`\.css$`, `/\.css$/`},
		{`a/b`, `/a\/b/`},
		{`a\/b`, `/a\/b/`},
		{`(node_modules|bower_components)`, `/(node_modules|bower_components)/`},
	}
	for _, tt := range tests {
		if got := regexLiteral(tt.in); got != tt.want {
			t.Errorf("regexLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPropertyName(t *testing.T) {
	tests := map[string]string{
		"mode":        "mode",
		"splitChunks": "splitChunks",
		"$ref":        "$ref",
		"@core":       `"@core"`,
		"1a":          `"1a"`,
		"":            `""`,
	}
	for in, want := range tests {
		if got := propertyName(in); got != want {
			t.Errorf("propertyName(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestHighlight(t *testing.T) {
	src := []byte(`{"mode": "production"}`)
	var buf bytes.Buffer
	if err := Highlight(&buf, src, JSON); err != nil {
		t.Fatalf("Highlight() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected terminal escape sequences")
	}
	if !strings.Contains(buf.String(), "production") {
		t.Error("highlighted output lost content")
	}
}

func TestWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/out/koshpack.descriptor.json"

	if err := Write(fs, path, []byte("{}")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := afero.ReadFile(fs, path)
	if err != nil || string(got) != "{}" {
		t.Fatalf("ReadFile() = %q, %v", got, err)
	}
	if ok, _ := afero.Exists(fs, path+".tmp"); ok {
		t.Error("temp file should be renamed away")
	}

	if err := Write(fs, path, []byte("[]")); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	got, _ = afero.ReadFile(fs, path)
	if string(got) != "[]" {
		t.Errorf("overwrite = %q", got)
	}
}
