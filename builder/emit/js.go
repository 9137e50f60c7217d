package emit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/Kush-Singh-26/koshpack/builder/models"
)

const moduleHeader = "// Generated by koshpack. Do not edit.\n"

// regexKeys hold rule matchers, written as regular expression literals.
// Only keys of module.rules elements qualify.
var regexKeys = map[string]bool{"test": true, "exclude": true}

// element marks an array element in a key path.
const element = "[]"

// isMatcher reports whether path addresses a rule matcher or one of its
// alternatives: module.rules[].test, module.rules[].exclude[].
func isMatcher(path []string) bool {
	if len(path) == 5 && path[4] == element {
		path = path[:4]
	}
	return len(path) == 4 &&
		path[0] == "module" && path[1] == "rules" && path[2] == element &&
		regexKeys[path[3]]
}

// toModule rewrites the JSON encoding of a descriptor as a CommonJS module.
// Key order follows the JSON encoding.
func toModule(data []byte, pretty bool) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var buf bytes.Buffer
	buf.WriteString(moduleHeader)
	buf.WriteString("module.exports = ")
	w := &moduleWriter{dec: dec, buf: &buf, pretty: pretty}
	if err := w.value(nil, 0); err != nil {
		return nil, fmt.Errorf("failed to write descriptor module: %w", err)
	}
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

type moduleWriter struct {
	dec    *json.Decoder
	buf    *bytes.Buffer
	pretty bool
}

func (w *moduleWriter) value(path []string, depth int) error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return w.object(path, depth)
		case '[':
			return w.array(path, depth)
		}
		return fmt.Errorf("unexpected delimiter %q", v)
	case string:
		if isMatcher(path) {
			w.buf.WriteString(regexLiteral(v))
			return nil
		}
		quoted, err := json.Marshal(v)
		if err != nil {
			return err
		}
		w.buf.Write(quoted)
	case json.Number:
		w.buf.WriteString(v.String())
	case bool:
		w.buf.WriteString(fmt.Sprint(v))
	case nil:
		w.buf.WriteString("null")
	}
	return nil
}

func (w *moduleWriter) object(path []string, depth int) error {
	w.buf.WriteByte('{')
	n := 0
	for w.dec.More() {
		tok, err := w.dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("object key is %T", tok)
		}
		if n > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(depth + 1)
		w.buf.WriteString(propertyName(key))
		w.buf.WriteByte(':')
		if w.pretty {
			w.buf.WriteByte(' ')
		}
		if err := w.value(append(path, key), depth+1); err != nil {
			return err
		}
		n++
	}
	if _, err := w.dec.Token(); err != nil {
		return err
	}
	if n > 0 {
		w.newline(depth)
	}
	w.buf.WriteByte('}')
	return nil
}

func (w *moduleWriter) array(path []string, depth int) error {
	w.buf.WriteByte('[')
	n := 0
	for w.dec.More() {
		if n > 0 {
			w.buf.WriteByte(',')
		}
		w.newline(depth + 1)
		if err := w.value(append(path, element), depth+1); err != nil {
			return err
		}
		n++
	}
	if _, err := w.dec.Token(); err != nil {
		return err
	}
	if n > 0 {
		w.newline(depth)
	}
	w.buf.WriteByte(']')
	return nil
}

func (w *moduleWriter) newline(depth int) {
	if !w.pretty {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(strings.Repeat("  ", depth))
}

// propertyName leaves identifiers bare and quotes everything else ("@core").
func propertyName(key string) string {
	if isIdentifier(key) {
		return key
	}
	quoted, _ := json.Marshal(key)
	return string(quoted)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// regexLiteral wraps a pattern in slashes, escaping bare slashes.
func regexLiteral(pattern string) string {
	var b strings.Builder
	b.WriteByte('/')
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
		case c == '/':
			b.WriteString(`\/`)
		case c == '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('/')
	return b.String()
}

const shapeCheck = `(function (d) {
  if (d === null || typeof d !== "object") return "exports is not an object";
  if (!d.module || !Array.isArray(d.module.rules)) return "module.rules is not an array";
  for (var i = 0; i < d.module.rules.length; i++) {
    var r = d.module.rules[i];
    if (!(r.test instanceof RegExp)) return "rule " + i + " test is not a RegExp";
    if (r.exclude !== undefined && !(r.exclude instanceof RegExp)) return "rule " + i + " exclude is not a RegExp";
    if (!Array.isArray(r.use) || r.use.length === 0) return "rule " + i + " has no loaders";
  }
  if (!Array.isArray(d.plugins)) return "plugins is not an array";
  for (var name in d.entry || {}) {
    var specs = d.entry[name];
    if (!Array.isArray(specs)) return "entry " + name + " is not an array";
    for (var j = 0; j < specs.length; j++) {
      if (typeof specs[j] !== "string") return "entry " + name + " holds a non-string";
    }
  }
  var alias = (d.resolve && d.resolve.alias) || {};
  for (var a in alias) {
    if (typeof alias[a] !== "string") return "alias " + a + " is not a string";
  }
  return "";
})(module.exports)`

// VerifyJS evaluates a rendered JS descriptor in an isolated runtime and
// checks the export has the expected mode and shape.
func VerifyJS(src []byte, mode models.BuildMode) error {
	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)

	if _, err := vm.RunScript("koshpack.descriptor.js", string(src)); err != nil {
		return fmt.Errorf("descriptor module does not evaluate: %w", err)
	}

	res, err := vm.RunString(shapeCheck)
	if err != nil {
		return fmt.Errorf("failed to inspect descriptor module: %w", err)
	}
	if msg := res.String(); msg != "" {
		return fmt.Errorf("descriptor module: %s", msg)
	}

	got := vm.Get("module").ToObject(vm).Get("exports").ToObject(vm).Get("mode")
	if got == nil || goja.IsUndefined(got) || got.String() != mode.String() {
		return fmt.Errorf("descriptor module: mode = %v, want %s", got, mode)
	}
	return nil
}
