package emit

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// Terminal highlighting defaults.
const (
	highlightFormatter = "terminal256"
	highlightStyle     = "nord"
)

func (f Format) lexer() string {
	switch f {
	case YAML:
		return "yaml"
	case JS:
		return "javascript"
	}
	return "json"
}

// Highlight writes src to w with terminal syntax colouring for format f.
func Highlight(w io.Writer, src []byte, f Format) error {
	if err := quick.Highlight(w, string(src), f.lexer(), highlightFormatter, highlightStyle); err != nil {
		return fmt.Errorf("failed to highlight descriptor: %w", err)
	}
	return nil
}
