package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/cafkit/internal/caf"
)

// Formatter re-serializes CAF documents. By default the output is
// byte-identical to the input; in canonical mode layout-only whitespace is
// replaced by the grammar's default spacing.
type Formatter struct {
	Canonical bool
}

// NewFormatter creates a new Formatter instance
func NewFormatter(canonical bool) *Formatter {
	return &Formatter{Canonical: canonical}
}

// Format parses src and writes it back.
func (f *Formatter) Format(src string) (string, error) {
	doc, err := caf.ParseDocument(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse CAF document: %w", err)
	}
	if f.Canonical {
		Canonicalize(doc)
	}
	return doc.String(), nil
}

// Canonicalize resets every whitespace-only fill of doc so that it is
// written with its default spacing. Fills holding comments are kept. A
// non-empty document ends with exactly one newline.
func Canonicalize(doc *caf.Document) {
	doc.WalkFills(func(fill *caf.Fill) {
		if fill.IsWhitespace() {
			*fill = caf.Fill{}
		}
	})
	if len(doc.Sections) == 0 && doc.EndFill.IsEmpty() {
		return
	}
	end := doc.EndFill.String()
	if !strings.HasSuffix(end, "\n") {
		end += "\n"
	}
	doc.EndFill = caf.NewFill(end)
}
