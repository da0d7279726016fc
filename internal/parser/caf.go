// Package parser reads CAF documents and JSON values from readers, strings
// and files, wrapping failures in the application's error taxonomy.
package parser

import (
	"fmt"
	"io"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/errors"
)

// Parse reads a whole CAF document from reader. An empty document is valid:
// it has no sections.
func Parse(reader io.Reader) (*caf.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read document", err)
	}
	return parseNamed("document", string(data))
}

// ParseString parses a CAF document from a string
func ParseString(src string) (*caf.Document, error) {
	return parseNamed("document", src)
}

// ParseFile parses the CAF document at filePath. Parse errors carry the
// path.
func ParseFile(filePath string) (*caf.Document, error) {
	file, err := openInput(filePath)
	if err != nil {
		return nil, err
	}
	defer closeInput(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return parseNamed(filePath, string(data))
}

// ParseBytes parses src, naming it in errors.
func ParseBytes(name string, src []byte) (*caf.Document, error) {
	return parseNamed(name, string(src))
}

func parseNamed(name, src string) (*caf.Document, error) {
	doc, err := caf.ParseDocument(src)
	if err != nil {
		return nil, errors.NewParsingError(name, fmt.Errorf("%w: %w", errors.ErrInvalidCAF, err))
	}
	return doc, nil
}
