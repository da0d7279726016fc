// Package query runs JSONPath expressions over the JSON form of a CAF
// document, e.g. `$.commands[*].Spawn.x` or `$.manifest[?(@.file == 'self')].key`.
package query

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/models"
)

// Query is a compiled JSONPath expression.
type Query struct {
	expr jp.Expr
	src  string
}

// Compile parses a JSONPath expression.
func Compile(selector string) (*Query, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	return &Query{expr: x, src: selector}, nil
}

// String returns the expression as written.
func (q *Query) String() string {
	return q.src
}

// Get returns every value the expression selects in root. root may hold
// models.JSONObject/JSONArray and json.Number values.
func (q *Query) Get(root models.JSONValue) []any {
	return q.expr.Get(models.Plain(root))
}

// Document runs the expression over doc's JSON form, an object with
// "manifest", "imports" and "commands" keys.
func (q *Query) Document(doc *caf.Document) ([]any, error) {
	root, err := doc.ToJSON()
	if err != nil {
		return nil, err
	}
	return q.Get(root), nil
}

// Run compiles selector and runs it over doc.
func Run(doc *caf.Document, selector string) ([]any, error) {
	q, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return q.Document(doc)
}

// Format renders results as JSON with sorted keys, one result per line.
// indent 0 keeps each result on a single line.
func Format(results []any, indent int) string {
	opts := &ojg.Options{Indent: indent, Sort: true}
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(oj.JSON(r, opts))
		sb.WriteByte('\n')
	}
	return sb.String()
}
