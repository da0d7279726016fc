package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/errors"
	"github.com/mcncl/cafkit/internal/formatter"
	"github.com/mcncl/cafkit/internal/loader"
	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/parser"
	"github.com/mcncl/cafkit/internal/query"
	"github.com/mcncl/cafkit/internal/schema"
)

// FmtCmd re-serializes a document, optionally in canonical layout.
type FmtCmd struct {
	File      string `arg:"" help:"CAF document to format." type:"path"`
	Write     bool   `help:"Write the result back to the file instead of stdout." short:"w"`
	Canonical bool   `help:"Reset layout-only whitespace to the default spacing."`
}

// Run executes the fmt command
func (c *FmtCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return readError(c.File, err)
	}

	f := formatter.NewFormatter(c.Canonical || ctx.Config.Format.Canonical)
	out, err := f.Format(string(data))
	if err != nil {
		return errors.NewParsingError(c.File, err)
	}

	if !c.Write {
		return writeOutput(ctx, "", out)
	}
	if out == string(data) {
		ctx.Logger.Info("already formatted", "path", c.File)
		return nil
	}
	return writeOutput(ctx, c.File, out)
}

// JSONCmd prints the JSON form of a document.
type JSONCmd struct {
	File string `arg:"" help:"CAF document to convert." type:"path"`
	All  bool   `help:"Print the manifest and imports too, not just the commands." short:"a"`
}

// Run executes the json command
func (c *JSONCmd) Run(ctx *Context) error {
	doc, err := parser.ParseFile(c.File)
	if err != nil {
		return err
	}

	var val models.JSONValue
	if c.All {
		val, err = doc.ToJSON()
	} else {
		cmds := doc.Commands()
		if cmds == nil {
			return errors.NewConversionError(c.File, errors.ErrNoCommands)
		}
		val, err = cmds.ToJSON()
	}
	if err != nil {
		return errors.NewConversionError(fmt.Sprintf("failed to convert '%s' to JSON", c.File), err)
	}

	out, err := marshalJSON(val, ctx.Config.JSON.Indent)
	if err != nil {
		return errors.NewOutputError("failed to encode JSON", err)
	}
	return writeOutput(ctx, "", out)
}

func marshalJSON(val models.JSONValue, indent int) (string, error) {
	var (
		b   []byte
		err error
	)
	if indent > 0 {
		b, err = json.MarshalIndent(val, "", strings.Repeat(" ", indent))
	} else {
		b, err = json.Marshal(val)
	}
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// FromJSONCmd builds a commands section from JSON.
type FromJSONCmd struct {
	Input   string `help:"JSON input file. Reads stdin when set to '-'." short:"i" default:"-"`
	Schema  string `help:"Type registry (YAML, or JSON Schema when the file ends in .json)." short:"s" type:"path"`
	Recover string `help:"Previous version of the document. Its layout and other sections are kept." short:"r" type:"path"`
	Output  string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// Run executes the from-json command
func (c *FromJSONCmd) Run(ctx *Context) error {
	reg, err := c.registry(ctx)
	if err != nil {
		return err
	}

	var val models.JSONValue
	if c.Input == "-" {
		val, err = parser.ParseJSON(ctx.Stdin)
	} else {
		val, err = parser.ParseJSONFile(c.Input)
	}
	if err != nil {
		return err
	}

	cmds, err := caf.CommandsFromJSON(val, reg)
	if err != nil {
		return errors.NewConversionError("failed to convert JSON to commands", err)
	}

	doc := &caf.Document{Sections: []caf.Section{cmds}, EndFill: caf.NewFill("\n")}
	if c.Recover != "" {
		prev, err := parser.ParseFile(c.Recover)
		if err != nil {
			return err
		}
		if old := prev.Commands(); old != nil && ctx.Config.RecoverFill {
			cmds.RecoverFill(old)
		}
		prev.SetCommands(cmds)
		doc = prev
		ctx.Logger.Debug("recovered layout", "from", c.Recover)
	}

	return writeOutput(ctx, c.Output, doc.String())
}

func (c *FromJSONCmd) registry(ctx *Context) (*schema.Registry, error) {
	path := c.Schema
	if path == "" {
		target := c.Output
		if target == "" {
			target = c.Recover
		}
		path = ctx.Config.SchemaFor(target)
	}
	if path == "" {
		return nil, errors.NewSchemaError("no type registry given; pass --schema or set 'schema' in .cafkit.yml", nil)
	}

	reg, err := schema.ParseFile(path)
	if err != nil {
		return nil, errors.NewSchemaError(fmt.Sprintf("failed to load '%s': %v", path, err), err)
	}
	ctx.Logger.Debug("type registry loaded", "path", path, "types", reg.Len())
	return reg, nil
}

// QueryCmd runs a JSONPath expression.
type QueryCmd struct {
	File string `arg:"" help:"CAF document to query." type:"path"`
	Expr string `arg:"" help:"JSONPath expression, e.g. '$.commands[*].Spawn'."`
}

// Run executes the query command
func (c *QueryCmd) Run(ctx *Context) error {
	q, err := query.Compile(c.Expr)
	if err != nil {
		return errors.NewInputError(err.Error(), err)
	}
	doc, err := parser.ParseFile(c.File)
	if err != nil {
		return err
	}
	results, err := q.Document(doc)
	if err != nil {
		return errors.NewConversionError(fmt.Sprintf("failed to convert '%s' to JSON", c.File), err)
	}
	ctx.Logger.Debug("query matched", "expr", q.String(), "results", len(results))
	return writeOutput(ctx, "", query.Format(results, ctx.Config.JSON.Indent))
}

// CheckCmd resolves a document's manifest and import graph.
type CheckCmd struct {
	File string `arg:"" help:"Entry CAF document." type:"path"`
	Root string `help:"Assets root that manifest paths are relative to. Defaults to assets_root from the config." type:"path"`
}

// Run executes the check command
func (c *CheckCmd) Run(ctx *Context) error {
	root := c.Root
	if root == "" {
		root = ctx.Config.AssetsRoot
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid assets root '%s'", root), err)
	}
	file, err := filepath.Abs(c.File)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid file path '%s'", c.File), err)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("'%s' is not under the assets root '%s'", c.File, root), errors.ErrInvalidFilePath)
	}

	l := loader.New(osfs.New(root), loader.WithLogger(ctx.Logger))
	bundle, err := l.Load(filepath.ToSlash(rel))
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, p := range bundle.Order {
		fmt.Fprintf(&sb, "%s\n", p)
	}
	fmt.Fprintf(&sb, "ok: %d files, %d manifest keys\n", len(bundle.Order), bundle.Keys())
	return writeOutput(ctx, "", sb.String())
}

// SchemaCmd converts a JSON Schema into a registry file.
type SchemaCmd struct {
	File     string `arg:"" help:"JSON Schema file." type:"path"`
	RootName string `help:"Type name for the schema root. Defaults to the schema title, then Root." short:"r"`
	Output   string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
}

// Run executes the schema command
func (c *SchemaCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return readError(c.File, err)
	}
	s, err := schema.ParseJSONSchema(data)
	if err != nil {
		return errors.NewSchemaError(fmt.Sprintf("failed to parse '%s': %v", c.File, err), err)
	}
	reg, err := schema.FromJSONSchema(s, c.RootName)
	if err != nil {
		return errors.NewSchemaError(fmt.Sprintf("failed to convert '%s': %v", c.File, err), err)
	}

	out, err := yaml.Marshal(reg)
	if err != nil {
		return errors.NewOutputError("failed to encode registry", err)
	}
	return writeOutput(ctx, c.Output, string(out))
}

func readError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
	}
	return errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
}

// writeOutput writes out to path, or to stdout when path is empty
func writeOutput(ctx *Context, path, out string) error {
	if path == "" {
		if _, err := io.WriteString(ctx.Stdout, out); err != nil {
			return errors.NewOutputError("failed to write to stdout", err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	ctx.Logger.Info("wrote file", "path", path)
	return nil
}
