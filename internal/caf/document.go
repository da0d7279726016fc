package caf

import (
	"strings"

	"github.com/mcncl/cafkit/internal/models"
)

// Section is a top-level tagged block of a document: *Manifest, *Import or
// *Commands.
type Section interface {
	// Write serializes the section. first tells whether it opens the
	// document, which decides the default leading fill.
	Write(first bool, w RawWriter) error
	walkFills(fn func(*Fill))
}

type sectionParser func(content Span, fill Fill) (Section, Fill, Span, error)

// sectionParsers are tried in order on the fill-trimmed content in front of
// each section. The first one that recognizes its tag wins.
var sectionParsers = []sectionParser{
	func(content Span, fill Fill) (Section, Fill, Span, error) {
		m, f, rest, err := TryParseManifest(content, fill)
		if m == nil {
			return nil, f, rest, err
		}
		return m, f, rest, err
	},
	func(content Span, fill Fill) (Section, Fill, Span, error) {
		im, f, rest, err := TryParseImport(content, fill)
		if im == nil {
			return nil, f, rest, err
		}
		return im, f, rest, err
	},
	func(content Span, fill Fill) (Section, Fill, Span, error) {
		c, f, rest, err := TryParseCommands(content, fill)
		if c == nil {
			return nil, f, rest, err
		}
		return c, f, rest, err
	},
}

// Document is a parsed CAF file: its sections in file order and the fill
// that trails the last one.
type Document struct {
	Sections []Section
	EndFill  Fill
}

// ParseDocument parses src into a Document. Writing the result back
// reproduces src exactly.
func ParseDocument(src string) (*Document, error) {
	fill, content, err := ParseFill(NewSpan(src))
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	for !content.IsEmpty() {
		if len(doc.Sections) > 0 && !fill.HasNewline() {
			return nil, content.errorf("expected a line break before section")
		}
		matched := false
		for _, parse := range sectionParsers {
			sec, next, rest, err := parse(content, fill)
			if err != nil {
				return nil, err
			}
			if sec == nil {
				continue
			}
			doc.Sections = append(doc.Sections, sec)
			fill, content = next, rest
			matched = true
			break
		}
		if !matched {
			return nil, content.errorf("expected a section tag, found %q", lineAt(content))
		}
	}
	doc.EndFill = fill
	return doc, nil
}

func lineAt(content Span) string {
	rest := content.Rest()
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	if len(rest) > 32 {
		rest = rest[:32] + "..."
	}
	return rest
}

// Write serializes the document.
func (d *Document) Write(w RawWriter) error {
	for i, s := range d.Sections {
		if err := s.Write(i == 0, w); err != nil {
			return err
		}
	}
	return d.EndFill.Write(w)
}

// String returns the serialized document.
func (d *Document) String() string {
	var sb strings.Builder
	// strings.Builder never fails to write.
	_ = d.Write(&sb)
	return sb.String()
}

// WalkFills calls fn on every fill of the document in source order.
func (d *Document) WalkFills(fn func(*Fill)) {
	for _, s := range d.Sections {
		s.walkFills(fn)
	}
	fn(&d.EndFill)
}

// Manifest returns the first manifest section, or nil.
func (d *Document) Manifest() *Manifest {
	for _, s := range d.Sections {
		if m, ok := s.(*Manifest); ok {
			return m
		}
	}
	return nil
}

// Imports returns every import entry of the document, across sections.
func (d *Document) Imports() []ImportEntry {
	var out []ImportEntry
	for _, s := range d.Sections {
		if im, ok := s.(*Import); ok {
			out = append(out, im.Entries...)
		}
	}
	return out
}

// Commands returns the first commands section, or nil.
func (d *Document) Commands() *Commands {
	for _, s := range d.Sections {
		if c, ok := s.(*Commands); ok {
			return c
		}
	}
	return nil
}

// SetCommands replaces the first commands section with c, or appends c when
// the document has none.
func (d *Document) SetCommands(c *Commands) {
	for i, s := range d.Sections {
		if _, ok := s.(*Commands); ok {
			d.Sections[i] = c
			return
		}
	}
	d.Sections = append(d.Sections, c)
}

// ToJSON converts the document into an object with "manifest", "imports"
// and "commands" keys. Sections the document lacks are left out.
func (d *Document) ToJSON() (models.JSONObject, error) {
	out := models.JSONObject{}
	if m := d.Manifest(); m != nil {
		out["manifest"] = m.ToJSON()
	}
	var imports models.JSONArray
	for _, s := range d.Sections {
		if im, ok := s.(*Import); ok {
			imports = append(imports, im.ToJSON()...)
		}
	}
	if imports != nil {
		out["imports"] = imports
	}
	if c := d.Commands(); c != nil {
		cmds, err := c.ToJSON()
		if err != nil {
			return nil, err
		}
		out["commands"] = cmds
	}
	return out, nil
}

// RecoverFill copies fill from a previous version of the document. Sections
// pair up by position and only recover from a section of the same kind.
func (d *Document) RecoverFill(other *Document) {
	for i := range min(len(d.Sections), len(other.Sections)) {
		switch s := d.Sections[i].(type) {
		case *Manifest:
			if o, ok := other.Sections[i].(*Manifest); ok {
				s.RecoverFill(o)
			}
		case *Import:
			if o, ok := other.Sections[i].(*Import); ok {
				s.RecoverFill(o)
			}
		case *Commands:
			if o, ok := other.Sections[i].(*Commands); ok {
				s.RecoverFill(o)
			}
		}
	}
	d.EndFill.Recover(other.EndFill)
}
