package caf

import (
	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

const commandsTag = "#commands"

// CommandEntry is one command line: a registered type name, optionally
// followed by a value on the same line.
type CommandEntry struct {
	Fill  Fill
	Name  string
	Value Value
}

// Commands is the `#commands` section. Each entry applies a typed value
// when the document is loaded.
type Commands struct {
	StartFill Fill
	Entries   []CommandEntry
}

// Add appends a command with default fill. value may be nil for a unit
// command.
func (c *Commands) Add(name string, value Value) *Commands {
	c.Entries = append(c.Entries, CommandEntry{Name: name, Value: value})
	return c
}

// Write serializes the section.
func (c *Commands) Write(first bool, w RawWriter) error {
	space := "\n\n"
	if first {
		space = ""
	}
	if err := c.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString(commandsTag); err != nil {
		return err
	}
	for _, e := range c.Entries {
		if err := e.Fill.WriteOrElse(w, "\n"); err != nil {
			return err
		}
		if _, err := w.WriteString(e.Name); err != nil {
			return err
		}
		if e.Value == nil {
			continue
		}
		if err := e.Value.WriteWithSpace(w, " "); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON converts the section into an array of single-key objects. A unit
// command maps to null.
func (c *Commands) ToJSON() (models.JSONArray, error) {
	out := make(models.JSONArray, 0, len(c.Entries))
	for _, e := range c.Entries {
		var inner models.JSONValue
		if e.Value != nil {
			j, err := e.Value.ToJSON()
			if err != nil {
				return nil, err
			}
			inner = j
		}
		out = append(out, models.JSONObject{e.Name: inner})
	}
	return out, nil
}

// CommandsFromJSON builds a Commands section from the JSON form produced by
// ToJSON. Every type name must be registered.
func CommandsFromJSON(val models.JSONValue, reg *schema.Registry) (*Commands, error) {
	items, ok := models.AsArray(val)
	if !ok {
		return nil, shapeErr("commands", val, "an array")
	}
	out := &Commands{}
	for _, item := range items {
		obj, ok := models.AsObject(item)
		if !ok || len(obj) != 1 {
			return nil, shapeErr("commands", item, "a single-key object")
		}
		for name, inner := range obj {
			info, found := reg.Get(name)
			if !found {
				return nil, &UnknownTypeError{Name: name}
			}
			if inner == nil {
				out.Add(name, nil)
				continue
			}
			v, err := FromJSON(inner, info, reg)
			if err != nil {
				return nil, err
			}
			out.Add(name, v)
		}
	}
	return out, nil
}

// RecoverFill copies fill from a previous version of the section. Entries
// pair up by position.
func (c *Commands) RecoverFill(other *Commands) {
	c.StartFill.Recover(other.StartFill)
	for i := range min(len(c.Entries), len(other.Entries)) {
		e, o := &c.Entries[i], &other.Entries[i]
		e.Fill.Recover(o.Fill)
		if e.Value != nil && o.Value != nil {
			e.Value.RecoverFill(o.Value)
		}
	}
}

func (c *Commands) walkFills(fn func(*Fill)) {
	fn(&c.StartFill)
	for i := range c.Entries {
		fn(&c.Entries[i].Fill)
		if v := c.Entries[i].Value; v != nil {
			v.walkFills(fn)
		}
	}
}

// TryParseCommands parses a commands section at content, following the same
// contract as TryParseManifest.
func TryParseCommands(content Span, fill Fill) (*Commands, Fill, Span, error) {
	if !content.hasKeyword(commandsTag) {
		return nil, fill, content, nil
	}
	c := &Commands{StartFill: fill}
	rest := content.advance(len(commandsTag))
	for {
		entryFill, next, err := ParseFill(rest)
		if err != nil {
			return nil, fill, content, err
		}
		if !entryFill.HasNewline() || !isUpper(next.peek()) {
			return c, entryFill, next, nil
		}
		n := next.scanWhile(isIdentByte)
		entry := CommandEntry{Fill: entryFill, Name: next.Rest()[:n]}
		after := next.advance(n)

		valueFill, valueStart, err := ParseFill(after)
		if err != nil {
			return nil, fill, content, err
		}
		if !valueFill.HasNewline() && startsValue(valueStart) {
			if valueFill.IsEmpty() {
				return nil, fill, content, valueStart.errorf("expected whitespace after command %q", entry.Name)
			}
			entry.Value, after, err = ParseValue(valueStart, valueFill)
			if err != nil {
				return nil, fill, content, err
			}
		}
		c.Entries = append(c.Entries, entry)
		rest = after
	}
}
