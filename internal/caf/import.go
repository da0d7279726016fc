package caf

import "github.com/mcncl/cafkit/internal/models"

const importTag = "#import"

// ImportEntry is one `{key} as {alias}` line. An alias of "_" imports the
// file without naming it.
type ImportEntry struct {
	EntryFill Fill
	Key       ManifestKey
	AsFill    Fill
	AliasFill Fill
	Alias     string
}

// NewImportEntry builds an entry importing key under alias with default
// spacing.
func NewImportEntry(key, alias string) ImportEntry {
	return ImportEntry{Key: NewManifestKey(key), Alias: alias}
}

// Anonymous reports whether the entry imports without an alias.
func (e *ImportEntry) Anonymous() bool {
	return e.Alias == "_"
}

// Write serializes the entry.
func (e *ImportEntry) Write(w RawWriter) error {
	if err := e.EntryFill.WriteOrElse(w, "\n"); err != nil {
		return err
	}
	if _, err := w.WriteString(e.Key.String()); err != nil {
		return err
	}
	if err := e.AsFill.WriteOrElse(w, " "); err != nil {
		return err
	}
	if _, err := w.WriteString("as"); err != nil {
		return err
	}
	if err := e.AliasFill.WriteOrElse(w, " "); err != nil {
		return err
	}
	_, err := w.WriteString(e.Alias)
	return err
}

// Import is the `#import` section: manifest keys the document depends on.
type Import struct {
	StartFill Fill
	Entries   []ImportEntry
}

// Write serializes the section.
func (im *Import) Write(first bool, w RawWriter) error {
	space := "\n\n"
	if first {
		space = ""
	}
	if err := im.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString(importTag); err != nil {
		return err
	}
	for i := range im.Entries {
		if err := im.Entries[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON lists the entries as {"key": ..., "alias": ...} objects.
func (im *Import) ToJSON() models.JSONArray {
	out := make(models.JSONArray, 0, len(im.Entries))
	for _, e := range im.Entries {
		out = append(out, models.JSONObject{"key": e.Key.String(), "alias": e.Alias})
	}
	return out
}

// RecoverFill copies fill from a previous version, pairing entries by
// position.
func (im *Import) RecoverFill(other *Import) {
	im.StartFill.Recover(other.StartFill)
	for i := range min(len(im.Entries), len(other.Entries)) {
		im.Entries[i].EntryFill.Recover(other.Entries[i].EntryFill)
		im.Entries[i].AsFill.Recover(other.Entries[i].AsFill)
		im.Entries[i].AliasFill.Recover(other.Entries[i].AliasFill)
	}
}

func (im *Import) walkFills(fn func(*Fill)) {
	fn(&im.StartFill)
	for i := range im.Entries {
		fn(&im.Entries[i].EntryFill)
		fn(&im.Entries[i].AsFill)
		fn(&im.Entries[i].AliasFill)
	}
}

// TryParseImport parses an import section at content, following the same
// contract as TryParseManifest.
func TryParseImport(content Span, fill Fill) (*Import, Fill, Span, error) {
	if !content.hasKeyword(importTag) {
		return nil, fill, content, nil
	}
	im := &Import{StartFill: fill}
	rest := content.advance(len(importTag))
	for {
		entryFill, next, err := ParseFill(rest)
		if err != nil {
			return nil, fill, content, err
		}
		if !entryFill.HasNewline() || !(isLower(next.peek()) || next.peek() == '_') {
			return im, entryFill, next, nil
		}
		n := next.scanWhile(func(b byte) bool { return isIdentByte(b) || b == '.' })
		key := next.Rest()[:n]
		if !ValidManifestKey(key) {
			return nil, fill, content, next.errorf("invalid manifest key %q", key)
		}
		asFill, alias, aliasFill, aliasStart, err := parseAsClause(next.advance(n))
		if err != nil {
			return nil, fill, content, err
		}
		if alias != "_" && !validLowerIdent(alias) {
			return nil, fill, content, aliasStart.errorf("invalid import alias %q", alias)
		}
		im.Entries = append(im.Entries, ImportEntry{
			EntryFill: entryFill,
			Key:       NewManifestKey(key),
			AsFill:    asFill,
			AliasFill: aliasFill,
			Alias:     alias,
		})
		rest = aliasStart.advance(len(alias))
	}
}
