package caf

import (
	"strings"
	"unique"

	"github.com/mcncl/cafkit/internal/models"
)

const manifestTag = "#manifest"

// ManifestFile is the file side of a manifest entry: either the document
// itself (`self`) or a quoted path. Paths are interned like keys, since the
// same files appear in many manifests.
type ManifestFile struct {
	SelfRef bool
	// Path is the quoted literal as written.
	Path String
	h    unique.Handle[string]
}

// SelfFile returns the `self` reference.
func SelfFile() ManifestFile {
	return ManifestFile{SelfRef: true}
}

// FileRef returns a reference to path.
func FileRef(path string) ManifestFile {
	return pathFile(String{Value: path})
}

func pathFile(lit String) ManifestFile {
	return ManifestFile{Path: lit, h: unique.Make(lit.Value)}
}

// Handle returns the interned path. It is the zero handle for `self`.
func (f ManifestFile) Handle() unique.Handle[string] {
	return f.h
}

// String returns "self" or the path.
func (f ManifestFile) String() string {
	switch {
	case f.SelfRef:
		return "self"
	case f.h != (unique.Handle[string]{}):
		return f.h.Value()
	default:
		return f.Path.Value
	}
}

func (f *ManifestFile) write(w RawWriter) error {
	if f.SelfRef {
		_, err := w.WriteString("self")
		return err
	}
	return f.Path.writeQuoted(w)
}

// ManifestKey is the short name a manifest gives to a file. Keys are
// interned: documents repeat the same keys in manifests and imports.
type ManifestKey struct {
	h unique.Handle[string]
}

// NewManifestKey interns key. It does not validate it; see ValidManifestKey.
func NewManifestKey(key string) ManifestKey {
	return ManifestKey{h: unique.Make(key)}
}

// String returns the key text.
func (k ManifestKey) String() string {
	if k.h == (unique.Handle[string]{}) {
		return ""
	}
	return k.h.Value()
}

// ValidManifestKey reports whether key is a lowercase dot-separated
// identifier, e.g. "ui.main", with no empty segments.
func ValidManifestKey(key string) bool {
	if key == "" {
		return false
	}
	for _, seg := range strings.Split(key, ".") {
		if !validLowerIdent(seg) {
			return false
		}
	}
	return true
}

func validLowerIdent(s string) bool {
	if s == "" || !(isLower(s[0]) || s[0] == '_') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLower(s[i]) && !isDigit(s[i]) && s[i] != '_' {
			return false
		}
	}
	return true
}

// ManifestEntry is one `{file} as {key}` line.
type ManifestEntry struct {
	// EntryFill precedes the file and must hold a newline.
	EntryFill Fill
	File      ManifestFile
	// AsFill precedes `as`.
	AsFill Fill
	// KeyFill precedes the key.
	KeyFill Fill
	Key     ManifestKey
}

// NewManifestEntry builds an entry mapping file to key with default spacing.
func NewManifestEntry(file ManifestFile, key string) ManifestEntry {
	return ManifestEntry{File: file, Key: NewManifestKey(key)}
}

// Write serializes the entry. Empty fills fall back to the canonical
// `\n{file} as {key}`.
func (e *ManifestEntry) Write(w RawWriter) error {
	if err := e.EntryFill.WriteOrElse(w, "\n"); err != nil {
		return err
	}
	if err := e.File.write(w); err != nil {
		return err
	}
	if err := e.AsFill.WriteOrElse(w, " "); err != nil {
		return err
	}
	if _, err := w.WriteString("as"); err != nil {
		return err
	}
	if err := e.KeyFill.WriteOrElse(w, " "); err != nil {
		return err
	}
	_, err := w.WriteString(e.Key.String())
	return err
}

// Manifest is the `#manifest` section. It maps files to keys so that other
// documents can import them.
type Manifest struct {
	StartFill Fill
	Entries   []ManifestEntry
}

// Write serializes the section. The leading fill defaults to nothing for
// the first section of a document and to a blank line otherwise.
func (m *Manifest) Write(first bool, w RawWriter) error {
	space := "\n\n"
	if first {
		space = ""
	}
	if err := m.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString(manifestTag); err != nil {
		return err
	}
	for i := range m.Entries {
		if err := m.Entries[i].Write(w); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON lists the entries as {"file": ..., "key": ...} objects.
func (m *Manifest) ToJSON() models.JSONArray {
	out := make(models.JSONArray, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, models.JSONObject{"file": e.File.String(), "key": e.Key.String()})
	}
	return out
}

// RecoverFill copies fill from a previous version, pairing entries by
// position.
func (m *Manifest) RecoverFill(other *Manifest) {
	m.StartFill.Recover(other.StartFill)
	for i := range min(len(m.Entries), len(other.Entries)) {
		m.Entries[i].EntryFill.Recover(other.Entries[i].EntryFill)
		m.Entries[i].AsFill.Recover(other.Entries[i].AsFill)
		m.Entries[i].KeyFill.Recover(other.Entries[i].KeyFill)
	}
}

func (m *Manifest) walkFills(fn func(*Fill)) {
	fn(&m.StartFill)
	for i := range m.Entries {
		fn(&m.Entries[i].EntryFill)
		fn(&m.Entries[i].AsFill)
		fn(&m.Entries[i].KeyFill)
	}
}

// TryParseManifest parses a manifest section at content. fill is the fill
// already consumed in front of it.
//
// When content does not start with the `#manifest` tag it returns a nil
// manifest together with the untouched fill and content, so the caller can
// try other section parsers. Otherwise it returns the manifest, the fill
// that follows its last entry and the content after that fill.
func TryParseManifest(content Span, fill Fill) (*Manifest, Fill, Span, error) {
	if !content.hasKeyword(manifestTag) {
		return nil, fill, content, nil
	}
	m := &Manifest{StartFill: fill}
	rest := content.advance(len(manifestTag))
	for {
		entryFill, next, err := ParseFill(rest)
		if err != nil {
			return nil, fill, content, err
		}
		if !entryFill.HasNewline() || !(next.hasKeyword("self") || next.peek() == '"') {
			return m, entryFill, next, nil
		}
		entry, after, err := parseManifestEntry(next, entryFill)
		if err != nil {
			return nil, fill, content, err
		}
		m.Entries = append(m.Entries, entry)
		rest = after
	}
}

func parseManifestEntry(content Span, entryFill Fill) (ManifestEntry, Span, error) {
	entry := ManifestEntry{EntryFill: entryFill}
	after := content
	if content.hasKeyword("self") {
		entry.File = SelfFile()
		after = content.advance(len("self"))
	} else {
		v, next, err := parseString(content, Fill{})
		if err != nil {
			return entry, content, err
		}
		entry.File = pathFile(*v.(*String))
		after = next
	}

	asFill, key, keyFill, after, err := parseAsClause(after)
	if err != nil {
		return entry, content, err
	}
	if !ValidManifestKey(key) {
		return entry, content, after.errorf("invalid manifest key %q", key)
	}
	entry.AsFill, entry.KeyFill, entry.Key = asFill, keyFill, NewManifestKey(key)
	return entry, after.advance(len(key)), nil
}

// parseAsClause parses ` as <key>` and returns the span positioned at the
// key, which the caller validates and consumes.
func parseAsClause(content Span) (Fill, string, Fill, Span, error) {
	asFill, next, err := ParseFill(content)
	if err != nil {
		return Fill{}, "", Fill{}, content, err
	}
	if asFill.IsEmpty() || !next.hasKeyword("as") {
		return Fill{}, "", Fill{}, content, next.errorf("expected ' as '")
	}
	keyFill, keyStart, err := ParseFill(next.advance(2))
	if err != nil {
		return Fill{}, "", Fill{}, content, err
	}
	if keyFill.IsEmpty() {
		return Fill{}, "", Fill{}, content, keyStart.errorf("expected whitespace after 'as'")
	}
	n := keyStart.scanWhile(func(b byte) bool { return isIdentByte(b) || b == '.' })
	if n == 0 {
		return Fill{}, "", Fill{}, content, keyStart.errorf("expected a key after 'as'")
	}
	return asFill, keyStart.Rest()[:n], keyFill, keyStart, nil
}
