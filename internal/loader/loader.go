// Package loader resolves a CAF document together with every file its
// manifests and imports reach.
//
// Paths are slash-separated and relative to the root of the loader's
// filesystem. A manifest entry `"ui/button.caf" as ui.button` both
// declares the key and pulls the file into the bundle; an import of
// ui.button then depends on that file.
package loader

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/mcncl/cafkit/internal/caf"
	"github.com/mcncl/cafkit/internal/errors"
	"github.com/mcncl/cafkit/internal/parser"
)

// File is one loaded document.
type File struct {
	Path string
	Doc  *caf.Document
	// Deps are the paths this file imports from, in import order.
	Deps []string
}

// Bundle is the result of Load.
type Bundle struct {
	Entry string
	Files map[string]*File
	// Order lists every file with its dependencies before it.
	Order []string
	keys  map[caf.ManifestKey]string
}

// Resolve returns the file a manifest key was declared for.
func (b *Bundle) Resolve(key string) (*File, bool) {
	p, ok := b.keys[caf.NewManifestKey(key)]
	if !ok {
		return nil, false
	}
	return b.Files[p], true
}

// Keys returns the number of declared manifest keys.
func (b *Bundle) Keys() int {
	return len(b.keys)
}

// Loader reads documents from a billy filesystem.
type Loader struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader over fsys.
func New(fsys billy.Filesystem, opts ...Option) *Loader {
	l := &Loader{fs: fsys, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type loadState struct {
	bundle *Bundle
	// declared remembers who declared each key, for error messages.
	declared map[caf.ManifestKey]string
	queue    []string
}

// Load reads entry and everything reachable from it.
func (l *Loader) Load(entry string) (*Bundle, error) {
	entry, err := cleanPath(entry)
	if err != nil {
		return nil, errors.NewInputError(err.Error(), err)
	}
	st := &loadState{
		bundle: &Bundle{
			Entry: entry,
			Files: map[string]*File{},
			keys:  map[caf.ManifestKey]string{},
		},
		declared: map[caf.ManifestKey]string{},
	}

	if err := l.read(st, entry, ""); err != nil {
		return nil, err
	}
	// Manifests are all known once the queue drains, but imported files
	// may carry manifests of their own, so imports resolve in a second loop.
	for i := 0; i < len(st.queue); i++ {
		if err := l.resolveImports(st, st.queue[i]); err != nil {
			return nil, err
		}
	}

	order, err := sortFiles(st.bundle, st.queue)
	if err != nil {
		return nil, err
	}
	st.bundle.Order = order
	l.logger.Debug("bundle loaded", "entry", entry, "files", len(order), "keys", len(st.bundle.keys))
	return st.bundle, nil
}

// read loads p and, through its manifest, every file it declares.
func (l *Loader) read(st *loadState, p, from string) error {
	if _, ok := st.bundle.Files[p]; ok {
		return nil
	}
	l.logger.Debug("loading caf file", "path", p)

	data, err := util.ReadFile(l.fs, p)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			msg := fmt.Sprintf("'%s' does not exist", p)
			if from != "" {
				msg = fmt.Sprintf("'%s' (referenced by '%s') does not exist", p, from)
			}
			return errors.NewInputError(msg, errors.ErrFileNotFound)
		}
		return errors.NewInputError(fmt.Sprintf("failed to read '%s'", p), err)
	}
	doc, err := parser.ParseBytes(p, data)
	if err != nil {
		return err
	}

	file := &File{Path: p, Doc: doc}
	st.bundle.Files[p] = file
	st.queue = append(st.queue, p)

	m := doc.Manifest()
	if m == nil {
		return nil
	}
	for _, e := range m.Entries {
		target := p
		if !e.File.SelfRef {
			target, err = cleanPath(e.File.String())
			if err != nil {
				return errors.NewInputError(fmt.Sprintf("%s: manifest key %s: %v", p, e.Key, err), err)
			}
		}
		if err := st.declare(e.Key, target, p); err != nil {
			return err
		}
		l.logger.Debug("manifest key declared", "key", e.Key.String(), "path", target)
		if err := l.read(st, target, p); err != nil {
			return err
		}
	}
	return nil
}

func (st *loadState) declare(key caf.ManifestKey, target, by string) error {
	if prev, ok := st.bundle.keys[key]; ok && prev != target {
		return errors.NewInputError(
			fmt.Sprintf("manifest key '%s' maps to '%s' in '%s' and to '%s' in '%s'",
				key, prev, st.declared[key], target, by),
			errors.ErrDuplicateKey)
	}
	st.bundle.keys[key] = target
	st.declared[key] = by
	return nil
}

func (l *Loader) resolveImports(st *loadState, p string) error {
	file := st.bundle.Files[p]
	for _, im := range file.Doc.Imports() {
		target, ok := st.bundle.keys[im.Key]
		if !ok {
			return errors.NewInputError(
				fmt.Sprintf("'%s' imports '%s', which no manifest declares", p, im.Key),
				errors.ErrUnknownImport)
		}
		if target != p {
			file.Deps = append(file.Deps, target)
		}
		if err := l.read(st, target, p); err != nil {
			return err
		}
	}
	return nil
}

// sortFiles orders files so that every file comes after its imports.
func sortFiles(b *Bundle, discovered []string) ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(discovered))
	order := make([]string, 0, len(discovered))
	var stack []string

	var visit func(p string) error
	visit = func(p string) error {
		switch state[p] {
		case done:
			return nil
		case visiting:
			i := len(stack) - 1
			for stack[i] != p {
				i--
			}
			chain := append(append([]string{}, stack[i:]...), p)
			return errors.NewInputError(
				fmt.Sprintf("import cycle: %s", strings.Join(chain, " -> ")),
				errors.ErrManifestCycle)
		}
		state[p] = visiting
		stack = append(stack, p)
		for _, dep := range b.Files[p].Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[p] = done
		order = append(order, p)
		return nil
	}

	for _, p := range discovered {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cleanPath normalizes a document path and rejects paths that leave the
// filesystem root.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || path.IsAbs(p) {
		return "", fmt.Errorf("%w: '%s' must be relative to the assets root", errors.ErrInvalidFilePath, p)
	}
	p = path.Clean(p)
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: '%s' leaves the assets root", errors.ErrInvalidFilePath, p)
	}
	return p, nil
}
