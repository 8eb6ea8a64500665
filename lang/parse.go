package lang

import (
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
	"go.starlark.net/syntax"
)

// ScriptExt is the file extension of build scripts written in Starlark.
const ScriptExt = ".stargn"

// Script is a parsed build script. It is immutable once parsed.
type Script struct {
	// Name is the display name used in diagnostics.
	Name string
	// File is the Starlark syntax tree.
	File *syntax.File
	// Digest is the xxh3 hash of the source text.
	Digest uint64

	src []byte
}

// Load is one module-load statement of a script.
type Load struct {
	Module string
	// Names lists the symbols the statement imports from the module.
	Names []string
	Pos   syntax.Position
}

// Parse parses src as a Starlark build script.
func Parse(name string, src []byte) (*Script, error) {
	f, err := syntax.LegacyFileOptions().Parse(name, src, 0)
	if err != nil {
		return nil, ErrParse.Wrap(err).With(slog.String("script", name))
	}

	return &Script{
		Name:   name,
		File:   f,
		Digest: xxh3.Hash(src),
		src:    src,
	}, nil
}

// ParseReader reads a script from r and parses it.
func ParseReader(name string, r io.Reader) (*Script, error) {
	// Wrap reader with async read-ahead so large scripts stream while the
	// previous chunk is copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	src, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("script", name))
	}

	return Parse(name, src)
}

// ParseFile reads and parses the script at name within fsys.
func ParseFile(fsys fs.FS, name string) (*Script, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("script", name))
	}
	defer f.Close()

	return ParseReader(name, f)
}

// Source returns the text the script was parsed from.
func (s *Script) Source() []byte { return s.src }

// Loads returns the module-load statements of the script in source order.
func (s *Script) Loads() []Load {
	var loads []Load

	for _, stmt := range s.File.Stmts {
		ld, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}

		module, _ := ld.Module.Value.(string)

		names := make([]string, len(ld.From))
		for i, id := range ld.From {
			names[i] = id.Name
		}

		loads = append(loads, Load{Module: module, Names: names, Pos: ld.Load})
	}

	return loads
}

// ScriptPath returns the Starlark alternative of a build file path by
// replacing its extension with [ScriptExt]: "a/BUILD.gn" becomes
// "a/BUILD.stargn".
func ScriptPath(p string) string {
	ext := path.Ext(p)
	if ext == ScriptExt {
		return p
	}

	return strings.TrimSuffix(p, ext) + ScriptExt
}
