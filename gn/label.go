package gn

import (
	"path"
	"strings"
)

// Label identifies a target by source directory and name. Dir is a
// source-absolute path such as "//base" or "//".
type Label struct {
	Dir  string
	Name string
}

// String renders the label as "//dir:name".
func (l Label) String() string {
	return l.Dir + ":" + l.Name
}

// IsZero reports whether l is the zero label.
func (l Label) IsZero() bool { return l.Dir == "" && l.Name == "" }

// SourceDir converts a slash-separated path relative to the source root
// into a source-absolute directory.
func SourceDir(rel string) string {
	rel = path.Clean("/" + strings.TrimPrefix(rel, "//"))
	if rel == "/" {
		return "//"
	}

	return "/" + rel
}

// ParseLabel resolves s against the source-absolute directory current.
//
// Accepted forms are ":name", "//dir:name", "//dir" (the name is the last
// path component), and the relative forms "dir:name" and "dir".
func ParseLabel(current, s string) (Label, error) {
	if s == "" {
		return Label{}, NewErr(nil, "Empty label.")
	}

	dir, name, hasName := strings.Cut(s, ":")

	if hasName && (name == "" || strings.ContainsAny(name, ":/")) {
		return Label{}, NewErr(nil, "Invalid target name.", "In label \""+s+"\".")
	}

	switch {
	case dir == "":
		dir = current

	case strings.HasPrefix(dir, "//"):
		dir = SourceDir(dir)

	case strings.HasPrefix(dir, "/"):
		return Label{}, NewErr(nil, "System-absolute labels are not supported.",
			"In label \""+s+"\".")

	default:
		dir = SourceDir(path.Join(strings.TrimPrefix(current, "//"), dir))
	}

	if !hasName {
		name = path.Base(strings.TrimPrefix(dir, "//"))
		if name == "." || name == "/" || name == "" {
			return Label{}, NewErr(nil, "Label has no name.",
				"The root directory needs an explicit \":name\".")
		}
	}

	return Label{Dir: dir, Name: name}, nil
}
