package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stargn/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type workspaceKey struct{}

// WithWorkspace returns a new context.Context containing the workspace the
// commands evaluate.
func WithWorkspace(ctx context.Context, w *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, w)
}

// workspaceFrom retrieves the workspace stored in ctx by WithWorkspace.
// It returns a workspace rooted at the working directory if none was stored.
func workspaceFrom(ctx context.Context) *Workspace {
	w, ok := ctx.Value(workspaceKey{}).(*Workspace)
	if !ok || w == nil {
		return &Workspace{Root: "."}
	}

	return w
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// hard links.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// relScripts converts the script paths named on the command line into
// slash-separated paths relative to root. A build file path such as
// "app/BUILD.gn" names its Starlark alternative "app/BUILD.stargn".
//
// Paths are deduplicated by resolving symlinks and comparing device/inode
// pairs, so the same script named twice is evaluated once.
func relScripts(root string, paths []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ErrDiscover.Wrap(err).With(slog.String("root", root))
	}

	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	seen := make(map[any]struct{}, len(paths))
	rel := make([]string, 0, len(paths))

	for _, p := range paths {
		resolved, key, err := resolveScript(lang.ScriptPath(p))
		if err != nil {
			return nil, ErrDiscover.Wrap(err).With(slog.String("script", p))
		}

		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}

		r, err := filepath.Rel(absRoot, resolved)
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return nil, ErrDiscover.
				With(slog.String("script", p), slog.String("root", absRoot)).
				Wrap(os.ErrNotExist)
		}

		rel = append(rel, filepath.ToSlash(r))
	}

	return rel, nil
}

// resolveScript returns the absolute, symlink-free path of a script and its
// identity: the device/inode pair, or the resolved path where the platform
// has no inode data.
func resolveScript(path string) (string, any, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", nil, err
	}

	if key, ok := makeFileKey(info); ok {
		return resolved, key, nil
	}

	return resolved, resolved, nil
}
