package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Prefix returns the name the running executable was installed as, which
// names the configuration and cache directories and prefixes environment
// variables. Leading dots are removed. Binaries built by go test and by the
// dlv debugger use [Name].
var Prefix = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	return prefixOf(exe)
})

func prefixOf(exe string) string {
	base := strings.TrimLeft(filepath.Base(exe), ".")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	switch {
	case base == "", strings.HasPrefix(base, "__debug_bin"):
		return Name
	case strings.HasSuffix(filepath.Base(exe), ".test"):
		return Name
	}

	return base
}

// ConfigDir returns the per-user configuration directory of stargn.
var ConfigDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// CacheDir returns the per-user cache directory of stargn. The REPL history
// and profiles are written below it.
var CacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// userDir joins Prefix to the directory lookup returns. When lookup fails,
// the hidden directory under the home directory is used, then the working
// directory.
func userDir(lookup func() (string, error), hidden string) string {
	if dir, err := lookup(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, hidden, Prefix())
	}

	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "."+Prefix())
	}

	return "." + Prefix()
}
