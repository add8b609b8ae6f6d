// Package filesys defines the small file-system surfaces the rest of the
// module consumes, plus an implementation that delegates to the standard
// library. Injecting these interfaces keeps the config loader and the
// hostfile backend testable without touching the real disk.
package filesys

import (
	"io/fs"
	"os"
)

// ReadFS is what the hostfile backend needs: stat for change detection and
// whole-file reads for parsing.
type ReadFS interface {
	Stat(string) (fs.FileInfo, error)
	Open(string) (*os.File, error)
	ReadFile(string) ([]byte, error)
}

// ReadWriteFS is the surface the config loader needs. It is intentionally
// smaller than os.File because the loader never needs random-access writes
// or directory iteration.
type ReadWriteFS interface {
	Stat(string) (fs.FileInfo, error)
	MkdirAll(string, os.FileMode) error
	Open(string) (*os.File, error)
	WriteFile(string, []byte, os.FileMode) error
}

// OS returns a file system implementation that delegates to the standard
// library. The returned value satisfies both ReadFS and ReadWriteFS.
func OS() OsFS {
	return OsFS{}
}

// OsFS implements ReadFS and ReadWriteFS against the local disk.
type OsFS struct{}

func (OsFS) Stat(p string) (fs.FileInfo, error)                { return os.Stat(p) }
func (OsFS) MkdirAll(p string, m os.FileMode) error            { return os.MkdirAll(p, m) }
func (OsFS) Open(p string) (*os.File, error)                   { return os.Open(p) }
func (OsFS) ReadFile(p string) ([]byte, error)                 { return os.ReadFile(p) }
func (OsFS) WriteFile(p string, b []byte, m os.FileMode) error { return os.WriteFile(p, b, m) }

var (
	_ ReadFS      = OsFS{}
	_ ReadWriteFS = OsFS{}
)
