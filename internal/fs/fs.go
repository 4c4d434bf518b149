// Package fs provides the filesystem abstraction used to read scenario
// folders and write report artifacts.
//
// The main types are:
//   - [FS]: interface for the filesystem operations perfagg needs
//   - [Real]: production implementation using the [os] package
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("results/run-1/metadata.txt")
//	if err != nil {
//	    return err
//	}
package fs

import (
	"os"
)

// FS defines the read and write operations used by the collector and the
// report writers.
//
// All methods mirror their [os] package equivalents but can be intercepted
// in tests.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces the file at path with data. The parent
	// directory must already exist (see MkdirAll). Uses a temp file + rename so readers never observe a partial report
	// and nothing from a previous run survives.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// ReadDir reads a directory and returns its entries. See [os.ReadDir].
	// Entries are sorted by name.
	ReadDir(path string) ([]os.DirEntry, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)
}
