package fs

import (
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate    float64 // Fail ReadFile entirely
	PartialReadRate float64 // Return truncated data from ReadFile
	WriteFailRate   float64 // Fail WriteFileAtomic before anything is replaced
	StatFailRate    float64 // Fail Stat
	ReadDirFailRate float64 // Fail ReadDir entirely
}

// DefaultChaosConfig returns a config with reasonable fault rates for testing.
func DefaultChaosConfig() ChaosConfig {
	return ChaosConfig{
		ReadFailRate:    0.05,
		PartialReadRate: 0.05,
		WriteFailRate:   0.05,
		StatFailRate:    0.02,
		ReadDirFailRate: 0.02,
	}
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS and ignores sticky
	// path state.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection and sticky path state.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects random failures for testing.
//
// EIO is sticky: once a path returned it, every later call on that path
// fails the same way until the mode changes to passthrough. ENOENT is never
// injected, so a missing-file skip in the collector always reflects the real
// filesystem.
//
// All injected errors are *fs.PathError values wrapping a syscall.Errno, so
// errors.Is works as it does for real OS errors.
type Chaos struct {
	fs     FS
	config ChaosConfig
	mode   atomic.Uint32

	mu     sync.Mutex
	rng    *rand.Rand
	sticky map[string]bool

	readFails    atomic.Int64
	partialReads atomic.Int64
	writeFails   atomic.Int64
	statFails    atomic.Int64
	readDirFails atomic.Int64
}

// NewChaos creates a new Chaos filesystem wrapping the given [FS].
// The seed makes the fault sequence reproducible. The initial mode is
// [ChaosModeInject].
func NewChaos(fsys FS, seed int64, config ChaosConfig) *Chaos {
	c := &Chaos{
		fs:     fsys,
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		sticky: make(map[string]bool),
	}
	c.SetMode(ChaosModeInject)

	return c
}

// SetMode updates Chaos behavior. Safe to call concurrently.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails    int64
	PartialReads int64
	WriteFails   int64
	StatFails    int64
	ReadDirFails int64
}

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:    c.readFails.Load(),
		PartialReads: c.partialReads.Load(),
		WriteFails:   c.writeFails.Load(),
		StatFails:    c.statFails.Load(),
		ReadDirFails: c.readDirFails.Load(),
	}
}

// TotalFaults returns the total number of injected faults.
func (c *Chaos) TotalFaults() int64 {
	s := c.Stats()

	return s.ReadFails + s.PartialReads + s.WriteFails + s.StatFails + s.ReadDirFails
}

func (c *Chaos) injecting() bool {
	return ChaosMode(c.mode.Load()) == ChaosModeInject
}

// fault decides whether op on path fails. Sticky paths always fail.
func (c *Chaos) fault(op, path string, rate float64) error {
	if !c.injecting() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sticky[path] {
		return pathError(op, path, syscall.EIO)
	}

	if c.rng.Float64() >= rate {
		return nil
	}

	errs := []syscall.Errno{syscall.EIO, syscall.EACCES, syscall.EMFILE}
	errno := errs[c.rng.Intn(len(errs))]

	if errno == syscall.EIO {
		c.sticky[path] = true
	}

	return pathError(op, path, errno)
}

func (c *Chaos) partial(rate float64) bool {
	if !c.injecting() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Float64() < rate
}

func pathError(op, path string, errno syscall.Errno) error {
	return &fs.PathError{Op: op, Path: path, Err: errno}
}

// ReadFile implements [FS].
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if err := c.fault("read", path, c.config.ReadFailRate); err != nil {
		c.readFails.Add(1)

		return nil, err
	}

	data, err := c.fs.ReadFile(path)
	if err != nil || len(data) < 2 {
		return data, err
	}

	if c.partial(c.config.PartialReadRate) {
		c.partialReads.Add(1)

		return data[:len(data)/2], nil
	}

	return data, nil
}

// WriteFileAtomic implements [FS]. An injected failure leaves the previous
// file untouched, as the atomic rename would.
func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := c.fault("write", path, c.config.WriteFailRate); err != nil {
		c.writeFails.Add(1)

		return err
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// ReadDir implements [FS].
func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if err := c.fault("readdir", path, c.config.ReadDirFailRate); err != nil {
		c.readDirFails.Add(1)

		return nil, err
	}

	return c.fs.ReadDir(path)
}

// MkdirAll implements [FS]. It is never faulted.
func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	return c.fs.MkdirAll(path, perm)
}

// Stat implements [FS].
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if err := c.fault("stat", path, c.config.StatFailRate); err != nil {
		c.statFails.Add(1)

		return nil, err
	}

	return c.fs.Stat(path)
}

var _ FS = (*Chaos)(nil)
