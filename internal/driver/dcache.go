package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"symbex/internal/diag"
	"symbex/internal/mono"
	"symbex/internal/project"
)

// diskCacheSchemaVersion is bumped whenever DiskPayload or mono.Table
// changes shape; entries written under another version are misses.
const diskCacheSchemaVersion uint16 = 1

const (
	specsDir  = "specs"
	entryExt  = ".mp"
	shardSize = 2
)

// DiskCache keeps successful specializations on disk, keyed by the digest
// of the input program and the options that shape the output. Entries
// live under specs/<first two hex digits>/<rest>.mp.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached specialization.
type DiskPayload struct {
	Schema uint16
	// Path is the input the entry was computed for. Diagnostics point into
	// it and are relocated when another path with the same content hits.
	Path   string
	Source project.Digest
	Table  *mono.Table
	Stats  mono.Stats
	// Warnings and notes; failed runs are never cached.
	Diagnostics []diag.Diagnostic
}

// Usage is what DropAll removed.
type Usage struct {
	Entries int
	Bytes   int64
}

// OpenDiskCache opens the per-user cache for app under $XDG_CACHE_HOME,
// or ~/.cache when that is unset.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hex := key.String()
	return filepath.Join(c.dir, specsDir, hex[:shardSize], hex[shardSize:]+entryExt)
}

// Put stores payload under key. The entry appears atomically, so a
// concurrent Get sees either nothing or the whole payload.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(dst), "put-*")
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(f)
	enc.SetSortMapKeys(true)
	err = enc.Encode(payload)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), dst)
	}
	if err != nil {
		return errors.Join(err, removeIfExists(f.Name()))
	}
	return nil
}

// Get loads the entry for key into out. A missing entry, one of another
// schema, or one without a table is a miss; an undecodable entry is an
// error so callers can report it.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion && out.Table != nil, nil
}

// DropAll removes every entry and reports how much was removed.
func (c *DiskCache) DropAll() (Usage, error) {
	var u Usage
	if c == nil {
		return u, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	root := filepath.Join(c.dir, specsDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, entryExt) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		u.Entries++
		u.Bytes += info.Size()
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return u, err
	}
	return u, os.RemoveAll(root)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
