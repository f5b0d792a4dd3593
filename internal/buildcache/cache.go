package buildcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// recordFile is the name of the msgpack file inside the state directory.
const recordFile = "last-build.mp"

// Cache stores the last Record under a project's state directory.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open prepares a cache rooted at dir; the directory is created on first Put.
func Open(dir string) *Cache {
	return &Cache{dir: dir}
}

// Path returns the record file location.
func (c *Cache) Path() string {
	return filepath.Join(c.dir, recordFile)
}

// Put serialises rec and atomically replaces the stored record.
func (c *Cache) Put(rec Record) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// Already renamed on success.
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(&rec); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode build record: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.Path())
}

// Get loads the stored record. A missing file or an older schema reports ok=false.
func (c *Cache) Get() (Record, bool, error) {
	if c == nil {
		return Record{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	defer f.Close()

	var rec Record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return Record{}, false, fmt.Errorf("decode build record: %w", err)
	}
	if rec.Schema != schemaVersion {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Drop removes the state directory.
func (c *Cache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.dir)
}
