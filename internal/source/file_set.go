// Package source loads plugin source modules from disk.
package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet holds the module files read during one merge.
type FileSet struct {
	files []File
	index map[string]FileID // canonical name -> id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores content that has already been normalised and returns its FileID.
// A later Add with the same name shadows the earlier one.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	name := CanonicalName(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Name:    name,
		Path:    normalizePath(path),
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[name] = id
	return id
}

// Load reads a file from disk, strips a UTF-8 BOM, normalises CRLF and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the allow-listed source directory
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Lookup returns the latest file loaded under name.
func (fileSet *FileSet) Lookup(name string) (*File, bool) {
	id, ok := fileSet.index[CanonicalName(name)]
	if !ok {
		return nil, false
	}
	return &fileSet.files[id], true
}

// Len reports how many files were added.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Lines splits the file content into terminator-preserving lines.
func (f *File) Lines() []string {
	return SplitLines(f.Content)
}

// Scan lists dir and partitions its regular files into allow-listed ones, keyed
// by their allow-list spelling and mapped to the on-disk path, and skipped names.
func Scan(dir string, allow []string) (map[string]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read source directory %q: %w", dir, err)
	}
	wanted := make(map[string]string, len(allow))
	for _, name := range allow {
		wanted[CanonicalName(name)] = name
	}

	found := make(map[string]string, len(allow))
	var skipped []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		listed, ok := wanted[CanonicalName(entry.Name())]
		if !ok {
			skipped = append(skipped, entry.Name())
			continue
		}
		found[listed] = filepath.Join(dir, entry.Name())
	}
	return found, skipped, nil
}
