package source

type (
	// FileID identifies a loaded module file within a FileSet.
	FileID uint32
	// FileFlags records how a file was normalised on load.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (tests, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source module.
type File struct {
	ID      FileID
	Name    string // bare file name as listed in the allow-list
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
}
