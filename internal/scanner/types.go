package scanner

import "time"

// DefaultPattern matches markdown files.
const DefaultPattern = "*.md"

// Options controls a corpus scan.
type Options struct {
	// Pattern is the glob matched against file names.
	Pattern string
	// ExcludeHidden skips entries whose ancestors under the root
	// start with a dot.
	ExcludeHidden bool
	// MaxDepth limits recursion depth below the root. 0 means
	// unlimited. Depth counts intermediate directories, so a file
	// directly under the root has depth 0.
	MaxDepth int
	// MaxFileSize skips files larger than this many bytes.
	// 0 means unlimited.
	MaxFileSize int64
}

// FileEntry describes one file discovered during a scan.
type FileEntry struct {
	// Path is the absolute file path.
	Path string
	// RelPath is the path relative to the scan root.
	RelPath string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the filesystem modification time.
	ModTime time.Time
}
