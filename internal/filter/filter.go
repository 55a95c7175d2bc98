// Package filter implements the FileFilter metadata predicate of §4.5:
// hidden-file toggle, size window, and modification-time window, plus the
// human-readable size/date parsers that feed it. Applies its three checks
// in a fixed decision order: hidden, then size, then date.
package filter

import (
	"io/fs"
	"path/filepath"
	"time"
)

// Options mirrors the size/date/hidden fields of spec §3's SearchOptions
// that this package is responsible for evaluating.
type Options struct {
	MinSizeBytes   int64 // used only when HasMinSize is set
	MaxSizeBytes   int64 // used only when HasMaxSize is set
	HasMinSize     bool
	HasMaxSize     bool
	ModifiedAfter  time.Time
	HasAfter       bool
	ModifiedBefore time.Time
	HasBefore      bool
	IncludeHidden  bool
}

// FileFilter evaluates Options against one (path, metadata) pair at a time.
type FileFilter struct {
	opts Options
}

// New constructs a FileFilter from Options.
func New(opts Options) *FileFilter {
	return &FileFilter{opts: opts}
}

// IsHidden reports whether basename begins with '.', excluding the "." and
// ".." traversal entries.
func IsHidden(basename string) bool {
	if basename == "." || basename == ".." {
		return false
	}
	return len(basename) > 0 && basename[0] == '.'
}

// ShouldEnterDir reports whether a directory should be descended into,
// applying only the hidden-directory rule (§4.5: hidden directories are not
// entered when IncludeHidden is false).
func (f *FileFilter) ShouldEnterDir(path string) bool {
	if !f.opts.IncludeHidden && IsHidden(filepath.Base(path)) {
		return false
	}
	return true
}

// Allows applies the filter's decision order — hidden, then size, then
// date — to a single file. Missing bounds are permissive.
func (f *FileFilter) Allows(path string, info fs.FileInfo) bool {
	if !f.opts.IncludeHidden && IsHidden(filepath.Base(path)) {
		return false
	}

	size := info.Size()
	if f.opts.HasMinSize && size < f.opts.MinSizeBytes {
		return false
	}
	if f.opts.HasMaxSize && size > f.opts.MaxSizeBytes {
		return false
	}

	modTime := info.ModTime()
	if f.opts.HasAfter && modTime.Before(f.opts.ModifiedAfter) {
		return false
	}
	if f.opts.HasBefore && modTime.After(f.opts.ModifiedBefore) {
		return false
	}

	return true
}
