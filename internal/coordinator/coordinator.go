// Package coordinator implements the SearchCoordinator of §4.6: a
// bounded-depth, pre-order directory walk with symlink cycle detection,
// type-based routing to a content matcher, and a lazy next()/cancel()
// SearchEvent stream (§5, §9 "lazy streaming without generators").
//
// The traversal is a channel-free, stat-driven walk with accumulated Stats,
// built on an explicit stack so a single Next() call advances exactly one
// step instead of running a goroutine to completion.
package coordinator

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/haybale/haybale/internal/binstrings"
	"github.com/haybale/haybale/internal/content"
	"github.com/haybale/haybale/internal/filter"
	"github.com/haybale/haybale/internal/herr"
	"github.com/haybale/haybale/internal/ignore"
	"github.com/haybale/haybale/internal/query"
)

// SearchResult is one matching file (§3).
type SearchResult struct {
	Path           string
	ContentMatches []content.ContentMatch
}

// EventKind distinguishes the two SearchEvent variants (§3).
type EventKind int

const (
	EventResult EventKind = iota
	EventWarning
)

// SearchEvent is one element of the coordinator's output stream.
type SearchEvent struct {
	Kind          EventKind
	Result        SearchResult
	WarningPath   string
	WarningReason string
}

// Stats accumulates traversal counters for the CLI's optional --stats
// summary, tracking the same kind of counters a directory walk naturally
// accumulates (files scanned, matched, directories visited, warnings).
type Stats struct {
	FilesScanned  int64
	FilesMatched  int64
	DirsVisited   int64
	Warnings      int64
	StartTime     time.Time
	ElapsedAtStop time.Duration
}

type dirIdentity struct {
	dev uint64
	ino uint64
}

type entry struct {
	name          string
	path          string
	isDir         bool
	isWarning     bool
	warningKind   herr.Kind
	warningReason string
	info          fs.FileInfo
}

type frame struct {
	depth   int
	entries []entry
	idx     int
}

// Coordinator drives one traversal of a Query to completion, exposing a
// pull-driven Next/Cancel contract (§5, §9).
type Coordinator struct {
	q       *query.Query
	absRoot string
	nameM   *content.NameMatcher
	fileF   *filter.FileFilter
	ignores *ignore.Set

	visited  map[dirIdentity]bool
	stack    []*frame
	canceled bool

	// pending holds a Result queued by a prior degraded-regex Warning
	// (§4.4.4, §8 scenario 3): the Warning is returned first, and the
	// already-computed line-mode matches follow on the next Next() call.
	pending *SearchEvent

	stats    Stats
	warnings *herr.Handler
}

// maxRetainedWarnings bounds the in-memory warning history a Coordinator
// keeps for --stats/-v reporting, so a pathological tree full of broken
// symlinks can't grow that history unboundedly; Stats.Warnings still counts
// every warning seen, retained or not.
const maxRetainedWarnings = 500

// recordWarning counts a warning, retains it as a SearchError (up to
// maxRetainedWarnings) for later retrieval
// via Warnings/WarningsDropped, and returns the SearchEvent the caller
// should emit.
func (c *Coordinator) recordWarning(path string, kind herr.Kind, reason string) *SearchEvent {
	c.stats.Warnings++
	c.warnings.Record(herr.New(kind, path, reason, nil))
	return &SearchEvent{Kind: EventWarning, WarningPath: path, WarningReason: reason}
}

// New validates the root is readable and builds a Coordinator ready to
// stream events via Next. A RootUnreadable error is the sole fatal
// condition (§7): the caller reports it as the stream's only Warning and
// stops, per §4.6's "failure to open the root directory" rule.
func New(q *query.Query) (*Coordinator, error) {
	absRoot, err := filepath.Abs(q.Root)
	if err != nil {
		return nil, herr.New(herr.RootUnreadable, q.Root, "cannot resolve root path", err)
	}
	rootInfo, err := os.Stat(absRoot)
	if err != nil {
		return nil, herr.New(herr.RootUnreadable, absRoot, "cannot open root", err)
	}
	if !rootInfo.IsDir() {
		return nil, herr.New(herr.RootUnreadable, absRoot, "root is not a directory", nil)
	}

	c := &Coordinator{
		q:        q,
		absRoot:  absRoot,
		fileF:    filter.New(toFilterOptions(q.Options)),
		visited:  make(map[dirIdentity]bool),
		warnings: herr.NewHandler(maxRetainedWarnings),
	}
	if q.NamePattern != nil {
		c.nameM = content.NewNameMatcher(q.NamePattern)
	}
	if q.Options.RespectGitignore {
		if set, err := ignore.Load(absRoot); err == nil {
			c.ignores = set
		}
	}

	if id, ok := identityOf(rootInfo); ok {
		c.visited[id] = true
	}

	entries, rootErr := listDir(absRoot)
	if rootErr != "" {
		return nil, herr.New(herr.RootUnreadable, absRoot, rootErr, nil)
	}
	c.stack = []*frame{{depth: 0, entries: entries}}
	c.stats.StartTime = time.Now()

	return c, nil
}

func toFilterOptions(o query.Options) filter.Options {
	return filter.Options{
		MinSizeBytes:   o.MinSizeBytes,
		MaxSizeBytes:   o.MaxSizeBytes,
		HasMinSize:     o.HasMinSize,
		HasMaxSize:     o.HasMaxSize,
		ModifiedAfter:  o.ModifiedAfter,
		HasAfter:       o.HasModifiedAfter,
		ModifiedBefore: o.ModifiedBefore,
		HasBefore:      o.HasModifiedBefore,
		IncludeHidden:  o.IncludeHidden,
	}
}

// Cancel releases traversal state. No partial result is ever emitted (§5):
// Cancel only takes effect between Next() calls, never mid-file.
func (c *Coordinator) Cancel() {
	c.canceled = true
	c.stack = nil
	c.visited = nil
}

// Stats returns a snapshot of traversal counters gathered so far.
func (c *Coordinator) Stats() Stats {
	s := c.stats
	s.ElapsedAtStop = time.Since(c.stats.StartTime)
	return s
}

// Warnings returns every retained warning encountered so far, in the order
// they were recorded, for --stats/-v reporting.
func (c *Coordinator) Warnings() []*herr.SearchError { return c.warnings.Warnings() }

// WarningsDropped reports how many warnings exceeded the retention cap and
// were counted but not kept.
func (c *Coordinator) WarningsDropped() int { return c.warnings.Dropped() }

// Next advances the traversal by exactly one emitted event. It returns
// (event, true) for each Result or Warning, and (nil, false) once the
// stream is exhausted or Cancel has been called; a Result already queued
// behind a large-file Warning is still returned by the first Next after
// Cancel.
func (c *Coordinator) Next() (*SearchEvent, bool) {
	if c.pending != nil {
		ev := c.pending
		c.pending = nil
		return ev, true
	}

	for !c.canceled && len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.idx >= len(top.entries) {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		e := top.entries[top.idx]
		top.idx++

		if e.isWarning {
			return c.recordWarning(e.path, e.warningKind, e.warningReason), true
		}

		if e.isDir {
			if ev, ok := c.enterDir(e, top.depth); ok {
				return ev, true
			}
			continue
		}

		ev, ok := c.processFile(e)
		if ok {
			return ev, true
		}
	}
	return nil, false
}

// enterDir applies the hidden/ignore/depth/cycle gates that decide whether
// a subdirectory is recursed into, pushing a new frame on success. It
// returns a Warning event for a detected cycle or an unreadable directory;
// all other outcomes either push silently or skip silently.
func (c *Coordinator) enterDir(e entry, parentDepth int) (*SearchEvent, bool) {
	if !c.q.Options.IncludeHidden && filter.IsHidden(e.name) {
		return nil, false
	}

	childDepth := parentDepth + 1
	if c.q.Options.HasMaxDepth && childDepth > c.q.Options.MaxDepth {
		return nil, false
	}

	relPath, _ := filepath.Rel(c.absRoot, e.path)
	if c.ignores != nil && c.ignores.ShouldIgnore(relPath, true) {
		return nil, false
	}

	if id, ok := identityOf(e.info); ok {
		if c.visited[id] {
			return c.recordWarning(e.path, herr.SymlinkCycle, "symlink cycle"), true
		}
		c.visited[id] = true
	}

	c.stats.DirsVisited++
	entries, errReason := listDir(e.path)
	if errReason != "" {
		return c.recordWarning(e.path, herr.EntryUnreadable, errReason), true
	}
	c.stack = append(c.stack, &frame{depth: childDepth, entries: entries})
	return nil, false
}

// processFile runs the §4.6 per-file pipeline against one regular file.
func (c *Coordinator) processFile(e entry) (*SearchEvent, bool) {
	if !c.q.Options.IncludeHidden && filter.IsHidden(e.name) {
		return nil, false
	}

	if c.nameM != nil && !c.nameM.Matches(e.path) {
		return nil, false
	}

	relPath, _ := filepath.Rel(c.absRoot, e.path)
	if c.ignores != nil && c.ignores.ShouldIgnore(relPath, false) {
		return nil, false
	}

	if !c.fileF.Allows(e.path, e.info) {
		return nil, false
	}

	c.stats.FilesScanned++

	if c.q.ContentPattern == nil {
		c.stats.FilesMatched++
		return &SearchEvent{Kind: EventResult, Result: SearchResult{Path: e.path}}, true
	}

	f, err := os.Open(e.path)
	if err != nil {
		return c.recordWarning(e.path, herr.EntryUnreadable, "cannot open file: "+err.Error()), true
	}
	prefix := make([]byte, binstrings.SniffLimit)
	n, _ := f.Read(prefix)
	f.Close()
	isBinary := binstrings.IsBinaryBytes(prefix[:n])

	var matches []content.ContentMatch
	if isBinary {
		if !c.q.Options.SearchBinaries {
			return nil, false
		}
		m, err := content.NewBinaryContentSearcher(c.q.ContentPattern, c.q.Options.CaseSensitiveContent).Search(e.path)
		if err != nil {
			return c.recordWarning(e.path, herr.EntryUnreadable, "cannot read file: "+err.Error()), true
		}
		matches = m
	} else {
		m, degraded, err := content.NewTextContentSearcher(c.q.ContentPattern, c.q.Options.CaseSensitiveContent).Search(e.path)
		if err != nil {
			return c.recordWarning(e.path, herr.EntryUnreadable, "cannot read file: "+err.Error()), true
		}
		if degraded {
			// The degradation Warning precedes the file's own result (§8
			// scenario 3); queue the already-computed line-mode matches (if
			// any) to follow on the very next Next() call.
			if len(m) > 0 {
				c.pending = &SearchEvent{Kind: EventResult, Result: SearchResult{Path: e.path, ContentMatches: m}}
				c.stats.FilesMatched++
			}
			return c.recordWarning(e.path, herr.LargeFileRegexDegraded, "large file regex degraded"), true
		}
		matches = m
	}

	if len(matches) == 0 {
		return nil, false
	}
	c.stats.FilesMatched++
	return &SearchEvent{Kind: EventResult, Result: SearchResult{Path: e.path, ContentMatches: matches}}, true
}

func listDir(dirPath string) ([]entry, string) {
	des, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, "cannot read directory: " + err.Error()
	}

	var files, dirs []entry
	for _, de := range des {
		name := de.Name()
		fullPath := filepath.Join(dirPath, name)

		isSymlink := de.Type()&fs.ModeSymlink != 0
		var info fs.FileInfo
		var statErr error
		if isSymlink {
			info, statErr = os.Stat(fullPath)
		} else {
			info, statErr = de.Info()
		}
		if statErr != nil {
			kind := herr.EntryUnreadable
			reason := "cannot stat entry"
			if isSymlink {
				kind = herr.BrokenSymlink
				reason = "broken symlink"
			}
			files = append(files, entry{name: name, path: fullPath, isWarning: true, warningKind: kind, warningReason: reason})
			continue
		}

		e := entry{name: name, path: fullPath, info: info, isDir: info.IsDir()}
		if e.isDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}

	sortEntries(files)
	sortEntries(dirs)

	return append(files, dirs...), ""
}

func sortEntries(es []entry) {
	sort.Slice(es, func(i, j int) bool {
		return strings.ToLower(es[i].name) < strings.ToLower(es[j].name)
	})
}

func identityOf(info fs.FileInfo) (dirIdentity, bool) {
	if info == nil {
		return dirIdentity{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return dirIdentity{}, false
	}
	return dirIdentity{dev: uint64(st.Dev), ino: st.Ino}, true
}
