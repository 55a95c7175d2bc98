// Package query builds a validated SearchQuery (§3) from the raw strings a
// driver (CLI today) collects from its user: pattern text, human size/date
// syntax, and the toggle flags of §4.5.
package query

import (
	"time"

	"github.com/haybale/haybale/internal/filter"
	"github.com/haybale/haybale/internal/finder"
	"github.com/haybale/haybale/internal/herr"
)

// Options bundles the filter and matching toggles of a query (§3
// SearchOptions).
type Options struct {
	CaseSensitiveContent bool

	HasMinSize   bool
	MinSizeBytes int64
	HasMaxSize   bool
	MaxSizeBytes int64

	HasModifiedAfter  bool
	ModifiedAfter     time.Time
	HasModifiedBefore bool
	ModifiedBefore    time.Time

	SearchBinaries bool
	IncludeHidden  bool

	HasMaxDepth bool
	MaxDepth    int

	RespectGitignore bool
}

// Query is a fully parsed, immutable search request (§3 SearchQuery).
type Query struct {
	Root           string
	NamePattern    *finder.PatternExpr
	ContentPattern *finder.PatternExpr
	Options        Options
}

// Raw holds the unparsed strings a driver collects from its user. Empty
// string fields mean "not set".
type Raw struct {
	Root           string
	NamePattern    string
	ContentPattern string

	CaseSensitiveContent bool
	MinSize              string
	MaxSize              string
	ModifiedAfter        string
	ModifiedBefore       string

	SearchBinaries   bool
	IncludeHidden    bool
	MaxDepth         int
	HasMaxDepth      bool
	RespectGitignore bool
}

// Build parses raw into a Query, or returns a *herr.SearchError of kind
// QueryParse describing the first failure. now anchors relative date
// parsing (§4.5) for the lifetime of the resulting Query.
func Build(raw Raw, now time.Time) (*Query, error) {
	q := &Query{
		Root: raw.Root,
		Options: Options{
			CaseSensitiveContent: raw.CaseSensitiveContent,
			SearchBinaries:       raw.SearchBinaries,
			IncludeHidden:        raw.IncludeHidden,
			HasMaxDepth:          raw.HasMaxDepth,
			MaxDepth:             raw.MaxDepth,
			RespectGitignore:     raw.RespectGitignore,
		},
	}

	if raw.NamePattern != "" {
		expr, err := finder.Parse(raw.NamePattern)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid name pattern", err)
		}
		q.NamePattern = expr
	}

	if raw.ContentPattern != "" {
		expr, err := finder.Parse(raw.ContentPattern)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid content pattern", err)
		}
		q.ContentPattern = expr
	}

	if raw.MinSize != "" {
		n, err := filter.ParseSize(raw.MinSize)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid min size", err)
		}
		q.Options.HasMinSize = true
		q.Options.MinSizeBytes = n
	}
	if raw.MaxSize != "" {
		n, err := filter.ParseSize(raw.MaxSize)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid max size", err)
		}
		q.Options.HasMaxSize = true
		q.Options.MaxSizeBytes = n
	}
	if q.Options.HasMinSize && q.Options.HasMaxSize && q.Options.MinSizeBytes > q.Options.MaxSizeBytes {
		return nil, herr.New(herr.QueryParse, "", "minSize must be <= maxSize", nil)
	}

	if raw.ModifiedAfter != "" {
		t, err := filter.ParseDate(raw.ModifiedAfter, now)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid modifiedAfter", err)
		}
		q.Options.HasModifiedAfter = true
		q.Options.ModifiedAfter = t
	}
	if raw.ModifiedBefore != "" {
		t, err := filter.ParseDate(raw.ModifiedBefore, now)
		if err != nil {
			return nil, herr.New(herr.QueryParse, "", "invalid modifiedBefore", err)
		}
		q.Options.HasModifiedBefore = true
		q.Options.ModifiedBefore = t
	}
	if q.Options.HasModifiedAfter && q.Options.HasModifiedBefore && q.Options.ModifiedAfter.After(q.Options.ModifiedBefore) {
		return nil, herr.New(herr.QueryParse, "", "modifiedAfter must be <= modifiedBefore", nil)
	}

	if q.Options.HasMaxDepth && q.Options.MaxDepth < 0 {
		return nil, herr.New(herr.QueryParse, "", "maxDepth must be >= 0", nil)
	}

	return q, nil
}
