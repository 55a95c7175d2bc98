package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/haybale/haybale/internal/query"
)

// SearchRoots runs one independent Coordinator per query concurrently,
// bounded by a golang.org/x/sync/semaphore.Weighted and supervised by a
// golang.org/x/sync/errgroup.Group, then concatenates each root's event
// stream in the order the queries were given. This is the CLI's multi-path
// mode (`haybale pattern dir1 dir2 ...`, mirroring ripgrep): each root is
// traversed independently so the §4.6/§5 per-root ordering guarantee is
// unaffected, while the set of roots is scanned in parallel (§5's stated
// relaxation — "a valid implementation may use a worker pool provided
// it... preserves stable directory-order emission" — applied across roots
// rather than within one).
//
// A root whose Coordinator fails to start (RootUnreadable) contributes a
// single Warning event in its slot rather than aborting the whole call.
//
// The returned dropped count is the sum, across every root's Coordinator,
// of warnings that exceeded maxRetainedWarnings (see Coordinator.
// WarningsDropped) — every root still contributes its full, undropped
// SearchEvent stream regardless of this count.
func SearchRoots(ctx context.Context, queries []*query.Query, maxWorkers int64) ([]SearchEvent, int, error) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	perRoot := make([][]SearchEvent, len(queries))
	droppedPerRoot := make([]int, len(queries))
	sem := semaphore.NewWeighted(maxWorkers)
	g, gctx := errgroup.WithContext(ctx)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			perRoot[i], droppedPerRoot[i] = drainRoot(q)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var all []SearchEvent
	dropped := 0
	for i, events := range perRoot {
		all = append(all, events...)
		dropped += droppedPerRoot[i]
	}
	return all, dropped, nil
}

// drainRoot runs one query's Coordinator to completion, sequentially, in
// its own goroutine — preserving the single-threaded correctness of
// Next()/Cancel() within that root's subtree.
func drainRoot(q *query.Query) ([]SearchEvent, int) {
	c, err := New(q)
	if err != nil {
		reason := "cannot open root"
		if se, ok := err.(interface{ Error() string }); ok {
			reason = se.Error()
		}
		return []SearchEvent{{Kind: EventWarning, WarningPath: q.Root, WarningReason: reason}}, 0
	}

	var events []SearchEvent
	for {
		ev, ok := c.Next()
		if !ok {
			break
		}
		events = append(events, *ev)
	}
	return events, c.WarningsDropped()
}
