package editor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dagedit/pkg/cache"
)

// Session persists the presentation state of documents (cached positions
// and the collapsed set) in a [cache.Cache], so reopening a document shows
// the canvas as it was left.
//
// A Session holds no document state itself and may be shared by several
// editors.
type Session struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewSession creates a session with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (persistence disabled).
func NewSession(c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Session {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Session{Cache: c, Keyer: keyer, TTL: ttl, Logger: logger}
}

// Save stores e's positions and collapsed set under graphID. opts must
// describe the layout settings the positions were computed with.
func (s *Session) Save(ctx context.Context, graphID string, opts cache.PositionsKeyOpts, e *Editor) error {
	if err := e.PositionCache().Save(ctx, s.Cache, s.Keyer.PositionsKey(graphID, opts), s.TTL); err != nil {
		return err
	}
	collapsed := e.Collapsed()
	if collapsed == nil {
		collapsed = []string{}
	}
	if err := cache.SetJSON(ctx, s.Cache, cache.KeyTypeCollapse, s.Keyer.CollapseKey(graphID), collapsed, s.TTL); err != nil {
		return err
	}
	s.Logger.Debug("session saved", "graph", graphID, "positions", e.PositionCache().Len(), "collapsed", len(collapsed))
	return nil
}

// Restore loads the state saved for graphID into e and lays out whatever
// the saved positions do not cover. It reports whether saved positions
// were found. Cache failures are logged and treated as a miss, since the
// document itself is intact either way.
func (s *Session) Restore(ctx context.Context, graphID string, opts cache.PositionsKeyOpts, e *Editor) (bool, Update, error) {
	found, err := e.PositionCache().Load(ctx, s.Cache, s.Keyer.PositionsKey(graphID, opts))
	if err != nil {
		s.Logger.Warn("could not load cached positions", "graph", graphID, "err", err)
		found = false
	}

	var collapsed []string
	err = cache.GetJSON(ctx, s.Cache, cache.KeyTypeCollapse, s.Keyer.CollapseKey(graphID), &collapsed)
	switch {
	case err == nil:
		e.RestoreCollapsed(collapsed)
	case !errors.Is(err, cache.ErrCacheMiss):
		s.Logger.Warn("could not load collapsed set", "graph", graphID, "err", err)
	}

	u, err := e.Sync(ctx)
	s.Logger.Debug("session restored", "graph", graphID, "found", found, "laid_out", len(u.Layout.Affected))
	return found, u, err
}
