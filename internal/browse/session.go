package browse

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-catalog/internal/catalog"
	"github.com/angelmondragon/storefront-catalog/internal/filter"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/metrics"
	"github.com/angelmondragon/storefront-catalog/pkg/pagination"
)

// session is one shopper's live filter state and the history it writes to.
type session struct {
	id        string
	store     *filter.Store
	syncer    *filter.URLSynchronizer
	nav       *HistoryNavigator
	projector *filter.Projector
	detach    func()
	lastSeen  atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// close writes any pending location and detaches from the store.
func (s *session) close() {
	s.syncer.Flush()
	s.detach()
	s.syncer.Stop()
}

// SessionView is what a client sees of a session after each call.
type SessionView struct {
	ID             string            `json:"id"`
	CatalogVersion uint64            `json:"catalog_version"`
	State          filter.State      `json:"state"`
	Items          []catalog.Product `json:"items"`
	Pagination     pagination.Meta   `json:"pagination"`
	Location       filter.Location   `json:"location"`
	SyncPending    bool              `json:"sync_pending"`
	HistoryLength  int               `json:"history_length"`
}

// CreateSession opens a session positioned at path?rawQuery. A path under the
// category prefix selects that category.
func (s *Service) CreateSession(ctx context.Context, path, rawQuery string) (*SessionView, error) {
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query string")
	}
	if path == "" {
		path = s.params.BasePath
	}
	if slug, ok := filter.SlugFromPath(s.params.CategoryPathPrefix, path); ok {
		query.Set(filter.ParamCategorySlug, slug)
	}

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	m, err := modelFromQuery(snap, query)
	if err != nil {
		return nil, err
	}

	nav := NewHistoryNavigator(filter.Location{Path: path, Query: query.Encode()})
	store := filter.NewStore(m)
	syncer := filter.NewURLSynchronizer(nav, filter.SyncOptions{
		Debounce:           s.params.URLDebounce,
		BasePath:           s.params.BasePath,
		CategoryPathPrefix: s.params.CategoryPathPrefix,
		AfterFunc:          s.params.AfterFunc,
		Metrics:            s.metrics,
		Logger:             s.logg,
	})
	sess := &session{
		id:        uuid.NewString(),
		store:     store,
		syncer:    syncer,
		nav:       nav,
		projector: filter.NewProjector(metrics.SourceSession, s.metrics),
	}
	sess.touch(s.params.Now())

	s.mu.Lock()
	if s.params.MaxSessions > 0 && len(s.sessions) >= s.params.MaxSessions {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many open browse sessions")
	}
	sess.detach = syncer.Attach(store)
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetActiveSessions(active)
	s.logg.Info(s.logg.WithSessionID(ctx, sess.id), "browse session opened")
	return s.view(sess, pagination.Params{}), nil
}

// Dispatch applies one action to a session and returns the updated view.
func (s *Service) Dispatch(ctx context.Context, id string, req ActionRequest, page pagination.Params) (*SessionView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	var (
		action   filter.Action
		onCommit func(filter.Model)
	)
	switch req.Type {
	case ActionUpdateField, ActionResetField:
		action, err = fieldAction(req)
		if err != nil {
			return nil, err
		}
	case ActionClearFilters:
		action = filter.ClearFilters{}
	case ActionInitFromURL:
		query, loc, err := navigation(req, sess.nav.Current().Path, s.params.CategoryPathPrefix)
		if err != nil {
			return nil, err
		}
		// the new entry exists before the synchronizer replaces it with the canonical location
		onCommit = func(filter.Model) { sess.nav.Push(loc) }
		action = filter.InitFromURL{Query: query}
	case ActionReloadCatalog:
		snap, err := s.loader.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		action = filter.LoadSnapshot{Snapshot: snap}
	}

	if _, err := sess.store.DispatchWith(action, onCommit); err != nil {
		return nil, err
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"session_id": id, "action": action.Name()}), "browse action applied")
	return s.view(sess, page), nil
}

// View returns a page of the session's current projection.
func (s *Service) View(ctx context.Context, id string, page pagination.Params) (*SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess, page), nil
}

// Close ends a session after committing its pending location.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return sessionNotFound(id)
	}

	sess.close()
	s.metrics.SetActiveSessions(active)
	s.logg.Info(s.logg.WithSessionID(ctx, id), "browse session closed")
	return nil
}

// ActiveSessions reports how many sessions are open.
func (s *Service) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run expires idle sessions until ctx is canceled, then closes the rest.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ticker := time.NewTicker(s.params.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			closed := s.closeAll()
			s.logg.Info(s.logg.WithField(ctx, "closed", closed), "browse session janitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if expired := s.sweep(s.params.Now()); expired > 0 {
				s.logg.Info(s.logg.WithField(ctx, "expired", expired), "idle browse sessions expired")
			}
		}
	}
}

// sweep closes sessions idle for longer than the configured TTL.
func (s *Service) sweep(now time.Time) int {
	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.params.IdleTTL {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	if len(expired) > 0 {
		s.metrics.SetActiveSessions(active)
	}
	return len(expired)
}

func (s *Service) closeAll() int {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.close()
	}
	s.metrics.SetActiveSessions(0)
	return len(all)
}

func (s *Service) session(id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, sessionNotFound(id)
	}
	sess.touch(s.params.Now())
	return sess, nil
}

func (s *Service) view(sess *session, page pagination.Params) *SessionView {
	m := sess.store.Model()
	items, meta := pagination.Window(sess.projector.Project(m), page)
	var version uint64
	if m.Catalog != nil {
		version = m.Catalog.Version
	}
	return &SessionView{
		ID:             sess.id,
		CatalogVersion: version,
		State:          m.State,
		Items:          items,
		Pagination:     meta,
		Location:       sess.nav.Current(),
		SyncPending:    sess.syncer.Pending(),
		HistoryLength:  sess.nav.Len(),
	}
}

func sessionNotFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "browse session not found").
		WithDetails(map[string]any{"session_id": id})
}
