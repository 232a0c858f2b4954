package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/heartscroll/constants"
	"github.com/lixenwraith/heartscroll/core"
	"github.com/lixenwraith/heartscroll/events"
)

// Service loads every section asynchronously and publishes immutable snapshots
// Fetch failures are contained to their section; navigation never waits on content
type Service struct {
	fetcher   Fetcher
	ids       []string
	queue     *events.EventQueue
	logger    *zap.Logger
	watchPath string
	debounce  time.Duration
	timeout   time.Duration

	snapshot   atomic.Pointer[Snapshot]
	generation atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
	stopped bool
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithQueue posts load results to q
func WithQueue(q *events.EventQueue) ServiceOption {
	return func(s *Service) { s.queue = q }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithWatch reloads all sections when the file at path changes
func WithWatch(path string) ServiceOption {
	return func(s *Service) { s.watchPath = path }
}

// WithDebounce overrides the reload debounce window
func WithDebounce(d time.Duration) ServiceOption {
	return func(s *Service) { s.debounce = d }
}

// WithFetchTimeout overrides the per-section fetch timeout
func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a content service for ids in display order
func NewService(fetcher Fetcher, ids []string, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:  fetcher,
		ids:      append([]string(nil), ids...),
		logger:   zap.NewNop(),
		debounce: constants.ContentReloadDebounce,
		timeout:  constants.ContentFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(s.pendingSnapshot(0, nil))
	return s
}

func (s *Service) Name() string           { return "content" }
func (s *Service) Dependencies() []string { return nil }

// Init validates construction; args are unused
func (s *Service) Init(args ...any) error {
	if s.fetcher == nil {
		return errors.New("content: no fetcher configured")
	}
	if len(s.ids) == 0 {
		return errors.New("content: no sections configured")
	}
	return nil
}

// Start launches the initial load and, if configured, the file watcher
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.watchPath != "" {
		if err := s.startWatcherLocked(ctx); err != nil {
			cancel()
			s.cancel = nil
			return err
		}
	}

	s.wg.Add(1)
	core.Go(func() {
		defer s.wg.Done()
		s.load(ctx, false)
	})
	return nil
}

// Stop cancels in-flight fetches and the watcher, then waits for them
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cancel, watcher := s.cancel, s.watcher
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var err error
	if watcher != nil {
		err = watcher.Close()
	}
	s.wg.Wait()
	return err
}

// Snapshot returns the current published snapshot
func (s *Service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Loading reports whether any section is still pending
func (s *Service) Loading() bool {
	return s.snapshot.Load().Loading()
}

// Get returns the current entry for id
func (s *Service) Get(id string) (Entry, error) {
	for _, known := range s.ids {
		if known == id {
			return s.snapshot.Load().Entry(id), nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrUnknownSection, id)
}

// Load fetches every section synchronously under a new generation
// Results of older generations still in flight are discarded
func (s *Service) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

func (s *Service) load(ctx context.Context, reload bool) error {
	gen := s.generation.Add(1)
	s.snapshot.Store(s.pendingSnapshot(gen, s.snapshot.Load()))

	if reload {
		s.push(events.EventContentReloaded, events.ContentPayload{Generation: gen})
	}
	s.logger.Debug("content load started", zap.Int64("generation", gen), zap.Bool("reload", reload))

	var g errgroup.Group
	g.SetLimit(constants.ContentFetchConcurrency)
	for _, id := range s.ids {
		g.Go(func() error {
			s.fetchOne(ctx, gen, id)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (s *Service) fetchOne(ctx context.Context, gen int64, id string) {
	fctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sec, err := s.fetcher.Fetch(fctx, id)
	if ctx.Err() != nil {
		return
	}

	entry := Entry{Status: StatusReady, Section: sec}
	if err != nil {
		entry = Entry{Status: StatusFailed, Err: err}
	}
	if !s.apply(gen, id, entry) {
		return
	}

	payload := events.ContentPayload{SectionID: id, Generation: gen}
	if err != nil {
		payload.Err = err.Error()
		s.logger.Warn("section fetch failed", zap.String("section", id), zap.Error(err))
		s.push(events.EventContentFailed, payload)
		return
	}
	s.push(events.EventContentLoaded, payload)
}

// apply publishes entry for id if gen is still current
func (s *Service) apply(gen int64, id string, entry Entry) bool {
	for {
		cur := s.snapshot.Load()
		if cur.Generation != gen {
			return false
		}
		if s.snapshot.CompareAndSwap(cur, cur.with(id, entry)) {
			return true
		}
	}
}

// pendingSnapshot marks every section pending, keeping ready content from prev
// visible until its replacement arrives
func (s *Service) pendingSnapshot(gen int64, prev *Snapshot) *Snapshot {
	snap := newSnapshot(gen, len(s.ids))
	for _, id := range s.ids {
		entry := Entry{Status: StatusPending}
		if old := prev.Entry(id); old.Status == StatusReady {
			entry.Section = old.Section
		}
		snap.entries[id] = entry
	}
	return snap
}

func (s *Service) push(t events.EventType, payload events.ContentPayload) {
	if s.queue == nil {
		return
	}
	s.queue.PushContent(t, payload)
}

// startWatcherLocked watches the directory holding watchPath
// Editors often replace files by rename, so the parent directory is watched
func (s *Service) startWatcherLocked(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create content watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.watchPath)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", s.watchPath, err)
	}
	s.watcher = w

	s.wg.Add(1)
	core.Go(func() {
		defer s.wg.Done()
		s.watch(ctx, w)
	})
	return nil
}

func (s *Service) watch(ctx context.Context, w *fsnotify.Watcher) {
	target := filepath.Clean(s.watchPath)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.logger.Info("content file changed, reloading", zap.String("path", target))
			s.load(ctx, true)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}
