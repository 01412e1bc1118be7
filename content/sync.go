package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"odontologia/metrics"
	"odontologia/models"
)

var (
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidFontSize = errors.New("invalid font size")
	ErrInvalidSlot     = errors.New("invalid content slot")
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateColor accepts #RRGGBB colours.
func ValidateColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return ErrInvalidColor
	}
	return nil
}

// ValidateFontSize accepts sizes in (0,400] pixels.
func ValidateFontSize(size int) error {
	if size <= 0 || size > 400 {
		return ErrInvalidFontSize
	}
	return nil
}

// Sync is the local mirror of the site document. It holds one subscription
// to the store, replaces its state with every snapshot and writes edits
// back as partial updates. Two writers race per field; the last one wins.
type Sync struct {
	store  Store
	logger *slog.Logger

	mu       sync.RWMutex
	data     models.SiteData
	ready    bool
	version  int64 // newest document version reflected in data
	inflight int   // local writes not yet acknowledged
	stale    bool  // a snapshot was skipped while writes were in flight

	readyOnce sync.Once
	readyCh   chan struct{}

	startMu sync.Mutex
	ctx     context.Context
	stop    func()

	obsMu     sync.Mutex
	observers map[int]func(models.SiteData)
	nextObs   int

	undoMu     sync.Mutex
	undo       *pendingUndo
	UndoWindow time.Duration

	now func() time.Time
}

func NewSync(store Store, logger *slog.Logger) *Sync {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{
		store:      store,
		logger:     logger.With("component", "content-sync"),
		data:       models.DefaultSiteData(),
		readyCh:    make(chan struct{}),
		observers:  make(map[int]func(models.SiteData)),
		UndoWindow: 7 * time.Second,
		now:        time.Now,
	}
}

// Start subscribes to the site document.
func (s *Sync) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.stop != nil {
		return ErrAlreadyStarted
	}

	s.ctx = ctx
	stop, err := s.store.Listen(ctx, s.applySnapshot, s.listenError)
	if err != nil {
		return fmt.Errorf("failed to listen to site document: %w", err)
	}
	s.stop = stop
	s.logger.Info("listening to site document")
	return nil
}

// Close releases the subscription.
func (s *Sync) Close() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// Ready reports whether the first snapshot (or a listener error) arrived.
func (s *Sync) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// WaitReady blocks until Ready or ctx is done.
func (s *Sync) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Data returns a copy of the current state.
func (s *Sync) Data() models.SiteData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Subscribe registers fn to be called after every applied snapshot.
func (s *Sync) Subscribe(fn func(models.SiteData)) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Sync) applySnapshot(snap Snapshot) {
	if !snap.Exists {
		s.logger.Info("site document missing, creating it with defaults")
		if _, err := s.store.Set(s.ctx, models.DefaultSiteData()); err != nil {
			s.logger.Error("failed to create site document", "error", err)
		}
		s.markReady()
		return
	}

	data := snap.Data.WithDefaults()
	s.mu.Lock()
	if s.inflight > 0 {
		// the optimistic state is newer than anything read before the write lands
		s.stale = true
		s.mu.Unlock()
		return
	}
	if snap.Version != 0 && snap.Version < s.version {
		s.mu.Unlock()
		return
	}
	s.data = data
	if snap.Version > s.version {
		s.version = snap.Version
	}
	s.mu.Unlock()
	metrics.Snapshots.Inc()
	s.markReady()

	s.obsMu.Lock()
	observers := make([]func(models.SiteData), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn(data.Clone())
	}
}

func (s *Sync) listenError(err error) {
	s.logger.Error("error fetching site document", "error", err)
	s.markReady()
}

func (s *Sync) markReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.readyCh) })
}

// edit applies fn to the local state and writes the updates it returns.
// fn runs under the state lock and must leave data untouched on error.
func (s *Sync) edit(ctx context.Context, field string, fn func(data *models.SiteData) ([]Update, error)) error {
	s.mu.Lock()
	updates, err := fn(&s.data)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.inflight++
	s.mu.Unlock()

	return s.write(ctx, field, updates)
}

// write sends updates to the store. Failures are logged and counted, never
// retried; the next snapshot reconciles local state.
func (s *Sync) write(ctx context.Context, field string, updates []Update) error {
	version, err := s.store.Update(ctx, updates)

	s.mu.Lock()
	s.inflight--
	if err == nil && version > s.version {
		s.version = version
	}
	refresh := s.inflight == 0 && s.stale
	if refresh {
		s.stale = false
	}
	s.mu.Unlock()

	if err != nil {
		metrics.DocumentWrites.WithLabelValues(field, "error").Inc()
		s.logger.Error("failed to update site document", "field", field, "error", err)
	} else {
		metrics.DocumentWrites.WithLabelValues(field, "ok").Inc()
	}

	if refresh {
		s.refresh(ctx)
	}
	return err
}

// refresh re-reads the document after snapshots were skipped.
func (s *Sync) refresh(ctx context.Context) {
	snap, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Error("failed to refresh site document", "error", err)
		return
	}
	if snap.Exists {
		s.applySnapshot(snap)
	}
}

func setScalar(path string, value interface{}, apply func(d *models.SiteData)) func(*models.SiteData) ([]Update, error) {
	return func(d *models.SiteData) ([]Update, error) {
		apply(d)
		return []Update{{Path: []string{path}, Value: value}}, nil
	}
}

// SetText changes one editable text slot.
func (s *Sync) SetText(ctx context.Context, slot, value string) error {
	if slot == "" || len(slot) > 64 {
		return ErrInvalidSlot
	}
	return s.edit(ctx, "editableContent", func(d *models.SiteData) ([]Update, error) {
		content := make(map[string]string, len(d.EditableContent)+1)
		for k, v := range d.EditableContent {
			content[k] = v
		}
		content[slot] = value
		d.EditableContent = content
		return []Update{{Path: []string{"editableContent", slot}, Value: value}}, nil
	})
}

func (s *Sync) SetTheme(ctx context.Context, theme models.Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}
	return s.edit(ctx, "theme", setScalar("theme", string(theme), func(d *models.SiteData) { d.Theme = theme }))
}

func (s *Sync) SetLayout(ctx context.Context, layout models.Layout) error {
	if !layout.Valid() {
		return ErrInvalidLayout
	}
	return s.edit(ctx, "layout", setScalar("layout", string(layout), func(d *models.SiteData) { d.Layout = layout }))
}

func (s *Sync) SetPrimaryColor(ctx context.Context, color string) error {
	if err := ValidateColor(color); err != nil {
		return err
	}
	return s.edit(ctx, "primaryColor", setScalar("primaryColor", color, func(d *models.SiteData) { d.PrimaryColor = color }))
}

func (s *Sync) SetHeroTitleFontSize(ctx context.Context, size int) error {
	if err := ValidateFontSize(size); err != nil {
		return err
	}
	return s.edit(ctx, "heroTitleFontSize", setScalar("heroTitleFontSize", size, func(d *models.SiteData) { d.HeroTitleFontSize = size }))
}

func (s *Sync) SetSocialLinks(ctx context.Context, links models.SocialLinks) error {
	return s.edit(ctx, "socialLinks", setScalar("socialLinks", links, func(d *models.SiteData) { d.SocialLinks = &links }))
}

func (s *Sync) SetHeroImage(ctx context.Context, src string) error {
	return s.edit(ctx, "heroImage", setScalar("heroImage", src, func(d *models.SiteData) { d.HeroImage = src }))
}
