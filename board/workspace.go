package board

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/whiteboard"
)

// ExportFunc receives an exported page image and its suggested file name.
type ExportFunc func(filename, dataURI string)

// Option configures a Workspace.
type Option func(*Workspace)

// WithExportFunc sets the function receiving exported pages.
func WithExportFunc(fn ExportFunc) Option {
	return func(w *Workspace) {
		w.onExport = fn
	}
}

// WithSessionOptions passes options to the underlying Session. Commit and
// export handlers are owned by the Workspace and cannot be overridden.
func WithSessionOptions(opts ...whiteboard.SessionOption) Option {
	return func(w *Workspace) {
		w.sessionOpts = append(w.sessionOpts, opts...)
	}
}

// Workspace binds a Store to a Session: commits persist to the active page,
// and switching pages or whiteboards loads the target page into the
// session.
//
// Workspace methods are safe for concurrent use.
type Workspace struct {
	store       *Store
	session     *whiteboard.Session
	onExport    ExportFunc
	sessionOpts []whiteboard.SessionOption

	mu sync.Mutex
	// loading is closed when the most recent page load has finished.
	loading <-chan struct{}
	// dirty reports whether the session committed since the last load.
	dirty atomic.Bool
}

// NewWorkspace creates a session of the given size bound to store.
// Call Open to load the active page.
func NewWorkspace(store *Store, width, height int, opts ...Option) (*Workspace, error) {
	w := &Workspace{store: store}
	for _, opt := range opts {
		opt(w)
	}
	sopts := append(append([]whiteboard.SessionOption(nil), w.sessionOpts...),
		whiteboard.WithCommitHandler(w.persist),
		whiteboard.WithExportHandler(w.export),
	)
	s, err := whiteboard.NewSession(width, height, sopts...)
	if err != nil {
		return nil, err
	}
	w.session = s
	return w, nil
}

// Session returns the bound session.
func (w *Workspace) Session() *whiteboard.Session {
	return w.session
}

// Store returns the bound store.
func (w *Workspace) Store() *Store {
	return w.store
}

func (w *Workspace) persist(uri string) {
	w.dirty.Store(true)
	if err := w.store.SetActivePageData(uri); err != nil {
		whiteboard.Logger().Warn("board: persist page", "err", err)
	}
}

func (w *Workspace) export(uri string) {
	if w.onExport == nil {
		return
	}
	w.onExport(w.store.Active().ExportFilename(), uri)
}

// Open applies the active whiteboard's background and pen color to the
// session and loads its active page. The returned channel is closed when
// the page is loaded.
func (w *Workspace) Open(ctx context.Context) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.applyPen()
	return w.open(ctx)
}

// applyPen sets the pen color that stays visible on the active
// whiteboard's background.
func (w *Workspace) applyPen() {
	w.session.SetColor(whiteboard.PenColorFor(w.store.Active().Background))
}

func (w *Workspace) open(ctx context.Context) <-chan struct{} {
	wb := w.store.Active()
	w.session.SetBackground(wb.Background)
	w.dirty.Store(false)
	w.loading = w.session.LoadPage(ctx, wb.Page().DataURI)
	return w.loading
}

// save waits for the pending page load, then stores the session surface
// on the active page if it changed since the load.
func (w *Workspace) save(ctx context.Context) error {
	if w.loading != nil {
		select {
		case <-w.loading:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !w.dirty.Load() {
		return nil
	}
	uri, err := w.session.Snapshot()
	if err != nil {
		return err
	}
	return w.store.SetActivePageData(uri)
}

// switchTo saves the current page, applies change to the store, resets
// the view and loads the resulting active page. When boardChanged is set
// the pen color is reset for the new whiteboard's background.
func (w *Workspace) switchTo(ctx context.Context, boardChanged bool, change func() error) (<-chan struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.save(ctx); err != nil {
		return nil, err
	}
	if err := change(); err != nil {
		return nil, err
	}
	if err := w.session.Dispatch(whiteboard.ResetZoomCommand{}); err != nil && !errors.Is(err, whiteboard.ErrLocked) {
		return nil, err
	}
	if boardChanged {
		w.applyPen()
	}
	done := w.open(ctx)
	whiteboard.Logger().Info("board: page opened",
		slog.String("whiteboard", w.store.Active().Name),
		slog.Int("page", w.store.Active().ActivePage+1))
	return done, nil
}

func closedChan() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// SelectPage switches to page index of the active whiteboard. Selecting
// the active page does nothing.
func (w *Workspace) SelectPage(ctx context.Context, index int) (<-chan struct{}, error) {
	if index == w.store.Active().ActivePage {
		return closedChan(), nil
	}
	return w.switchTo(ctx, false, func() error {
		return w.store.SelectPage(w.store.Active().ID, index)
	})
}

// AddPage appends a blank page to the active whiteboard and switches to it.
func (w *Workspace) AddPage(ctx context.Context) (<-chan struct{}, error) {
	return w.switchTo(ctx, false, func() error {
		_, err := w.store.AddPage(w.store.Active().ID)
		return err
	})
}

// DeletePage removes page index of the active whiteboard and loads the
// page that becomes active.
func (w *Workspace) DeletePage(ctx context.Context, index int) (<-chan struct{}, error) {
	return w.switchTo(ctx, false, func() error {
		return w.store.DeletePage(w.store.Active().ID, index)
	})
}

// NewWhiteboard creates a whiteboard and switches to it.
func (w *Workspace) NewWhiteboard(ctx context.Context) (<-chan struct{}, error) {
	return w.switchTo(ctx, true, func() error {
		_, err := w.store.Create()
		return err
	})
}

// SelectWhiteboard switches to the whiteboard with the given ID.
func (w *Workspace) SelectWhiteboard(ctx context.Context, id string) (<-chan struct{}, error) {
	return w.switchTo(ctx, true, func() error {
		return w.store.Select(id)
	})
}

// DeleteWhiteboard removes a whiteboard. When it was active, the first
// remaining whiteboard is loaded.
func (w *Workspace) DeleteWhiteboard(ctx context.Context, id string) (<-chan struct{}, error) {
	if w.store.Active().ID != id {
		if err := w.store.Delete(id); err != nil {
			return nil, err
		}
		return closedChan(), nil
	}
	return w.switchTo(ctx, true, func() error {
		return w.store.Delete(id)
	})
}

// SetBackground sets the active whiteboard's background. The pen color is
// left as chosen.
func (w *Workspace) SetBackground(bg whiteboard.BackgroundSpec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.store.SetBackground(w.store.Active().ID, bg); err != nil {
		return err
	}
	w.session.SetBackground(bg)
	return nil
}

// Rename renames the active whiteboard.
func (w *Workspace) Rename(name string) error {
	return w.store.Rename(w.store.Active().ID, name)
}

// Export composites the active page and passes it to the export function.
func (w *Workspace) Export() error {
	return w.session.Dispatch(whiteboard.ExportCommand{})
}

// Clear erases the active page.
func (w *Workspace) Clear() error {
	return w.session.Dispatch(whiteboard.ClearCommand{})
}

// Close saves the active page and releases the session.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.save(context.Background())
	return errors.Join(err, w.session.Close())
}
