package app

import (
	"context"
	"errors"
	"sync"

	"github.com/petems/shortcut-tray/internal/hotkey"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/petems/shortcut-tray/internal/manager"
	"github.com/rs/zerolog"
)

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetReady(bindings int)
	SetError()
}

// Watcher signals when the shortcut cache changes outside the app.
type Watcher interface {
	Start() (<-chan struct{}, error)
	Stop() error
}

type Config struct {
	Manager       *manager.Manager
	Hotkeys       hotkey.Registrar
	Watcher       Watcher // Optional - can be nil
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
}

type App struct {
	mgr     *manager.Manager
	binder  *hotkey.Binder
	watcher Watcher
	log     zerolog.Logger
	status  StatusUpdater

	mu      sync.Mutex
	started bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownOnce sync.Once
	shutdownErr  error
}

func New(cfg Config) *App {
	registrar := cfg.Hotkeys
	if registrar == nil {
		registrar = hotkey.Nop()
	}
	return &App{
		mgr:     cfg.Manager,
		binder:  hotkey.NewBinder(registrar, cfg.Manager.Dispatch, cfg.Logger),
		watcher: cfg.Watcher,
		log:     cfg.Logger,
		status:  cfg.StatusUpdater,
		done:    make(chan struct{}),
	}
}

// SetStatusUpdater sets the status target (for circular dependency resolution)
func (a *App) SetStatusUpdater(s StatusUpdater) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Start loads the shortcut cache, registers the bound hotkeys and begins
// watching the cache file. Load and registration problems are returned but
// leave the app running with whatever could be bound.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}
	a.started = true

	err := a.reloadLocked()

	if a.watcher != nil {
		changed, werr := a.watcher.Start()
		if werr != nil {
			a.log.Error().Err(werr).Msg("Failed to watch shortcut cache")
			err = errors.Join(err, werr)
		} else {
			a.wg.Add(1)
			go a.watch(changed)
		}
	}

	a.log.Info().Int("bindings", len(a.binder.Active())).Msg("Shortcuts active")
	return err
}

// Reload re-reads the cache and re-syncs hotkeys.
func (a *App) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reloadLocked()
}

func (a *App) reloadLocked() error {
	err := a.mgr.Initialize()
	return a.syncLocked(err)
}

// syncLocked registers the current bindings and reports prior as well.
func (a *App) syncLocked(prior error) error {
	bindings := a.mgr.Bindings()
	combos := make([]keys.Combination, 0, len(bindings))
	for _, b := range bindings {
		combos = append(combos, b.Combination)
	}

	err := errors.Join(prior, a.binder.Sync(combos))
	if a.status != nil {
		if err != nil {
			a.status.SetError()
		} else {
			a.status.SetReady(len(combos))
		}
	}
	return err
}

func (a *App) watch(changed <-chan struct{}) {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-changed:
			a.log.Info().Msg("Shortcut cache changed on disk, reloading")
			if err := a.Reload(); err != nil {
				a.log.Warn().Err(err).Msg("Reload finished with errors")
			}
		}
	}
}

// OnHotkey runs the action bound to combo. It reports whether one ran.
func (a *App) OnHotkey(combo keys.Combination) bool {
	return a.mgr.Dispatch(combo)
}

// Tray actions

func (a *App) SetEnabled(ext string, enabled bool) error {
	return a.change(func() error { return a.mgr.SetEnabled(ext, enabled) })
}

func (a *App) SetShortcut(ext, action string, combo keys.Combination) error {
	return a.change(func() error { return a.mgr.SetShortcut(ext, action, combo) })
}

func (a *App) ResetShortcut(ext, action string) error {
	return a.change(func() error { return a.mgr.ResetShortcut(ext, action) })
}

func (a *App) change(apply func() error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := apply()
	if errors.Is(err, manager.ErrUnknownExtension) || errors.Is(err, manager.ErrUnknownAction) || errors.Is(err, keys.ErrMissingCode) {
		return err
	}
	return a.syncLocked(err)
}

// Snapshot renders every extension. Before Start it loads the cache first, so
// a menu built ahead of hotkey registration already reflects the file.
func (a *App) Snapshot() ([]manager.ExtensionView, error) {
	if !a.mgr.Initialized() {
		if err := a.mgr.Initialize(); err != nil {
			a.log.Warn().Err(err).Msg("Shortcut cache loaded with errors")
		}
	}
	return a.mgr.Snapshot()
}

func (a *App) Bindings() []manager.Binding {
	return a.mgr.Bindings()
}

// Shutdown stops watching and releases every registered hotkey. Calls after
// the first return the first result.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	wasStarted := a.started
	a.started = false
	close(a.done)
	a.mu.Unlock()

	var errs []error
	if wasStarted && a.watcher != nil {
		errs = append(errs, a.watcher.Stop())
	}

	stopped := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	errs = append(errs, a.binder.Close())
	return errors.Join(errs...)
}
