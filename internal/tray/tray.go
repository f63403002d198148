package tray

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/petems/shortcut-tray/internal/app"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/petems/shortcut-tray/internal/logging"
	"github.com/petems/shortcut-tray/internal/manager"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 2 * time.Second

type UI struct {
	app     *app.App
	version string
	commit  string
	log     zerolog.Logger

	mu        sync.Mutex
	extItems  map[string]*systray.MenuItem // "Enabled" checkbox per extension
	shortcuts map[shortcutRef]*systray.MenuItem
	mStatus   *systray.MenuItem
}

type shortcutRef struct {
	extension string
	action    string
}

func New(application *app.App, log zerolog.Logger, version, commit string) *UI {
	return &UI{
		app:       application,
		version:   version,
		commit:    commit,
		log:       log,
		extItems:  make(map[string]*systray.MenuItem),
		shortcuts: make(map[shortcutRef]*systray.MenuItem),
	}
}

// Status update methods for the app to call

func (u *UI) SetReady(bindings int) {
	systray.SetTitle(statusTitle(true))
	u.setStatusText(fmt.Sprintf("%d shortcuts active", bindings))
}

func (u *UI) SetError() {
	systray.SetTitle(statusTitle(false))
	u.setStatusText("Some shortcuts could not be bound")
}

func (u *UI) setStatusText(text string) {
	u.mu.Lock()
	item := u.mStatus
	u.mu.Unlock()
	if item != nil {
		item.SetTitle(text)
	}
}

// Run blocks on the tray event loop. It MUST be called from the main thread.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	systray.SetTitle(statusTitle(true))
	systray.SetTooltip("Global keyboard shortcuts")

	u.mu.Lock()
	u.mStatus = systray.AddMenuItem("Starting...", "")
	u.mStatus.Disable()
	u.mu.Unlock()
	systray.AddSeparator()

	views, err := u.app.Snapshot()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to render extensions")
	}
	for _, view := range views {
		u.addExtension(view)
	}

	systray.AddSeparator()
	mReload := systray.AddMenuItem("Reload Shortcuts", "Re-read the shortcut cache")
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About ShortcutTray")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Hotkey registration needs the run loop started by systray.
	go func() {
		if err := u.app.Start(); err != nil {
			u.log.Warn().Err(err).Msg("Started with shortcut errors")
		}
		u.refresh()
	}()

	go u.handleEvents(mReload, mLogs, mAbout, mQuit)
}

func (u *UI) addExtension(view manager.ExtensionView) {
	item := systray.AddMenuItem(view.Name, view.Description)
	mEnabled := item.AddSubMenuItemCheckbox("Enabled", "Bind this extension's shortcuts", view.Enabled)
	u.mu.Lock()
	u.extItems[view.Name] = mEnabled
	u.mu.Unlock()
	go func(name string) {
		for range mEnabled.ClickedCh {
			enable := !mEnabled.Checked()
			if err := u.app.SetEnabled(name, enable); err != nil {
				u.log.Error().Err(err).Str("extension", name).Msg("Failed to change extension state")
			} else {
				u.log.Info().Str("extension", name).Bool("enabled", enable).Msg("Changed extension state")
			}
			u.refresh()
		}
	}(view.Name)

	for _, sc := range view.Shortcuts {
		ref := shortcutRef{extension: view.Name, action: sc.Name}
		scItem := item.AddSubMenuItem(shortcutLabel(sc), sc.Description)
		u.mu.Lock()
		u.shortcuts[ref] = scItem
		u.mu.Unlock()

		go func(ref shortcutRef, menuItem *systray.MenuItem) {
			for range menuItem.ClickedCh {
				u.runShortcut(ref)
			}
		}(ref, scItem)
	}
}

// runShortcut dispatches the effective combination of ref, as if pressed.
func (u *UI) runShortcut(ref shortcutRef) {
	for _, b := range u.app.Bindings() {
		if b.Extension == ref.extension && b.Shortcut == ref.action {
			u.app.OnHotkey(b.Combination)
			return
		}
	}
	u.log.Info().Str("extension", ref.extension).Str("action", ref.action).Msg("Shortcut is not bound")
}

// refresh re-renders check marks and combination labels.
func (u *UI) refresh() {
	views, err := u.app.Snapshot()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to render extensions")
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, view := range views {
		if item, ok := u.extItems[view.Name]; ok {
			setChecked(item, view.Enabled)
		}
		for _, sc := range view.Shortcuts {
			if item, ok := u.shortcuts[shortcutRef{extension: view.Name, action: sc.Name}]; ok {
				item.SetTitle(shortcutLabel(sc))
			}
		}
	}
}

func (u *UI) handleEvents(mReload, mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-mReload.ClickedCh:
			if err := u.app.Reload(); err != nil {
				u.log.Warn().Err(err).Msg("Reload finished with errors")
			}
			u.refresh()
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) openLogs() {
	name, args := openCommand(runtime.GOOS, logging.Path())
	if err := exec.Command(name, args...).Start(); err != nil {
		u.log.Error().Err(err).Msg("Failed to open log file")
	}
}

func (u *UI) showAbout() {
	u.log.Info().Str("version", u.version).Str("commit", u.commit).Msg("ShortcutTray")
}

func (u *UI) onExit() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := u.app.Shutdown(ctx); err != nil {
		u.log.Error().Err(err).Msg("Shutdown error")
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// statusTitle returns the tray title with keyboard emoji and status indicator
func statusTitle(ok bool) string {
	if ok {
		return "⌨️ 🟢"
	}
	return "⌨️ 🟡"
}

// shortcutLabel renders a menu entry such as "Copy\tCmd+C".
func shortcutLabel(sc manager.ShortcutView) string {
	combo, err := keys.Parse(sc.Shortcut)
	if err != nil {
		return sc.Name
	}
	return fmt.Sprintf("%s\t%s", sc.Name, combo.Present())
}

// openCommand returns the command that opens path with the default app.
func openCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}
