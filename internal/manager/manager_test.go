package manager

import (
	"sync"
	"testing"

	"github.com/petems/shortcut-tray/internal/cache"
	"github.com/petems/shortcut-tray/internal/extension"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/petems/shortcut-tray/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPath = "/home/test/.shortcuts/__test__/manager.json"

type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func newCounter() *counter {
	return &counter{calls: make(map[string]int)}
}

func (c *counter) action(name string) extension.Action {
	return extension.ActionFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.calls[name]++
	})
}

func (c *counter) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func clipboardExtension(c *counter) extension.Extension {
	return extension.Extension{
		Name:        "Clipboard",
		Description: "Clipboard description",
		Shortcuts: []extension.Shortcut{
			{Name: "Copy", Description: "Copy", Action: c.action("Copy"), Default: keys.MustParse("super+KeyC")},
			{Name: "Paste", Description: "Paste", Action: c.action("Paste"), Default: keys.MustParse("super+KeyV")},
		},
	}
}

func newTestManager(t *testing.T, fs afero.Fs, exts ...extension.Extension) *Manager {
	t.Helper()
	c := cache.New(store.NewWithFs(fs, testPath), zerolog.Nop())
	return New(Config{
		Registry: extension.NewRegistry(exts...),
		Cache:    c,
		Logger:   zerolog.Nop(),
	})
}

func writeCache(t *testing.T, fs afero.Fs, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte(content), 0644))
}

func TestNewManagerIsUninitialized(t *testing.T) {
	m := newTestManager(t, afero.NewMemMapFs())
	assert.False(t, m.Initialized())
	assert.False(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.Empty(t, m.Bindings())

	require.NoError(t, m.Initialize())
	assert.True(t, m.Initialized())
}

func TestSnapshotSingleModifier(t *testing.T) {
	tests := []struct {
		name  string
		combo keys.Combination
		want  string
	}{
		{"meta", keys.New(keys.KeyV, keys.ModSuper), "super+KeyV"},
		{"alt", keys.New(keys.KeyV, keys.ModAlt), "alt+KeyV"},
		{"ctrl", keys.New(keys.KeyV, keys.ModControl), "control+KeyV"},
		{"shift", keys.New(keys.KeyV, keys.ModShift), "shift+KeyV"},
		{"meta alt", keys.New(keys.KeyV, keys.ModAlt, keys.ModSuper), "super+alt+KeyV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := extension.Extension{
				Name:        "Test Extension",
				Description: "A test extension",
				Shortcuts: []extension.Shortcut{{
					Name:        "Copy",
					Description: "Copy the selected text to the clipboard",
					Action:      extension.ActionFunc(func() {}),
					Default:     tt.combo,
				}},
			}
			m := newTestManager(t, afero.NewMemMapFs(), ext)

			got, err := m.SnapshotJSON()
			require.NoError(t, err)
			assert.JSONEq(t, `[{
				"name": "Test Extension",
				"description": "A test extension",
				"enabled": false,
				"shortcuts": [{
					"name": "Copy",
					"description": "Copy the selected text to the clipboard",
					"shortcut": "`+tt.want+`"
				}]
			}]`, got)
		})
	}
}

func TestSnapshotUsesOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Paste","shortcut":"control+KeyR"}]}]`)

	m := newTestManager(t, fs, clipboardExtension(newCounter()))
	require.NoError(t, m.Initialize())

	views, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Enabled)
	require.Len(t, views[0].Shortcuts, 2)
	assert.Equal(t, "super+KeyC", views[0].Shortcuts[0].Shortcut)
	assert.Equal(t, "control+KeyR", views[0].Shortcuts[1].Shortcut)
}

func TestSnapshotDisabledRecordKeepsOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":false,"shortcuts":[{"name":"Copy","shortcut":"alt+KeyE"}]}]`)

	m := newTestManager(t, fs, clipboardExtension(newCounter()))
	require.NoError(t, m.Initialize())

	views, err := m.Snapshot()
	require.NoError(t, err)
	assert.False(t, views[0].Enabled)
	assert.Equal(t, "alt+KeyE", views[0].Shortcuts[0].Shortcut)
	assert.Empty(t, m.Bindings())
}

func TestSnapshotMissingDefault(t *testing.T) {
	ext := extension.Extension{
		Name: "Broken",
		Shortcuts: []extension.Shortcut{
			{Name: "NoDefault", Action: extension.ActionFunc(func() {})},
		},
	}
	m := newTestManager(t, afero.NewMemMapFs(), ext)

	_, err := m.Snapshot()
	assert.ErrorIs(t, err, ErrMissingDefaultCombination)

	require.NoError(t, m.SetShortcut("Broken", "NoDefault", keys.MustParse("shift+F5")))
	views, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "shift+F5", views[0].Shortcuts[0].Shortcut)
}

// TestClipboardScenario walks an extension from an empty cache to enabled.
func TestClipboardScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	views, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Enabled)
	assert.Equal(t, "super+KeyC", views[0].Shortcuts[0].Shortcut)
	assert.Equal(t, "super+KeyV", views[0].Shortcuts[1].Shortcut)

	assert.False(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.Equal(t, 0, calls.total())

	c := cache.New(store.NewWithFs(fs, testPath), zerolog.Nop())
	c.Add(cache.Record{Name: "Clipboard", Enabled: true, Shortcuts: []cache.Shortcut{}})
	require.NoError(t, c.Save())
	require.NoError(t, m.Initialize())

	assert.True(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.Equal(t, 1, calls.count("Copy"))
	assert.Equal(t, 0, calls.count("Paste"))

	assert.True(t, m.Dispatch(keys.MustParse("super+KeyV")))
	assert.Equal(t, 1, calls.count("Paste"))

	assert.False(t, m.Dispatch(keys.MustParse("control+KeyZ")))
	assert.Equal(t, 2, calls.total())
}

func TestDispatchUsesOverrideNotDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Copy","shortcut":"control+KeyR"}]}]`)
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	assert.False(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.True(t, m.Dispatch(keys.MustParse("control+KeyR")))
	assert.Equal(t, 1, calls.count("Copy"))
}

func TestDispatchIgnoresUnknownRecords(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[
		{"name":"Ghost","enabled":true,"shortcuts":[{"name":"Boo","shortcut":"super+KeyB"}]},
		{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Removed","shortcut":"super+KeyX"}]}
	]`)
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	assert.False(t, m.Dispatch(keys.MustParse("super+KeyB")))
	assert.False(t, m.Dispatch(keys.MustParse("super+KeyX")))
	assert.Len(t, m.Bindings(), 2)
}

func TestBindingsSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[]}]`)
	m := newTestManager(t, fs, clipboardExtension(newCounter()))
	require.NoError(t, m.Initialize())

	assert.Equal(t, []Binding{
		{Combination: keys.MustParse("super+KeyC"), Extension: "Clipboard", Shortcut: "Copy"},
		{Combination: keys.MustParse("super+KeyV"), Extension: "Clipboard", Shortcut: "Paste"},
	}, m.Bindings())
}

func TestInitializeReportsConflicts(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Paste","shortcut":"super+KeyC"}]}]`)
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))

	err := m.Initialize()
	assert.ErrorIs(t, err, ErrCombinationConflict)
	assert.True(t, m.Initialized())

	assert.True(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.Equal(t, 1, calls.count("Paste"), "the later binding wins")
	assert.Equal(t, 0, calls.count("Copy"))
}

func TestInitializeMalformedCacheStartsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":`)
	m := newTestManager(t, fs, clipboardExtension(newCounter()))

	err := m.Initialize()
	assert.ErrorIs(t, err, cache.ErrMalformedCache)
	assert.True(t, m.Initialized())
	assert.Empty(t, m.Records())

	views, err := m.Snapshot()
	require.NoError(t, err)
	assert.False(t, views[0].Enabled)
}

func TestUncommonKeyCodeKeepsRecordsAcrossEdits(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Paste","shortcut":"control+Numpad1"}]}]`)
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	require.NoError(t, m.SetShortcut("Clipboard", "Copy", keys.MustParse("control+KeyK")))

	views, err := m.Snapshot()
	require.NoError(t, err)
	assert.True(t, views[0].Enabled)
	assert.Equal(t, "control+KeyK", views[0].Shortcuts[0].Shortcut)
	assert.Equal(t, "control+Numpad1", views[0].Shortcuts[1].Shortcut)

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"control+Numpad1"`)

	assert.True(t, m.Dispatch(keys.New("Numpad1", keys.ModControl)))
	assert.Equal(t, 1, calls.count("Paste"))
}

func TestInitializeUnreadableCacheStartsEmpty(t *testing.T) {
	c := cache.New(store.NewWithFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), testPath), zerolog.Nop())
	m := New(Config{
		Registry: extension.NewRegistry(clipboardExtension(newCounter())),
		Cache:    c,
		Logger:   zerolog.Nop(),
	})

	err := m.Initialize()
	assert.ErrorIs(t, err, store.ErrIO)
	assert.True(t, m.Initialized())
	assert.Empty(t, m.Bindings())
}

func TestInitializeRebuildsFromScratch(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[]}]`)
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())
	require.Len(t, m.Bindings(), 2)

	writeCache(t, fs, `[{"name":"Clipboard","enabled":false,"shortcuts":[]}]`)
	require.NoError(t, m.Initialize())
	assert.Empty(t, m.Bindings())
	assert.False(t, m.Dispatch(keys.MustParse("super+KeyC")))
}

func TestSetEnabledPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	require.NoError(t, m.SetEnabled("Clipboard", true))
	assert.True(t, m.Dispatch(keys.MustParse("super+KeyV")))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Clipboard","enabled":true,"shortcuts":[]}]`, string(data))

	require.NoError(t, m.SetEnabled("Clipboard", false))
	assert.False(t, m.Dispatch(keys.MustParse("super+KeyV")))
	assert.Equal(t, 1, calls.total())
}

func TestSetShortcutAndReset(t *testing.T) {
	fs := afero.NewMemMapFs()
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())
	require.NoError(t, m.SetEnabled("Clipboard", true))

	require.NoError(t, m.SetShortcut("Clipboard", "Copy", keys.MustParse("control+shift+KeyC")))
	assert.False(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.True(t, m.Dispatch(keys.MustParse("control+shift+KeyC")))

	require.NoError(t, m.SetShortcut("Clipboard", "Copy", keys.MustParse("alt+KeyC")))
	rec := m.Records()[0]
	require.Len(t, rec.Shortcuts, 1)
	assert.Equal(t, "alt+KeyC", rec.Shortcuts[0].Shortcut.String())

	require.NoError(t, m.ResetShortcut("Clipboard", "Copy"))
	assert.True(t, m.Dispatch(keys.MustParse("super+KeyC")))
	assert.Equal(t, 2, calls.count("Copy"))
}

func TestUpdateRejectsUnknownNames(t *testing.T) {
	m := newTestManager(t, afero.NewMemMapFs(), clipboardExtension(newCounter()))

	assert.ErrorIs(t, m.SetEnabled("Nope", true), ErrUnknownExtension)
	assert.ErrorIs(t, m.SetShortcut("Clipboard", "Nope", keys.MustParse("super+KeyN")), ErrUnknownAction)
	assert.ErrorIs(t, m.SetShortcut("Clipboard", "Copy", keys.Combination{}), keys.ErrMissingCode)
	assert.Empty(t, m.Records())
}

func TestApplyJSONFromSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	payload := `[{"name":"Clipboard","description":"Clipboard description","enabled":true,"shortcuts":[
		{"name":"Copy","description":"Copy","shortcut":"super+KeyC"},
		{"name":"Paste","description":"Paste","shortcut":"alt+KeyP"}]}]`
	require.NoError(t, m.ApplyJSON(payload))

	assert.True(t, m.Dispatch(keys.MustParse("alt+KeyP")))
	assert.Equal(t, 1, calls.count("Paste"))

	reloaded := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, reloaded.Initialize())
	assert.Equal(t, m.Bindings(), reloaded.Bindings())

	assert.ErrorIs(t, m.ApplyJSON(`nope`), cache.ErrMalformedCache)
	assert.Len(t, m.Bindings(), 2)
}

func TestApplyEmptyKeepsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	const existing = `[{"name":"Clipboard","enabled":true,"shortcuts":[]}]`
	writeCache(t, fs, existing)
	m := newTestManager(t, fs, clipboardExtension(newCounter()))
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Apply(nil))
	assert.Empty(t, m.Bindings())

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestRegisterThenInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCache(t, fs, `[{"name":"Clipboard","enabled":true,"shortcuts":[]}]`)
	calls := newCounter()
	m := newTestManager(t, fs)
	m.Register(clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	assert.True(t, m.Dispatch(keys.MustParse("super+KeyC")))
}

// TestDispatchDuringRebuild exercises concurrent dispatch and rebuild; run with -race.
func TestDispatchDuringRebuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	calls := newCounter()
	m := newTestManager(t, fs, clipboardExtension(calls))
	require.NoError(t, m.Initialize())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = m.SetEnabled("Clipboard", i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			m.Dispatch(keys.MustParse("super+KeyC"))
			for _, b := range m.Bindings() {
				assert.Equal(t, "Clipboard", b.Extension)
			}
		}
	}()
	wg.Wait()
	assert.Len(t, m.Bindings(), 0)
}
