package hotkey

import (
	"errors"
	"sync"
	"testing"

	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrar records registrations and lets tests press keys.
type fakeRegistrar struct {
	mu        sync.Mutex
	callbacks map[keys.Combination]func()
	failOn    map[keys.Combination]bool
	closed    bool
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		callbacks: make(map[keys.Combination]func()),
		failOn:    make(map[keys.Combination]bool),
	}
}

func (f *fakeRegistrar) Register(combo keys.Combination, onPress func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[combo] {
		return errors.New("grab failed")
	}
	f.callbacks[combo] = onPress
	return nil
}

func (f *fakeRegistrar) Unregister(combo keys.Combination) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.callbacks, combo)
	return nil
}

func (f *fakeRegistrar) Close() error {
	f.closed = true
	return nil
}

func (f *fakeRegistrar) press(combo keys.Combination) bool {
	f.mu.Lock()
	cb, ok := f.callbacks[combo]
	f.mu.Unlock()
	if ok {
		cb()
	}
	return ok
}

func (f *fakeRegistrar) registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}

var (
	copyCombo  = keys.MustParse("super+KeyC")
	pasteCombo = keys.MustParse("super+KeyV")
	undoCombo  = keys.MustParse("control+KeyZ")
)

func TestSyncRegistersAndRoutes(t *testing.T) {
	reg := newFakeRegistrar()
	var pressed []keys.Combination
	b := NewBinder(reg, func(c keys.Combination) bool {
		pressed = append(pressed, c)
		return true
	}, zerolog.Nop())

	require.NoError(t, b.Sync([]keys.Combination{pasteCombo, copyCombo}))
	assert.Equal(t, []keys.Combination{copyCombo, pasteCombo}, b.Active())

	assert.True(t, reg.press(copyCombo))
	assert.True(t, reg.press(pasteCombo))
	assert.False(t, reg.press(undoCombo))
	assert.Equal(t, []keys.Combination{copyCombo, pasteCombo}, pressed)
}

func TestSyncDropsStaleCombinations(t *testing.T) {
	reg := newFakeRegistrar()
	b := NewBinder(reg, func(keys.Combination) bool { return false }, zerolog.Nop())

	require.NoError(t, b.Sync([]keys.Combination{copyCombo, pasteCombo}))
	require.NoError(t, b.Sync([]keys.Combination{pasteCombo, undoCombo}))

	assert.Equal(t, []keys.Combination{undoCombo, pasteCombo}, b.Active())
	assert.Equal(t, 2, reg.registered())
	assert.False(t, reg.press(copyCombo))
}

func TestSyncSkipsFailedRegistration(t *testing.T) {
	reg := newFakeRegistrar()
	reg.failOn[pasteCombo] = true
	b := NewBinder(reg, func(keys.Combination) bool { return true }, zerolog.Nop())

	err := b.Sync([]keys.Combination{copyCombo, pasteCombo})
	assert.Error(t, err)
	assert.Equal(t, []keys.Combination{copyCombo}, b.Active())

	delete(reg.failOn, pasteCombo)
	require.NoError(t, b.Sync([]keys.Combination{copyCombo, pasteCombo}))
	assert.Len(t, b.Active(), 2)
}

func TestCloseUnregistersEverything(t *testing.T) {
	reg := newFakeRegistrar()
	b := NewBinder(reg, func(keys.Combination) bool { return true }, zerolog.Nop())
	require.NoError(t, b.Sync([]keys.Combination{copyCombo}))

	require.NoError(t, b.Close())
	assert.Equal(t, 0, reg.registered())
	assert.True(t, reg.closed)
	assert.Empty(t, b.Active())
}

func TestNopRegistrar(t *testing.T) {
	b := NewBinder(Nop(), func(keys.Combination) bool { return true }, zerolog.Nop())
	require.NoError(t, b.Sync([]keys.Combination{copyCombo}))
	assert.Len(t, b.Active(), 1)
	assert.NoError(t, b.Close())
}
