//go:build windows

package system

import (
	"github.com/petems/shortcut-tray/internal/keys"
	xhotkey "golang.design/x/hotkey"
)

// modifierMap maps keys.Modifier to xhotkey.Modifier on Windows
var modifierMap = map[keys.Modifier]xhotkey.Modifier{
	keys.ModSuper:   xhotkey.ModWin,
	keys.ModAlt:     xhotkey.ModAlt,
	keys.ModControl: xhotkey.ModCtrl,
	keys.ModShift:   xhotkey.ModShift,
}
