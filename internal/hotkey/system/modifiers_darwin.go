//go:build darwin

package system

import (
	"github.com/petems/shortcut-tray/internal/keys"
	xhotkey "golang.design/x/hotkey"
)

// modifierMap maps keys.Modifier to xhotkey.Modifier on macOS
var modifierMap = map[keys.Modifier]xhotkey.Modifier{
	keys.ModSuper:   xhotkey.ModCmd,
	keys.ModAlt:     xhotkey.ModOption,
	keys.ModControl: xhotkey.ModCtrl,
	keys.ModShift:   xhotkey.ModShift,
}
