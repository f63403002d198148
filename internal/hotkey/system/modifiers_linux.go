//go:build linux

package system

import (
	"github.com/petems/shortcut-tray/internal/keys"
	xhotkey "golang.design/x/hotkey"
)

// modifierMap maps keys.Modifier to xhotkey.Modifier on X11
var modifierMap = map[keys.Modifier]xhotkey.Modifier{
	keys.ModSuper:   xhotkey.Mod4, // Super = Mod4
	keys.ModAlt:     xhotkey.Mod1, // Alt = Mod1
	keys.ModControl: xhotkey.ModCtrl,
	keys.ModShift:   xhotkey.ModShift,
}
