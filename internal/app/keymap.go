package app

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/philipparndt/gocalib/pkg/keys"
)

var keyCodes = map[fyne.KeyName]keys.Code{
	fyne.KeyUp:            keys.ArrowUp,
	fyne.KeyDown:          keys.ArrowDown,
	fyne.KeyLeft:          keys.ArrowLeft,
	fyne.KeyRight:         keys.ArrowRight,
	fyne.KeyTab:           keys.Tab,
	fyne.KeyEscape:        keys.Escape,
	desktop.KeyShiftLeft:  keys.ShiftLeft,
	desktop.KeyShiftRight: keys.ShiftRight,
}

// keyCode normalizes a fyne key name
func keyCode(name fyne.KeyName) (keys.Code, bool) {
	c, ok := keyCodes[name]
	return c, ok
}
