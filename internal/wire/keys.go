package wire

// KeyCode names a non-printable key, or "char" for a printable rune
// carried in KeyData.Value.
type KeyCode string

const (
	KeyChar      KeyCode = "char"
	KeyEnter     KeyCode = "enter"
	KeyEsc       KeyCode = "esc"
	KeyTab       KeyCode = "tab"
	KeyBackspace KeyCode = "backspace"
	KeyDelete    KeyCode = "delete"
	KeyUp        KeyCode = "up"
	KeyDown      KeyCode = "down"
	KeyLeft      KeyCode = "left"
	KeyRight     KeyCode = "right"
	KeyHome      KeyCode = "home"
	KeyEnd       KeyCode = "end"
	KeyPageUp    KeyCode = "pageup"
	KeyPageDown  KeyCode = "pagedown"
)

// Modifier names the modifier key held during a key press, if any.
type Modifier string

const (
	ModNone  Modifier = "none"
	ModShift Modifier = "shift"
	ModCtrl  Modifier = "ctrl"
	ModAlt   Modifier = "alt"
)

// MouseKind names the mouse action a MouseData event reports.
type MouseKind string

const (
	MouseDown       MouseKind = "down"
	MouseUp         MouseKind = "up"
	MouseDrag       MouseKind = "drag"
	MouseMove       MouseKind = "move"
	MouseScrollUp   MouseKind = "scroll_up"
	MouseScrollDown MouseKind = "scroll_down"
)
