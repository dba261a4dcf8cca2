package tui

// Keybinding constants
const (
	KeyTab      = "tab"
	KeyShiftTab = "shift+tab"
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyEsc      = "esc"
	KeyTick     = "t"
	KeyRun      = "r"
	KeyUndo     = "u"
	KeyAdd      = "a"
	KeyUp       = "up"
	KeyDown     = "down"
	KeyJ        = "j"
	KeyK        = "k"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return helpStyle.Render("t: tick | r: run all | u: undo | a: add task | Tab: cycle focus | j/k: scroll | q: quit")
}
