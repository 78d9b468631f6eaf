// Package terminal defines the Driver interface the master Space renders
// through. The compositor core treats render payloads as opaque bytes —
// actual glyph/color interpretation is Driver's problem, not the core's
// (spec's explicit out-of-scope boundary). A concrete Driver backed by
// golang.org/x/term and charmbracelet/x/ansi lives alongside this file.
package terminal

import "encoding/json"

// Driver is the host's handle on the controlling terminal: it accepts
// opaque render payloads, provides the current screen size, and owns
// raw-mode / alternate-screen setup and teardown.
type Driver interface {
	// Render interprets content (the "content" field of a render
	// Request, left opaque by the core) and updates the in-memory
	// screen buffer. It does not necessarily flush to the terminal.
	Render(content json.RawMessage) error

	// Flush pushes any buffered screen changes to the terminal.
	Flush() error

	// Size returns the current terminal dimensions in columns and rows.
	Size() (width, height int)

	// Start enters raw mode and the alternate screen buffer.
	Start() error

	// Stop restores the terminal to its pre-Start state.
	Stop() error
}
