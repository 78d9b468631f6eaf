package terminal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
)

// renderPayload is the concrete shape of a render Request's opaque
// "content" field: raw terminal bytes, pre-built by whatever component
// owns glyph/color rendering upstream of this driver. The core never
// looks inside it.
type renderPayload struct {
	Write string `json:"write"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// ANSIDriver is the concrete terminal.Driver backing a live ccanvas
// process: raw mode via golang.org/x/term, the alternate screen via
// literal escape sequences, cursor movement and visibility via
// charmbracelet/x/ansi.
type ANSIDriver struct {
	mu       sync.Mutex
	in       *os.File
	out      *os.File
	oldState *term.State
	buf      bytes.Buffer
}

// New wraps in/out (typically os.Stdin/os.Stdout) as a Driver.
func New(in, out *os.File) *ANSIDriver {
	return &ANSIDriver{in: in, out: out}
}

func (d *ANSIDriver) Start() error {
	if !term.IsTerminal(int(d.in.Fd())) {
		return fmt.Errorf("terminal: stdin is not a tty")
	}
	state, err := term.MakeRaw(int(d.in.Fd()))
	if err != nil {
		return fmt.Errorf("terminal: enter raw mode: %w", err)
	}
	d.oldState = state

	if _, err := d.out.WriteString(enterAltScreen + ansi.HideCursor); err != nil {
		term.Restore(int(d.in.Fd()), d.oldState)
		return fmt.Errorf("terminal: enter alt screen: %w", err)
	}
	return nil
}

func (d *ANSIDriver) Stop() error {
	d.out.WriteString(ansi.ShowCursor + exitAltScreen)
	if d.oldState == nil {
		return nil
	}
	return term.Restore(int(d.in.Fd()), d.oldState)
}

func (d *ANSIDriver) Size() (int, int) {
	w, h, err := term.GetSize(int(d.out.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

// Render buffers content's writes; unlike Flush it performs no I/O,
// matching the "render then flush" split the wire protocol exposes.
func (d *ANSIDriver) Render(content json.RawMessage) error {
	var p renderPayload
	if err := json.Unmarshal(content, &p); err != nil {
		return fmt.Errorf("terminal: decode render payload: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.WriteString(ansi.CursorPosition(p.X+1, p.Y+1))
	d.buf.WriteString(p.Write)
	return nil
}

func (d *ANSIDriver) Flush() error {
	d.mu.Lock()
	pending := d.buf.Bytes()
	d.buf.Reset()
	d.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	_, err := d.out.Write(pending)
	return err
}
