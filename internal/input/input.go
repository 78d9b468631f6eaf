// Package input implements the InputSource collaborator: it turns raw
// stdin bytes and SIGWINCH notifications into the typed key and resize
// events the EventBus publishes; mouse reports are not decoded. Byte-level
// decoding is deliberately
// small — the exact keymap is an external, swappable concern per
// spec.md's scope; this is one reasonable implementation of it.
package input

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/ccanvas/ccanvas/internal/event"
	"github.com/ccanvas/ccanvas/internal/logger"
	"github.com/ccanvas/ccanvas/internal/wire"
)

// Source reads os.Stdin and SIGWINCH, publishing the events it decodes.
type Source struct {
	in      *bufio.Reader
	publish func(event.Event)
}

// New wraps stdin as an input Source. publish is called once per decoded
// event — typically a ccanvas EventBus's Send method.
func New(stdin *os.File, publish func(event.Event)) *Source {
	return &Source{in: bufio.NewReader(stdin), publish: publish}
}

// Run blocks reading stdin and watching for SIGWINCH until ctx is done.
func (s *Source) Run(ctx context.Context) {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	keys := make(chan struct{})
	go s.readLoop(keys)

	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			s.publishResize()
		case _, ok := <-keys:
			// readLoop publishes directly and never sends; keys only
			// closes when stdin ends, after which SIGWINCH is still
			// watched until ctx is done.
			if !ok {
				keys = nil
			}
		}
	}
}

func (s *Source) publishResize() {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		logger.Log.Warn("input: ioctl winsize failed", "error", err)
		return
	}
	s.publish(event.ScreenResize(int(ws.Col), int(ws.Row)))
}

func (s *Source) readLoop(done chan<- struct{}) {
	defer close(done)
	for {
		b, err := s.in.ReadByte()
		if err != nil {
			return
		}
		s.decode(b)
	}
}

func (s *Source) decode(b byte) {
	switch {
	case b == 0x1b:
		s.decodeEscape()
	case b == '\r' || b == '\n':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyEnter, Modifier: wire.ModNone}))
	case b == '\t':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyTab, Modifier: wire.ModNone}))
	case b == 0x7f:
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyBackspace, Modifier: wire.ModNone}))
	case b >= 0x01 && b <= 0x1a:
		// Ctrl+letter: 0x01 == Ctrl+A, etc.
		letter := string(rune('a' + b - 1))
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyChar, Value: letter, Modifier: wire.ModCtrl}))
	case b >= 0x20 && b < 0x7f:
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyChar, Value: string(rune(b)), Modifier: wire.ModNone}))
	default:
		// Unmapped control byte or start of a multi-byte UTF-8 rune this
		// minimal decoder doesn't reassemble; dropped.
	}
}

func (s *Source) decodeEscape() {
	next, err := s.in.ReadByte()
	if err != nil {
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyEsc, Modifier: wire.ModNone}))
		return
	}
	if next != '[' {
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyEsc, Modifier: wire.ModNone}))
		return
	}
	code, err := s.in.ReadByte()
	if err != nil {
		return
	}
	switch code {
	case 'A':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyUp, Modifier: wire.ModNone}))
	case 'B':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyDown, Modifier: wire.ModNone}))
	case 'C':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyRight, Modifier: wire.ModNone}))
	case 'D':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyLeft, Modifier: wire.ModNone}))
	case 'H':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyHome, Modifier: wire.ModNone}))
	case 'F':
		s.publish(event.KeyPress(wire.KeyData{Code: wire.KeyEnd, Modifier: wire.ModNone}))
	default:
		// Multi-byte CSI sequences (page up/down, function keys, SGR
		// mouse reports) aren't decoded by this minimal reader.
	}
}
