// This file wraps github.com/pkg/term/termios the way the teacher's
// debugger/colorterm/easyterm package does: raw mode in, canonical mode
// restored on exit, nothing else.
package main

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

type terminal struct {
	f       *os.File
	canAttr unix.Termios
	rawAttr unix.Termios
}

func newTerminal(f *os.File) (*terminal, error) {
	t := &terminal{f: f}
	if err := termios.Tcgetattr(f.Fd(), &t.canAttr); err != nil {
		return nil, err
	}
	t.rawAttr = t.canAttr
	termios.Cfmakeraw(&t.rawAttr)
	return t, nil
}

func (t *terminal) rawMode() error {
	return termios.Tcsetattr(t.f.Fd(), termios.TCIFLUSH, &t.rawAttr)
}

func (t *terminal) restore() error {
	return termios.Tcsetattr(t.f.Fd(), termios.TCIFLUSH, &t.canAttr)
}
