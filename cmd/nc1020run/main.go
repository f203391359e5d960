// nc1020run is a minimal terminal demo host for the NC1020 core. It is a
// debugging convenience, not a framebuffer blitter: it drives
// machine.Machine from a raw keyboard and prints a textual status line
// once per time slice, grounded on the teacher's debugger/colorterm
// terminal-driving conventions.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Project-Muteki/nc1020/halfs"
	"github.com/Project-Muteki/nc1020/jgwav"
	"github.com/Project-Muteki/nc1020/logger"
	"github.com/Project-Muteki/nc1020/machine"
)

// keymap maps a handful of terminal keys to NC1020 key ids. It is nowhere
// near exhaustive; it exists to exercise SetKey from a real keyboard, not
// to be a usable input method.
var keymap = map[rune]uint8{
	'0': 0x00, '1': 0x01, '2': 0x02, '3': 0x03,
	'4': 0x04, '5': 0x05, '6': 0x06, '7': 0x07,
	'\r': 0x08, '\n': 0x08,
	'p': 0x0F, // power / sleep
}

func main() {
	dir := flag.String("image", "", "directory containing the NC1020 ROM/NOR/BBS images")
	ms := flag.Uint("slice", 20, "time slice length in milliseconds")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "nc1020run: -image is required")
		os.Exit(1)
	}

	provider, err := halfs.Open(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nc1020run: %v\n", err)
		os.Exit(1)
	}
	defer provider.Close()

	m, err := machine.Initialize(provider, machine.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "nc1020run: %v\n", err)
		os.Exit(1)
	}
	logger.Log("nc1020run", "machine initialised, entering run loop")

	wavCount := 0
	m.Ports().OnWavReady = func(samples []byte) {
		wavCount++
		name := fmt.Sprintf("jgwav-%03d.wav", wavCount)
		f, err := os.Create(name)
		if err != nil {
			logger.Logf("nc1020run", "could not create %s: %v", name, err)
			return
		}
		defer f.Close()
		if err := jgwav.Export(f, samples); err != nil {
			logger.Logf("nc1020run", "could not export %s: %v", name, err)
			return
		}
		logger.Logf("nc1020run", "exported %s", name)
	}

	term, err := newTerminal(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nc1020run: %v\n", err)
		os.Exit(1)
	}
	if err := term.rawMode(); err != nil {
		fmt.Fprintf(os.Stderr, "nc1020run: %v\n", err)
		os.Exit(1)
	}
	defer term.restore()

	in := bufio.NewReader(os.Stdin)
	lcd := make([]byte, 1600)

	for {
		r, _, err := in.ReadRune()
		if err == nil {
			if keyID, ok := keymap[r]; ok {
				m.SetKey(keyID, true)
				m.RunTimeSlice(uint32(*ms), false)
				m.SetKey(keyID, false)
			}
			if r == 'q' {
				return
			}
		}

		m.RunTimeSlice(uint32(*ms), false)

		regs := m.Registers()
		hasFrame := m.CopyLCDBuffer(lcd)
		fmt.Fprintf(os.Stdout, "\rPC=%04X A=%02X X=%02X Y=%02X SP=%02X P=%02X frame=%v   ",
			regs.PC, regs.A, regs.X, regs.Y, regs.SP, regs.P, hasFrame)

		time.Sleep(time.Duration(*ms) * time.Millisecond)
	}
}
