package vm

import (
	"bufio"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is what the emulator needs from the host terminal: a
// non-blocking readiness check for the KBSR poll, blocking single-byte
// reads for the input traps, and buffered byte output for the output
// traps. IN's echo is composed from ReadKey and WriteByte.
type Console interface {
	KeyReady() bool
	ReadKey() (byte, error)
	WriteByte(b byte) error
	Flush() error
}

// Terminal is the Console backed by the process stdin/stdout.
type Terminal struct {
	in                     *os.File
	out                    *bufio.Writer
	originalTerminalConfig unix.Termios
	raw                    bool
}

func NewTerminal() *Terminal {
	return &Terminal{
		in:  os.Stdin,
		out: bufio.NewWriter(os.Stdout),
	}
}

// EnableRawMode configures the terminal for char-by-char input without
// echo. A no-op when stdin is not a tty, so piped images run unmodified.
func (t *Terminal) EnableRawMode() error {
	if !term.IsTerminal(int(t.in.Fd())) {
		return nil
	}

	if err := termios.Tcgetattr(t.in.Fd(), &t.originalTerminalConfig); err != nil {
		return err
	}

	newTermios := t.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &newTermios); err != nil {
		return err
	}

	t.raw = true
	return nil
}

// Restore puts the terminal back the way EnableRawMode found it. Safe to
// call more than once and from the signal handler.
func (t *Terminal) Restore() {
	t.out.Flush()

	if !t.raw {
		return
	}
	t.raw = false

	termios.Tcsetattr(t.in.Fd(), termios.TCSANOW, &t.originalTerminalConfig)
}

// KeyReady reports whether a key can be read without blocking. The check
// is a zero-timeout select on stdin.
func (t *Terminal) KeyReady() bool {
	fd := int(t.in.Fd())

	var readfds unix.FdSet
	readfds.Set(fd)
	timeout := unix.Timeval{}

	n, err := unix.Select(fd+1, &readfds, nil, nil, &timeout)
	if err != nil {
		return false
	}
	return n != 0
}

// ReadKey blocks until one byte arrives on stdin.
func (t *Terminal) ReadKey() (byte, error) {
	buf := make([]byte, 1)
	for {
		n, err := t.in.Read(buf)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return buf[0], nil
		}
	}
}

func (t *Terminal) WriteByte(b byte) error {
	return t.out.WriteByte(b)
}

func (t *Terminal) Flush() error {
	return t.out.Flush()
}
