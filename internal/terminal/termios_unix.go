//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package terminal

import "golang.org/x/sys/unix"

type state struct {
	termios unix.Termios
}

func getState(fd int) (*state, error) {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	return &state{termios: *t}, nil
}

func setState(fd int, st *state) error {
	t := st.termios
	return unix.IoctlSetTermios(fd, ioctlSetTermios, &t)
}

// makeRaw clears echo and canonical input, keeps ISIG, and keeps
// output processing so "\n" still returns the carriage.
func makeRaw(st *state) *state {
	raw := *st
	t := &raw.termios
	t.Lflag &^= unix.ECHO | unix.ICANON
	t.Lflag |= unix.ISIG
	t.Oflag |= unix.OPOST
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return &raw
}

// flags reports the echo and canonical bits, for comparisons.
func (st *state) flags() (echo, canonical, isig bool) {
	l := st.termios.Lflag
	return l&unix.ECHO != 0, l&unix.ICANON != 0, l&unix.ISIG != 0
}
