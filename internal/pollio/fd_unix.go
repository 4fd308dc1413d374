//go:build unix

package pollio

import (
	"io"
	"time"

	"golang.org/x/sys/unix"
)

type fdFile interface {
	io.Reader
	Fd() uintptr
}

// fdReader waits with poll(2) before every read so a blocking
// descriptor is only read once data (or hangup) is pending.
type fdReader struct {
	f  fdFile
	fd int32
}

func newFDReader(f fdFile) (*fdReader, bool) {
	return &fdReader{f: f, fd: int32(f.Fd())}, true
}

func (r *fdReader) Read(p []byte) (int, error) {
	return r.f.Read(p)
}

func (r *fdReader) ReadTimeout(p []byte, d time.Duration) (int, error) {
	ms := int(d / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	fds := []unix.PollFd{{Fd: r.fd, Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err == unix.EINTR {
		return 0, ErrIdle
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrIdle
	}
	// POLLIN, POLLHUP and POLLERR all mean Read will not block.
	return r.f.Read(p)
}
