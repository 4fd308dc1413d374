//go:build !unix

package pollio

import "io"

type fdFile interface {
	io.Reader
	Fd() uintptr
}

func newFDReader(fdFile) (Reader, bool) { return nil, false }
