//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package terminal

import "errors"

type state struct{}

var errUnsupported = errors.New("raw mode is not supported on this platform")

func getState(int) (*state, error) { return nil, errUnsupported }

func setState(int, *state) error { return errUnsupported }

func makeRaw(st *state) *state { return st }

func (st *state) flags() (echo, canonical, isig bool) { return false, false, false }
