//go:build !unix

package dynarec

import "errors"

const arenaSupported = false

var errNoArena = errors.New("translation arena requires a unix host")

func mapArena(int) ([]byte, error) {
	return nil, errNoArena
}

func unmapArena([]byte) error {
	return errNoArena
}
