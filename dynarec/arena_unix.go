//go:build unix

package dynarec

import "golang.org/x/sys/unix"

const arenaSupported = true

func mapArena(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmapArena(mem []byte) error {
	return unix.Munmap(mem)
}
