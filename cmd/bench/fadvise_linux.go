//go:build linux

package main

import "golang.org/x/sys/unix"

// fadviseSequential hints to the kernel that the mapped key file will be
// read sequentially, enabling aggressive readahead. Failure is ignored; the
// hint is advisory.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
