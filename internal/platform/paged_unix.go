// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package platform

import "golang.org/x/sys/unix"

// AllocatePage asks the OS for one anonymous, zero-filled page-sized
// mapping, the same way the original interpreter's Page::AllocateContiguous
// calls mmap(MAP_PRIVATE|MAP_ANONYMOUS). The returned slice must be released
// with FreePage; it must not be grown, shrunk, or retained past that call.
func AllocatePage() ([]byte, error) {
	return unix.Mmap(-1, 0, PageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

// FreePage returns a page obtained from AllocatePage to the OS.
func FreePage(page []byte) error {
	return unix.Munmap(page)
}
