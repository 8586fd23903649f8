// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package blockdev

import "os"

// probeCapacity falls back to the plain file size outside Linux, where no
// portable raw-block ioctl exists; real device-special files are a
// Linux/loopback concern for this backend.
func probeCapacity(f *os.File, path string) (uint32, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return uint32(fi.Size() / SectorSize), nil
}
