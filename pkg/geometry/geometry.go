// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geometry partitions a flat LBA space into N isolated mirror
// slices and maps a logical sector to its N physical copies. It holds no
// state beyond what is derived once from the device's reported capacity,
// following spec.md §9's requirement that stride be stored on the owning
// value rather than mutated in a package-level constant.
package geometry

import "errors"

// Mirrors is the fixed mirror count N this system always replicates to.
const Mirrors = 3

// ErrParam is returned when the device is too small to host Mirrors
// non-empty mirror slices.
var ErrParam = errors.New("geometry: device too small for mirror count")

// Geometry is the derived RAID-like layout for a device of a given
// capacity: Mirrors disjoint slices of Stride sectors each.
type Geometry struct {
	TotalSectors uint32
	Stride       uint32
}

// New computes the mirror geometry for a device reporting totalSectors.
// It fails with ErrParam when stride would be zero.
func New(totalSectors uint32) (Geometry, error) {
	stride := totalSectors / Mirrors
	if stride == 0 {
		return Geometry{}, ErrParam
	}
	return Geometry{TotalSectors: totalSectors, Stride: stride}, nil
}

// Physical maps logical sector l within mirror i to its physical LBA.
func (g Geometry) Physical(mirror int, l uint32) uint32 {
	return l + uint32(mirror)*g.Stride
}

// InSlice reports whether logical sector l lies within mirror i's slice,
// i.e. whether l < Stride — true for every mirror simultaneously since all
// slices have the same width.
func (g Geometry) InSlice(l uint32) bool {
	return l < g.Stride
}

// SupersectorLBA returns the physical LBA of the supersector copy for
// mirror i (logical sector 0 of that slice).
func (g Geometry) SupersectorLBA(mirror int) uint32 {
	return g.Physical(mirror, 0)
}
