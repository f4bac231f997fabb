// Package safe provides checked conversions and bounded file reads.
package safe

import (
	"math"
)

// Uint64ToUintptr converts a uint64 to uintptr, clamping to the largest
// uintptr value when the platform's pointers are narrower than 64 bits.
// Returns the converted value and whether clamping occurred.
func Uint64ToUintptr(val uint64) (uintptr, bool) {
	if uint64(^uintptr(0)) < val {
		return ^uintptr(0), true
	}
	return uintptr(val), false
}

// UintptrToInt converts a uintptr to int, clamping to math.MaxInt if overflow
// would occur.
// Returns the converted value and whether clamping occurred.
func UintptrToInt(val uintptr) (int, bool) {
	if uint64(val) > math.MaxInt {
		return math.MaxInt, true
	}
	return int(val), false
}

// AddOffset adds a signed offset to base, reporting false if the result
// wraps around the address space.
func AddOffset(base uintptr, offset int) (uintptr, bool) {
	if offset >= 0 {
		sum := base + uintptr(offset)
		return sum, sum >= base
	}
	neg := uintptr(-offset)
	if neg > base {
		return 0, false
	}
	return base - neg, true
}
