package signature

import (
	"bytes"
)

// Find returns the lowest offset in haystack at which pattern matches under
// mask. An empty pattern matches at offset 0. Find reports false when the
// haystack is shorter than the pattern or the pattern and mask lengths
// differ.
func Find(haystack, pattern []byte, mask Mask) (int, bool) {
	n := len(pattern)
	if n != len(mask) {
		return 0, false
	}
	if n == 0 {
		return 0, true
	}
	last := len(haystack) - n
	if last < 0 {
		return 0, false
	}

	// Anchor on the first exact byte so candidates can be skipped with
	// IndexByte. A mask with no exact byte matches at 0.
	anchor := -1
	for j := range mask {
		if mask.IsExact(j) {
			anchor = j
			break
		}
	}
	if anchor < 0 {
		return 0, true
	}

	for i := 0; i <= last; {
		k := bytes.IndexByte(haystack[i+anchor:last+anchor+1], pattern[anchor])
		if k < 0 {
			return 0, false
		}
		i += k
		if matchAt(haystack[i:i+n], pattern, mask, anchor+1) {
			return i, true
		}
		i++
	}
	return 0, false
}

// matchAt compares window against pattern from position from onwards.
func matchAt(window, pattern []byte, mask Mask, from int) bool {
	for j := from; j < len(pattern); j++ {
		if mask.IsExact(j) && window[j] != pattern[j] {
			return false
		}
	}
	return true
}
