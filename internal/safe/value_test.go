package safe

import (
	"math"
	"testing"
)

func TestUint64ToUintptr(t *testing.T) {
	tests := []struct {
		name            string
		input           uint64
		expectedValue   uintptr
		expectedClamped bool
	}{
		{
			name:            "zero value",
			input:           0,
			expectedValue:   0,
			expectedClamped: false,
		},
		{
			name:            "small value",
			input:           0x1000,
			expectedValue:   0x1000,
			expectedClamped: false,
		},
		{
			name:            "max uintptr",
			input:           uint64(^uintptr(0)),
			expectedValue:   ^uintptr(0),
			expectedClamped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, clamped := Uint64ToUintptr(tt.input)
			if value != tt.expectedValue {
				t.Errorf("Uint64ToUintptr(%d) value = %d, expected %d", tt.input, value, tt.expectedValue)
			}
			if clamped != tt.expectedClamped {
				t.Errorf("Uint64ToUintptr(%d) clamped = %v, expected %v", tt.input, clamped, tt.expectedClamped)
			}
		})
	}
}

func TestUintptrToInt(t *testing.T) {
	tests := []struct {
		name            string
		input           uintptr
		expectedValue   int
		expectedClamped bool
	}{
		{
			name:            "zero value",
			input:           0,
			expectedValue:   0,
			expectedClamped: false,
		},
		{
			name:            "max int",
			input:           uintptr(math.MaxInt),
			expectedValue:   math.MaxInt,
			expectedClamped: false,
		},
		{
			name:            "max uintptr (overflow)",
			input:           ^uintptr(0),
			expectedValue:   math.MaxInt,
			expectedClamped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, clamped := UintptrToInt(tt.input)
			if value != tt.expectedValue {
				t.Errorf("UintptrToInt(%d) value = %d, expected %d", tt.input, value, tt.expectedValue)
			}
			if clamped != tt.expectedClamped {
				t.Errorf("UintptrToInt(%d) clamped = %v, expected %v", tt.input, clamped, tt.expectedClamped)
			}
		})
	}
}

func TestAddOffset(t *testing.T) {
	tests := []struct {
		name   string
		base   uintptr
		offset int
		want   uintptr
		wantOK bool
	}{
		{name: "positive offset", base: 0x1000, offset: 0x10, want: 0x1010, wantOK: true},
		{name: "negative offset", base: 0x1000, offset: -0x10, want: 0xff0, wantOK: true},
		{name: "zero offset", base: 0x1000, offset: 0, want: 0x1000, wantOK: true},
		{name: "underflow", base: 0x10, offset: -0x20, want: 0, wantOK: false},
		{name: "overflow", base: ^uintptr(0), offset: 1, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AddOffset(tt.base, tt.offset)
			if ok != tt.wantOK {
				t.Fatalf("AddOffset(%#x, %d) ok = %v, want %v", tt.base, tt.offset, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("AddOffset(%#x, %d) = %#x, want %#x", tt.base, tt.offset, got, tt.want)
			}
		})
	}
}
