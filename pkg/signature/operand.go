package signature

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

var ErrNoOperand = errors.New("instruction has no relative operand")

// Operand computes the offset an instruction references from the offset of
// the instruction itself within image.
type Operand func(image []byte, offset int) (int, error)

// Rel32 returns an Operand for an instruction of instrLen bytes carrying a
// little-endian 32-bit displacement at operandOffset. The target is the end
// of the instruction plus the displacement.
//
// For "mov rax, [rip+disp32]" (48 8B 05 xx xx xx xx) use Rel32(3, 7).
func Rel32(operandOffset, instrLen int) Operand {
	return func(image []byte, offset int) (int, error) {
		start := offset + operandOffset
		if offset < 0 || operandOffset < 0 || start+4 > len(image) {
			return 0, fmt.Errorf("%w: displacement at %#x outside image", ErrNoOperand, start)
		}
		disp := int32(binary.LittleEndian.Uint32(image[start : start+4]))
		return offset + instrLen + int(disp), nil
	}
}

// RIPRelative decodes the x86-64 instruction at offset and returns the
// offset referenced by its RIP-relative memory operand or relative branch
// target.
func RIPRelative(image []byte, offset int) (int, error) {
	if offset < 0 || offset >= len(image) {
		return 0, fmt.Errorf("%w: offset %#x outside image", ErrNoOperand, offset)
	}
	inst, err := x86asm.Decode(image[offset:], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to decode instruction at %#x: %w", offset, err)
	}

	next := offset + inst.Len
	for _, arg := range inst.Args {
		switch a := arg.(type) {
		case x86asm.Mem:
			if a.Base == x86asm.RIP {
				return next + int(a.Disp), nil
			}
		case x86asm.Rel:
			return next + int(a), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNoOperand, x86asm.IntelSyntax(inst, 0, nil))
}
