package module

import (
	"fmt"
	"unsafe"

	"github.com/coral-mesh/sigscan/internal/safe"
)

// Info describes one module mapped into the current process.
type Info struct {
	// Name is the path reported by the loader. It is empty for the main
	// executable.
	Name string
	// Base is the load bias: the difference between the module's runtime
	// addresses and the virtual addresses in its program headers.
	Base uintptr
	// Size is max(p_vaddr + p_memsz) over all program headers. It is an
	// upper bound on the mapped extent and may cover unmapped gaps.
	Size uintptr
}

// End returns the first address past the module's extent.
func (m Info) End() uintptr {
	return m.Base + m.Size
}

// DisplayName returns Name, or "<main>" for the main executable.
func (m Info) DisplayName() string {
	if m.Name == "" {
		return "<main>"
	}
	return m.Name
}

func (m Info) String() string {
	return fmt.Sprintf("%s [%#x-%#x]", m.DisplayName(), m.Base, m.End())
}

// Mapped reports whether Borrow can hand out the module image. A module with
// a zero Base, such as a non-PIE main executable whose load bias is 0, is not
// addressable this way.
func (m Info) Mapped() bool {
	return m.Base != 0 && m.Size != 0
}

// Borrow calls fn with the module image, Base through Base+Size, as a byte
// slice aliasing live memory of the current process.
//
// The slice is valid only while fn runs. It must not be written to or
// retained. Nothing verifies that the range is mapped and readable: the
// caller must keep the module loaded, and a scan reaching a gap between
// segments faults.
//
// When Mapped is false fn receives a nil slice. Base is a load bias rather
// than an address, so a non-PIE executable cannot be scanned through Borrow.
func (m Info) Borrow(fn func(image []byte)) {
	n, _ := safe.UintptrToInt(m.Size)
	if !m.Mapped() || n == 0 {
		fn(nil)
		return
	}
	//nolint:govet // Base is an address owned by the dynamic loader, not the Go heap.
	fn(unsafe.Slice((*byte)(unsafe.Pointer(m.Base)), n))
}

// segment is the subset of an ELF program header needed to size a module.
type segment struct {
	typ   uint32
	off   uint64
	vaddr uint64
	memsz uint64
}

// extent returns max(vaddr + memsz) over segs.
func extent(segs []segment) uintptr {
	var end uint64
	for _, s := range segs {
		end = max(end, s.vaddr+s.memsz)
	}
	size, _ := safe.Uint64ToUintptr(end)
	return size
}
