//go:build linux

package module

import (
	"debug/elf"
	"fmt"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/coral-mesh/sigscan/internal/errors"
	"github.com/coral-mesh/sigscan/internal/safe"
	"github.com/coral-mesh/sigscan/internal/sys/proc"
)

// Auxiliary vector keys, see getauxval(3).
const (
	atPhdr        = 3
	atPhnum       = 5
	atEntry       = 9
	atSysinfoEhdr = 33
)

const vdsoName = "linux-vdso.so.1"

// auxvWalker enumerates modules without calling into the dynamic loader.
// The main executable comes from the auxiliary vector, the vDSO from its
// in-memory ELF header, and every other object from /proc/self/maps.
type auxvWalker struct {
	logger zerolog.Logger
}

func newAuxvWalker(logger zerolog.Logger) *auxvWalker {
	return &auxvWalker{
		logger: logger.With().Str("walker", string(WalkerAuxv)).Logger(),
	}
}

func (w *auxvWalker) Walk(yield func(Info) bool) error {
	pairs, err := unix.Auxv()
	if err != nil {
		return fmt.Errorf("failed to read auxiliary vector: %w", err)
	}
	auxv := make(map[uintptr]uintptr, len(pairs))
	for _, kv := range pairs {
		auxv[kv[0]] = kv[1]
	}

	if exe, ok := w.executable(auxv); ok && !yield(exe) {
		return nil
	}
	if vdso, ok := vdsoModule(auxv[atSysinfoEhdr]); ok && !yield(vdso) {
		return nil
	}
	return w.sharedObjects(yield)
}

func (w *auxvWalker) executable(auxv map[uintptr]uintptr) (Info, bool) {
	phdr, phnum := auxv[atPhdr], auxv[atPhnum]
	if phdr == 0 || phnum == 0 {
		return Info{}, false
	}
	n, clamped := safe.UintptrToInt(phnum)
	if clamped {
		return Info{}, false
	}
	segs := readSegments(phdr, n)

	var bias uintptr
	if s, ok := findSegment(segs, elf.PT_PHDR); ok {
		bias = phdr - uintptr(s.vaddr)
	} else if entry := auxv[atEntry]; entry != 0 {
		fileEntry, err := w.executableEntry()
		if err != nil {
			w.logger.Debug().Err(err).Msg("Cannot derive load bias of main executable")
		} else {
			bias = entry - uintptr(fileEntry)
		}
	}

	return Info{Base: bias, Size: extent(segs)}, true
}

func (w *auxvWalker) executableEntry() (uint64, error) {
	path, err := proc.GetBinaryPath(proc.Self)
	if err != nil {
		return 0, err
	}
	f, err := elf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open executable: %w", err)
	}
	defer errors.DeferClose(w.logger, f, "failed to close executable")
	return f.Entry, nil
}

// vdsoModule describes the vDSO from the ELF image the kernel mapped at addr.
func vdsoModule(addr uintptr) (Info, bool) {
	if addr == 0 {
		return Info{}, false
	}
	//nolint:govet // addr comes from AT_SYSINFO_EHDR.
	ident := unsafe.Slice((*byte)(unsafe.Pointer(addr)), elf.EI_NIDENT)
	if string(ident[:len(elf.ELFMAG)]) != elf.ELFMAG {
		return Info{}, false
	}

	var (
		phoff uint64
		phnum int
	)
	switch elf.Class(ident[elf.EI_CLASS]) {
	case elf.ELFCLASS64:
		h := (*elf.Header64)(unsafe.Pointer(addr)) //nolint:govet
		phoff, phnum = h.Phoff, int(h.Phnum)
	case elf.ELFCLASS32:
		h := (*elf.Header32)(unsafe.Pointer(addr)) //nolint:govet
		phoff, phnum = uint64(h.Phoff), int(h.Phnum)
	default:
		return Info{}, false
	}

	segs := readSegments(addr+uintptr(phoff), phnum)
	load, ok := findSegment(segs, elf.PT_LOAD)
	if !ok {
		return Info{}, false
	}

	return Info{
		Name: vdsoName,
		Base: addr - uintptr(load.vaddr-load.off),
		Size: extent(segs),
	}, true
}

// sharedObjects yields every ELF shared object mapped from a file, in
// ascending address order. Objects are identified by their offset-zero
// mapping and sized from the program headers on disk.
func (w *auxvWalker) sharedObjects(yield func(Info) bool) error {
	mappings, err := proc.ReadMaps(proc.Self)
	if err != nil {
		return err
	}
	exe, err := proc.GetBinaryPath(proc.Self)
	if err != nil {
		w.logger.Debug().Err(err).Msg("Cannot resolve executable path")
	}

	for _, m := range objectMappings(mappings, exe) {
		info, err := w.sharedObject(m)
		if err != nil {
			w.logger.Trace().Err(err).Str("path", m.Path).Msg("Skipping mapping")
			continue
		}
		if !yield(info) {
			return nil
		}
	}
	return nil
}

// objectMappings picks the first readable offset-zero mapping of every file
// other than exe. That mapping holds the ELF header, so its start locates the
// object's first PT_LOAD segment.
func objectMappings(mappings []proc.Mapping, exe string) []proc.Mapping {
	var out []proc.Mapping
	seen := make(map[string]bool)
	for _, m := range mappings {
		if !m.FileBacked() || m.Deleted() || !m.Readable() || m.Offset != 0 {
			continue
		}
		if m.Path == exe || seen[m.Path] {
			continue
		}
		seen[m.Path] = true
		out = append(out, m)
	}
	return out
}

func (w *auxvWalker) sharedObject(m proc.Mapping) (Info, error) {
	f, err := elf.Open(m.Path)
	if err != nil {
		return Info{}, err
	}
	defer errors.DeferClose(w.logger, f, "failed to close shared object")

	if f.Type != elf.ET_DYN {
		return Info{}, fmt.Errorf("%s is %s, not a shared object", m.Path, f.Type)
	}

	segs := make([]segment, len(f.Progs))
	for i, p := range f.Progs {
		segs[i] = segment{typ: uint32(p.Type), off: p.Off, vaddr: p.Vaddr, memsz: p.Memsz}
	}
	load, ok := findSegment(segs, elf.PT_LOAD)
	if !ok {
		return Info{}, fmt.Errorf("%s has no loadable segment", m.Path)
	}

	start, clamped := safe.Uint64ToUintptr(m.Start)
	if clamped {
		return Info{}, fmt.Errorf("mapping start %#x overflows uintptr", m.Start)
	}
	pageMask := uint64(unix.Getpagesize() - 1)

	return Info{
		Name: m.Path,
		Base: start - uintptr(load.vaddr&^pageMask),
		Size: extent(segs),
	}, nil
}

// readSegments copies n program headers of the process's native ELF class
// starting at addr.
func readSegments(addr uintptr, n int) []segment {
	segs := make([]segment, n)
	if unsafe.Sizeof(uintptr(0)) == 8 {
		//nolint:govet // addr points into a mapped ELF image.
		for i, p := range unsafe.Slice((*elf.Prog64)(unsafe.Pointer(addr)), n) {
			segs[i] = segment{typ: p.Type, off: p.Off, vaddr: p.Vaddr, memsz: p.Memsz}
		}
		return segs
	}
	//nolint:govet // addr points into a mapped ELF image.
	for i, p := range unsafe.Slice((*elf.Prog32)(unsafe.Pointer(addr)), n) {
		segs[i] = segment{typ: p.Type, off: uint64(p.Off), vaddr: uint64(p.Vaddr), memsz: uint64(p.Memsz)}
	}
	return segs
}

// findSegment returns the first segment of type typ.
func findSegment(segs []segment, typ elf.ProgType) (segment, bool) {
	for _, s := range segs {
		if s.typ == uint32(typ) {
			return s, true
		}
	}
	return segment{}, false
}
