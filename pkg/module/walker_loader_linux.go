//go:build linux && (amd64 || arm64)

package module

import (
	"debug/elf"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// dlPhdrInfo mirrors the leading fields of struct dl_phdr_info on 64-bit
// targets. The loader passes a size argument that covers at least these.
type dlPhdrInfo struct {
	addr  uintptr
	name  *byte
	phdr  *elf.Prog64
	phnum uint16
}

// loaderPass is the state of one dl_iterate_phdr call.
type loaderPass struct {
	yield   func(Info) bool
	stopped bool
	panic   any
}

var (
	// purego caps the number of callbacks per process, so a single
	// callback serves every pass and finds its pass through the data
	// argument.
	phdrCallbackOnce sync.Once
	phdrCallback     uintptr

	loaderPasses sync.Map // uintptr -> *loaderPass
	nextPassID   atomic.Uintptr
)

type loaderWalker struct {
	library      string
	iteratePhdrs func(callback, data uintptr) int32
}

func newLoaderWalker(libraries []string) (Walker, error) {
	var errs []error
	for _, lib := range libraries {
		handle, err := purego.Dlopen(lib, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		sym, err := purego.Dlsym(handle, "dl_iterate_phdr")
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", lib, err))
			continue
		}

		w := &loaderWalker{library: lib}
		purego.RegisterFunc(&w.iteratePhdrs, sym)
		phdrCallbackOnce.Do(func() {
			phdrCallback = purego.NewCallback(onPhdr)
		})
		return w, nil
	}

	return nil, fmt.Errorf("failed to resolve dl_iterate_phdr: %w", errors.Join(errs...))
}

func (w *loaderWalker) Walk(yield func(Info) bool) error {
	pass := &loaderPass{yield: yield}
	id := nextPassID.Add(1)
	loaderPasses.Store(id, pass)
	defer loaderPasses.Delete(id)

	w.iteratePhdrs(phdrCallback, id)

	if pass.panic != nil {
		panic(pass.panic)
	}
	return nil
}

// onPhdr is the dl_iterate_phdr callback. A non-zero return stops the walk.
func onPhdr(infoPtr, size, data uintptr) (ret int) {
	v, ok := loaderPasses.Load(data)
	if !ok {
		return 1
	}
	pass := v.(*loaderPass)
	if pass.stopped {
		return 1
	}

	//nolint:govet // infoPtr points to loader-owned memory valid for this call.
	info := (*dlPhdrInfo)(unsafe.Pointer(infoPtr))
	progs := unsafe.Slice(info.phdr, info.phnum)
	segs := make([]segment, len(progs))
	for i, p := range progs {
		segs[i] = segment{typ: p.Type, off: p.Off, vaddr: p.Vaddr, memsz: p.Memsz}
	}

	m := Info{
		Name: unix.BytePtrToString(info.name),
		Base: info.addr,
		Size: extent(segs),
	}

	// A panic must not unwind through the C frames of the loader.
	defer func() {
		if r := recover(); r != nil {
			pass.panic = r
			pass.stopped = true
			ret = 1
		}
	}()
	if !pass.yield(m) {
		pass.stopped = true
	}

	if pass.stopped {
		return 1
	}
	return 0
}

// Open loads a shared library into the process with dlopen so that walkers
// can find it. The library stays loaded until Close.
func Open(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Library{path: path, handle: handle}, nil
}

// Close releases the handle returned by dlopen. The loader unmaps the
// library once no handle references it.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}
