package module

// Library is a shared object loaded into the process with Open. Once open it
// is visible to every walker until closed.
type Library struct {
	path   string
	handle uintptr
}

// Path returns the path or soname the library was opened with.
func (l *Library) Path() string {
	return l.path
}
