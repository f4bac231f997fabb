// Package module resolves modules (the executable, shared libraries and the
// vDSO) mapped into the current process.
//
// A Locator walks the modules in the order the dynamic loader reports them
// and returns the first one whose name contains a query string. The result
// is an Info: the load bias of the module and an upper bound on its mapped
// extent, computed from its program headers as max(p_vaddr + p_memsz).
//
// Matching is by substring and first match wins, so a query such as "libc"
// can match "libcrypto.so" when that library was loaded earlier. Use a query
// specific enough for the process you run in.
//
// Nothing returned by this package keeps a module loaded. An Info describes
// the process at the instant of the lookup; the caller must make sure the
// module stays mapped while it reads from it.
package module
