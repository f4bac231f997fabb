// Package proc reads process information from the Linux /proc filesystem.
package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Self selects the calling process in functions that take a pid.
const Self = 0

// Mapping is one line of /proc/<pid>/maps.
type Mapping struct {
	Start  uint64
	End    uint64
	Perms  string
	Offset uint64
	Dev    string
	Inode  uint64
	Path   string
}

// Readable reports whether the mapping has read permission.
func (m Mapping) Readable() bool {
	return len(m.Perms) > 0 && m.Perms[0] == 'r'
}

// FileBacked reports whether the mapping has an absolute file path, as
// opposed to anonymous memory or a pseudo-path like "[stack]".
func (m Mapping) FileBacked() bool {
	return strings.HasPrefix(m.Path, "/")
}

// Deleted reports whether the backing file was removed after it was mapped.
func (m Mapping) Deleted() bool {
	return strings.HasSuffix(m.Path, " (deleted)")
}

func procDir(pid int) string {
	if pid == Self {
		return "/proc/self"
	}
	return "/proc/" + strconv.Itoa(pid)
}

// ReadMaps reads and parses /proc/<pid>/maps. Pass Self for the calling
// process. Mappings are returned in ascending address order, as the kernel
// reports them.
func ReadMaps(pid int) ([]Mapping, error) {
	path := procDir(pid) + "/maps"
	//nolint:gosec // G304: path is built from the /proc prefix and a numeric pid.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	mappings, err := ParseMaps(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return mappings, nil
}

// ParseMaps parses the /proc/<pid>/maps format:
//
//	address           perms offset  dev   inode   pathname
//	555555554000-555555556000 r-xp 00000000 08:01 123456 /path/to/binary
//
// Malformed lines are skipped.
func ParseMaps(r io.Reader) ([]Mapping, error) {
	var mappings []Mapping

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if m, ok := parseMapsLine(scanner.Text()); ok {
			mappings = append(mappings, m)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mappings, nil
}

func parseMapsLine(line string) (Mapping, bool) {
	// The pathname is everything after the fifth field and may contain spaces.
	fields := strings.SplitN(strings.TrimSpace(line), " ", 6)
	if len(fields) < 5 {
		return Mapping{}, false
	}

	start, end, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Mapping{}, false
	}

	var (
		m   Mapping
		err error
	)
	if m.Start, err = strconv.ParseUint(start, 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.End, err = strconv.ParseUint(end, 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.Offset, err = strconv.ParseUint(fields[2], 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.Inode, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return Mapping{}, false
	}
	m.Perms = fields[1]
	m.Dev = fields[3]
	if len(fields) == 6 {
		m.Path = strings.TrimSpace(fields[5])
	}

	return m, true
}

// GetBinaryPath returns the path to the executable for the given PID.
// Pass Self for the calling process.
func GetBinaryPath(pid int) (string, error) {
	return os.Readlink(procDir(pid) + "/exe")
}
