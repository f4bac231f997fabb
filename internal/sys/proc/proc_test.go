package proc

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `555555554000-555555556000 r--p 00000000 08:01 123456                     /usr/bin/app
555555556000-55555555a000 r-xp 00002000 08:01 123456                     /usr/bin/app
55555555b000-55555557c000 rw-p 00000000 00:00 0                          [heap]
7ffff7dd3000-7ffff7dfc000 r--p 00000000 08:01 654321                     /usr/lib/x86_64-linux-gnu/libc.so.6
7ffff7e00000-7ffff7e01000 r--p 00000000 08:01 777                        /tmp/my lib.so (deleted)
7ffff7fc1000-7ffff7fc5000 r--p 00000000 00:00 0                          [vvar]
7ffff7fc5000-7ffff7fc7000 r-xp 00000000 00:00 0                          [vdso]
7ffff7fd0000-7ffff7fd1000 rw-p 00000000 00:00 0
not a maps line
`

func TestParseMaps(t *testing.T) {
	mappings, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, mappings, 8)

	first := mappings[0]
	assert.Equal(t, uint64(0x555555554000), first.Start)
	assert.Equal(t, uint64(0x555555556000), first.End)
	assert.Equal(t, "r--p", first.Perms)
	assert.Equal(t, uint64(0), first.Offset)
	assert.Equal(t, "08:01", first.Dev)
	assert.Equal(t, uint64(123456), first.Inode)
	assert.Equal(t, "/usr/bin/app", first.Path)
	assert.True(t, first.Readable())
	assert.True(t, first.FileBacked())

	assert.Equal(t, uint64(0x2000), mappings[1].Offset)

	heap := mappings[2]
	assert.Equal(t, "[heap]", heap.Path)
	assert.False(t, heap.FileBacked())

	spaced := mappings[4]
	assert.Equal(t, "/tmp/my lib.so (deleted)", spaced.Path)
	assert.True(t, spaced.Deleted())

	anon := mappings[7]
	assert.Empty(t, anon.Path)
	assert.False(t, anon.FileBacked())
}

func TestReadMapsSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("/proc is only available on Linux")
	}

	mappings, err := ReadMaps(Self)
	require.NoError(t, err)
	require.NotEmpty(t, mappings)

	for i := 1; i < len(mappings); i++ {
		assert.LessOrEqual(t, mappings[i-1].Start, mappings[i].Start, "mappings should be address ordered")
	}
}

func TestGetBinaryPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("/proc is only available on Linux")
	}

	path, err := GetBinaryPath(Self)
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	assert.Equal(t, exe, path)
}
