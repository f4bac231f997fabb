//go:build linux

package module

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/sigscan/internal/sys/proc"
)

func walkersUnderTest(t *testing.T) map[WalkerKind]Walker {
	t.Helper()

	walkers := map[WalkerKind]Walker{
		WalkerAuxv: newAuxvWalker(zerolog.Nop()),
	}
	if w, err := newLoaderWalker(DefaultLibraries); err == nil {
		walkers[WalkerLoader] = w
	} else {
		t.Logf("loader walker unavailable: %v", err)
	}
	return walkers
}

func TestWalkersReportMainExecutableFirst(t *testing.T) {
	for kind, w := range walkersUnderTest(t) {
		t.Run(string(kind), func(t *testing.T) {
			var modules []Info
			require.NoError(t, w.Walk(func(m Info) bool {
				modules = append(modules, m)
				return true
			}))

			require.NotEmpty(t, modules)
			assert.Empty(t, modules[0].Name)
			assert.NotZero(t, modules[0].Size)
		})
	}
}

func TestWalkersStopWhenYieldReturnsFalse(t *testing.T) {
	for kind, w := range walkersUnderTest(t) {
		t.Run(string(kind), func(t *testing.T) {
			calls := 0
			require.NoError(t, w.Walk(func(Info) bool {
				calls++
				return false
			}))
			assert.Equal(t, 1, calls)
		})
	}
}

func TestWalkersFindNothingForUnloadedName(t *testing.T) {
	for kind, w := range walkersUnderTest(t) {
		t.Run(string(kind), func(t *testing.T) {
			loc := NewLocator(zerolog.Nop(), WithWalker(w))
			m, ok := loc.Find("definitely-not-loaded-xyz")
			assert.False(t, ok)
			assert.Equal(t, Info{}, m)
		})
	}
}

func TestAuxvWalkerVDSOImageIsELF(t *testing.T) {
	loc := NewLocator(zerolog.Nop(), WithWalker(newAuxvWalker(zerolog.Nop())))

	m, ok := loc.Find(vdsoName)
	if !ok {
		t.Skip("no vDSO mapped")
	}
	require.NotZero(t, m.Base)

	m.Borrow(func(image []byte) {
		require.GreaterOrEqual(t, len(image), 4)
		assert.Equal(t, []byte("\x7fELF"), image[:4])
	})
}

func TestLoaderWalkerRecoversYieldPanic(t *testing.T) {
	w, err := newLoaderWalker(DefaultLibraries)
	if err != nil {
		t.Skipf("loader walker unavailable: %v", err)
	}

	assert.PanicsWithValue(t, "stop", func() {
		_ = w.Walk(func(Info) bool {
			panic("stop")
		})
	})

	// The walker stays usable after a recovered panic.
	calls := 0
	require.NoError(t, w.Walk(func(Info) bool {
		calls++
		return true
	}))
	assert.Positive(t, calls)
}

func TestObjectMappings(t *testing.T) {
	const maps = `555555554000-555555556000 r--p 00000000 08:01 1 /usr/bin/app
7ffff7d00000-7ffff7d01000 ---p 00000000 08:01 2 /usr/lib/libguard.so
7ffff7d01000-7ffff7d02000 r--p 00001000 08:01 2 /usr/lib/libguard.so
7ffff7dd3000-7ffff7dfc000 r--p 00000000 08:01 3 /usr/lib/libc.so.6
7ffff7dfc000-7ffff7f00000 r-xp 00029000 08:01 3 /usr/lib/libc.so.6
7ffff7f10000-7ffff7f11000 r--p 00000000 08:01 3 /usr/lib/libc.so.6
7ffff7f20000-7ffff7f21000 r--p 00000000 08:01 4 /tmp/old.so (deleted)
7ffff7fc5000-7ffff7fc7000 r-xp 00000000 00:00 0 [vdso]
`
	mappings, err := proc.ParseMaps(strings.NewReader(maps))
	require.NoError(t, err)

	got := objectMappings(mappings, "/usr/bin/app")
	require.Len(t, got, 1)
	assert.Equal(t, "/usr/lib/libc.so.6", got[0].Path)
	assert.Equal(t, uint64(0x7ffff7dd3000), got[0].Start)
}
