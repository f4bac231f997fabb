package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantPattern []byte
		wantMask    string
		wantErr     bool
	}{
		{
			name:        "exact bytes",
			text:        "48 8B 05",
			wantPattern: []byte{0x48, 0x8B, 0x05},
			wantMask:    "xxx",
		},
		{
			name:        "double and single wildcards",
			text:        "E8 ?? ? ?? ?? c3",
			wantPattern: []byte{0xE8, 0, 0, 0, 0, 0xC3},
			wantMask:    "x????x",
		},
		{
			name:        "extra whitespace",
			text:        "  44\t88 \n 25  ",
			wantPattern: []byte{0x44, 0x88, 0x25},
			wantMask:    "xxx",
		},
		{
			name:        "empty",
			text:        "",
			wantPattern: []byte{},
			wantMask:    "",
		},
		{name: "single nibble", text: "48 8", wantErr: true},
		{name: "three digits", text: "488", wantErr: true},
		{name: "not hex", text: "48 ZZ", wantErr: true},
		{name: "prefixed", text: "0x48", wantErr: true},
		{name: "sign", text: "+F", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Parse(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPattern)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPattern, sig.Pattern())
			assert.Equal(t, tt.wantMask, sig.Mask().String())
		})
	}
}

func TestMustParse(t *testing.T) {
	assert.Panics(t, func() { MustParse("XY") })
	assert.Equal(t, "AA ?? BB", MustParse("aa ? bb").String())
}

func TestParseCodeNonXMaskBytesAreWildcards(t *testing.T) {
	sig := ParseCode("\xAA\xBB\xCC", "x.x")
	assert.Equal(t, "AA ?? CC", sig.String())
}
