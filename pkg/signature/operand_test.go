package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRel32(t *testing.T) {
	tests := []struct {
		name    string
		image   []byte
		offset  int
		op      Operand
		want    int
		wantErr bool
	}{
		{
			name:  "mov rax rip relative",
			image: []byte{0x48, 0x8B, 0x05, 0x10, 0x00, 0x00, 0x00},
			op:    Rel32(3, 7),
			want:  23,
		},
		{
			name:   "negative displacement",
			image:  append(make([]byte, 32), 0x48, 0x8D, 0x0D, 0xF0, 0xFF, 0xFF, 0xFF),
			offset: 32,
			op:     Rel32(3, 7),
			want:   23,
		},
		{
			name:  "call rel32",
			image: []byte{0xE8, 0x05, 0x00, 0x00, 0x00},
			op:    Rel32(1, 5),
			want:  10,
		},
		{
			name:    "displacement past end",
			image:   []byte{0x48, 0x8B, 0x05, 0x10, 0x00},
			op:      Rel32(3, 7),
			wantErr: true,
		},
		{
			name:    "negative offset",
			image:   []byte{0x48, 0x8B, 0x05, 0x10, 0x00, 0x00, 0x00},
			offset:  -1,
			op:      Rel32(3, 7),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.image, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoOperand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRIPRelative(t *testing.T) {
	tests := []struct {
		name    string
		image   []byte
		offset  int
		want    int
		wantErr error
	}{
		{
			name:  "mov from rip relative memory",
			image: []byte{0x48, 0x8B, 0x05, 0x10, 0x00, 0x00, 0x00},
			want:  23,
		},
		{
			name:   "lea with negative displacement",
			image:  append(make([]byte, 32), 0x48, 0x8D, 0x0D, 0xF0, 0xFF, 0xFF, 0xFF),
			offset: 32,
			want:   23,
		},
		{
			name:  "call relative",
			image: []byte{0xE8, 0x05, 0x00, 0x00, 0x00},
			want:  10,
		},
		{
			name:   "short jump",
			image:  []byte{0x90, 0xEB, 0x02, 0x90, 0x90},
			offset: 1,
			want:   5,
		},
		{
			name:    "no relative operand",
			image:   []byte{0x48, 0x89, 0xC3},
			wantErr: ErrNoOperand,
		},
		{
			name:    "offset outside image",
			image:   []byte{0x90},
			offset:  4,
			wantErr: ErrNoOperand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RIPRelative(tt.image, tt.offset)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRIPRelativeTruncatedInstruction(t *testing.T) {
	_, err := RIPRelative([]byte{0x48, 0x8B, 0x05, 0x10}, 0)
	assert.Error(t, err)
}
