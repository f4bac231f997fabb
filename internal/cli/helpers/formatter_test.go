package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Name  string `header:"NAME" json:"name"`
	Base  string `header:"BASE" json:"base"`
	Extra string `json:"-"`
}

var testRows = []testRow{
	{Name: "/usr/lib/libc.so.6", Base: "0x7f0000000000", Extra: "ignored"},
	{Name: "linux-vdso.so.1", Base: "0x7fff0000", Extra: "ignored"},
}

func TestNewFormatter(t *testing.T) {
	for _, format := range AllFormats {
		t.Run(string(format), func(t *testing.T) {
			f, err := NewFormatter(format)
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}

	_, err := NewFormatter("yaml")
	assert.Error(t, err)
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(testRows, &buf))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"name": "/usr/lib/libc.so.6", "base": "0x7f0000000000"}, got[0])
}

func TestTableFormatter_Format(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "slice of structs",
			data: testRows,
			want: "NAME                 BASE\n" +
				"/usr/lib/libc.so.6   0x7f0000000000\n" +
				"linux-vdso.so.1      0x7fff0000\n",
		},
		{name: "empty slice", data: []testRow{}, want: ""},
		{name: "non-slice", data: testRows[0], wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := (&TableFormatter{}).Format(tt.data, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(testRows, &buf))
	assert.Equal(t, "NAME,BASE\n/usr/lib/libc.so.6,0x7f0000000000\nlinux-vdso.so.1,0x7fff0000\n", buf.String())

	buf.Reset()
	require.NoError(t, (&CSVFormatter{}).Format([]testRow{}, &buf))
	assert.Empty(t, buf.String())

	assert.Error(t, (&CSVFormatter{}).Format("nope", &buf))
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("json", AllFormats))
	err := ValidateFormat("xml", []OutputFormat{FormatTable, FormatJSON})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json")
}

func TestHex(t *testing.T) {
	assert.Equal(t, "0x7f00", Hex(0x7f00))
	assert.Equal(t, "0x0", Hex(0))
}
